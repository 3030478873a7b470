package signaling

import (
	"errors"
	"time"

	"github.com/MikeDev101/camrelay/pkg/config"
	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/MikeDev101/camrelay/pkg/metrics"
	"github.com/MikeDev101/camrelay/pkg/signaling/handlers"
	"github.com/MikeDev101/camrelay/pkg/signaling/message"
	"github.com/MikeDev101/camrelay/pkg/signaling/origin"
	"github.com/MikeDev101/camrelay/pkg/signaling/session"
	"github.com/MikeDev101/camrelay/pkg/structs"
	fastws "github.com/fasthttp/websocket"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type Server structs.Server

func Initialize(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *Server {
	s := manager.New(cfg, log, m)
	s.AuthorizedOriginsStorage = origin.CompilePatterns(cfg.AllowedOrigins)

	if cfg.StrictPayloads {
		s.Log.Info("strict payload checking enabled")
	}
	return (*Server)(s)
}

func (srv *Server) relay() *structs.Server {
	return (*structs.Server)(srv)
}

// AuthorizedOrigins checks if the incoming request's origin is allowed to connect to the server.
func (srv *Server) AuthorizedOrigins(r *fasthttp.Request) bool {
	requested := string(r.Header.Peek("Origin"))
	result := origin.IsAllowed(requested, srv.AuthorizedOriginsStorage)
	if !result {
		srv.Log.Info("origin rejected", zap.String("origin", requested), zap.ByteString("host", r.Host()))
	}
	return result
}

// Upgrader only lets websocket upgrades from permitted origins through to the
// handler. Requests arriving while the connection limit is reached get
// ErrServiceUnavailable; anything that isn't an upgrade gets ErrUpgradeRequired.
func (srv *Server) Upgrader(c *fiber.Ctx) error {
	if !srv.AuthorizedOrigins(c.Request()) {
		return fiber.ErrForbidden
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if srv.Draining.Load() || manager.AtConnectionLimit(srv.relay()) {
		return fiber.ErrServiceUnavailable
	}
	c.Locals("allowed", true)
	return c.Next()
}

// Handler serves one websocket connection for its whole lifetime.
//
// Inbound messages are decoded, validated and executed one at a time, so the
// relay sees a peer's messages in the order the peer sent them. A message that
// isn't JSON at all closes the connection; a well formed message that fails
// validation is answered with an error and the connection stays open.
func (srv *Server) Handler(conn *websocket.Conn) {
	s := srv.relay()

	client, err := session.Open(s, conn)
	if err != nil {
		s.Log.Warn("refused connection", zap.Error(err))
		refuse(s, conn, err)
		return
	}
	defer session.Close(s, client)

	conn.SetReadLimit(s.Config.MaxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(s.Config.PongWait))
	conn.SetPongHandler(func(string) error {
		client.MarkAlive()
		return conn.SetReadDeadline(time.Now().Add(s.Config.PongWait))
	})

	for {
		_, rawpacket, err := conn.ReadMessage()
		if errors.Is(err, fastws.ErrReadLimit) {
			s.Metrics.Violations.Inc()
			message.Error(s, client, structs.CodeViolation, "message too large", "")
			return
		}
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.Log.Debug("websocket read failed", zap.String("peer", client.ID), zap.Error(err))
			}
			return
		}
		client.MarkAlive()
		conn.SetReadDeadline(time.Now().Add(s.Config.PongWait))

		if !client.Limiter.Allow() {
			message.Error(s, client, structs.CodeRateLimited, "too many messages", "")
			continue
		}

		var packet *structs.SignalPacket
		if err := json.Unmarshal(rawpacket, &packet); err != nil || packet == nil {
			s.Metrics.Violations.Inc()
			message.Error(s, client, structs.CodeViolation, "packet decoding error", "")
			return
		}

		if err := s.PacketValidator.Struct(packet); err != nil {
			message.Error(s, client, structs.CodeMalformedMessage, err.Error(), packet.Listener)
			continue
		}

		execute_packet(s, client, packet)
	}
}

func execute_packet(s *structs.Server, client *structs.Client, packet *structs.SignalPacket) {
	switch packet.Type {

	case structs.TypeKeepalive:
		handlers.KEEPALIVE(s, client, packet)

	case structs.TypeJoin:
		handlers.JOIN(s, client, packet)

	case structs.TypeOffer:
		handlers.OFFER(s, client, packet)

	case structs.TypeAnswer:
		handlers.ANSWER(s, client, packet)

	case structs.TypeCandidate:
		handlers.CANDIDATE(s, client, packet)

	case structs.TypeLeave:
		handlers.LEAVE(s, client, packet)

	default:
		message.Error(s, client, structs.CodeMalformedMessage, "unknown type", packet.Listener)
	}
}

// refuse writes a single error frame to a connection that never got a writer.
func refuse(s *structs.Server, conn *websocket.Conn, err error) {
	data, _ := json.Marshal(&structs.OutboundPacket{
		Type:    structs.TypeError,
		Payload: &structs.ErrorParams{Code: handlers.ErrorCode(err), Message: err.Error()},
	})
	conn.SetWriteDeadline(time.Now().Add(s.Config.WriteWait))
	conn.WriteMessage(websocket.TextMessage, data)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, ""))
}

// Shutdown tells every session that its counterparts are gone and disconnects
// all peers. New connections are refused from then on.
func (srv *Server) Shutdown() {
	manager.Shutdown(srv.relay())
}
