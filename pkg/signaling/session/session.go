package session

import (
	"time"

	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/MikeDev101/camrelay/pkg/structs"
	"github.com/gofiber/contrib/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Open registers a new connection for the websocket under a fresh ULID and
// starts its writer. The caller owns the read side and must call Close when
// reading stops.
func Open(s *structs.Server, conn *websocket.Conn) (*structs.Client, error) {
	client := structs.NewClient(ulid.Make().String(), s.Config.SendQueueSize, limiter(s))
	client.Conn = conn
	client.Counter = s.WebsocketConnCounter.Add(1)

	if err := manager.Register(s, client); err != nil {
		return nil, err
	}

	go write_pump(s, client)

	s.Log.Info("opened connection",
		zap.String("peer", client.ID),
		zap.Uint64("websocket", client.Counter),
		zap.String("remote", conn.RemoteAddr().String()),
	)
	return client, nil
}

// Close runs the disconnect cleanup for the client and waits for its writer
// to flush and close the websocket.
func Close(s *structs.Server, client *structs.Client) {
	if client == nil {
		s.Log.Warn("attempted to close nil client")
		return
	}

	manager.Disconnect(s, client.ID)

	select {
	case <-client.WriterDone:
	case <-time.After(2 * s.Config.WriteWait):
		s.Log.Warn("writer did not finish", zap.String("peer", client.ID))
	}

	s.Log.Info("closed connection", zap.String("peer", client.ID), zap.Uint64("websocket", client.Counter))
}

func limiter(s *structs.Server) *rate.Limiter {
	if s.Config.MessagesPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(s.Config.MessagesPerSecond), s.Config.MessageBurst)
}

// write_pump is the only writer of the websocket. It sends queued packets and
// pings, and closes the socket once the outbox is closed and drained, a write
// fails, or the peer stopped answering pings.
func write_pump(s *structs.Server, client *structs.Client) {
	conn := client.Conn
	ticker := time.NewTicker(s.Config.PingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(client.WriterDone)
	}()

	for {
		select {
		case data, ok := <-client.Outbox:
			conn.SetWriteDeadline(time.Now().Add(s.Config.WriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.Log.Debug("websocket write failed", zap.String("peer", client.ID), zap.Error(err))
				go manager.Disconnect(s, client.ID)
				return
			}

		case <-ticker.C:
			if !client.CheckAlive() {
				s.Log.Info("peer stopped responding", zap.String("peer", client.ID))
				go manager.Disconnect(s, client.ID)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(s.Config.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Log.Debug("websocket ping failed", zap.String("peer", client.ID), zap.Error(err))
				go manager.Disconnect(s, client.ID)
				return
			}
		}
	}
}
