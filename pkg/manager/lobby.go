package manager

import (
	"errors"

	"github.com/MikeDev101/camrelay/pkg/metrics"
	"github.com/MikeDev101/camrelay/pkg/structs"
	"go.uber.org/zap"
)

// Join adds the connection to the named session, creating the session if it
// doesn't exist yet.
//
// Existing members are sent peer-joined, and the newcomer is sent a joined
// acknowledgement (echoing listener) listing them, all while the session is
// locked. Since Relay takes the same lock, no member can receive a message
// from the newcomer before learning that it joined.
func Join(s *structs.Server, id string, sessionid string, listener string) error {
	if sessionid == "" {
		return ErrMalformedMessage
	}
	client := GetClient(s, id)
	if client == nil {
		return ErrUnknownConnection
	}

	client.Mux.Lock()
	defer client.Mux.Unlock()

	if client.Closed || s.Draining.Load() {
		return ErrConnectionClosed
	}
	if client.AmIInASession() {
		s.Metrics.JoinRejections.WithLabelValues(metrics.ReasonAlreadyInSession).Inc()
		return ErrAlreadyInSession
	}

	for {
		session, err := acquire_session(s, sessionid)
		if err != nil {
			s.Metrics.JoinRejections.WithLabelValues(metrics.ReasonTooManySessions).Inc()
			s.Log.Warn("join rejected", zap.String("peer", id), zap.String("session", sessionid), zap.Error(err))
			return err
		}

		session.Mutex.Lock()
		if session.Deleted {
			// Emptied between lookup and lock; look it up again.
			session.Mutex.Unlock()
			continue
		}
		err = admit(s, session, client, listener)
		session.Mutex.Unlock()

		if errors.Is(err, ErrSessionFull) {
			s.Metrics.JoinRejections.WithLabelValues(metrics.ReasonSessionFull).Inc()
			s.Log.Info("join rejected", zap.String("peer", id), zap.String("session", sessionid), zap.Error(err))
		}
		return err
	}
}

// admit must be called with both the client's and the session's locks held.
func admit(s *structs.Server, session *structs.Session, client *structs.Client, listener string) error {
	if max := s.Config.MaxSessionMembers; max > 0 && len(session.Members) >= max {
		return ErrSessionFull
	}

	peers := session.MemberIDs()
	notice := encode(&structs.OutboundPacket{
		Type:      structs.TypePeerJoined,
		SessionID: session.ID,
		PeerID:    client.ID,
	})
	for _, member := range session.Members {
		Deliver(s, member, notice)
	}

	session.Members = append(session.Members, client)
	client.Session = session

	Deliver(s, client, encode(&structs.OutboundPacket{
		Type:      structs.TypeJoined,
		SessionID: session.ID,
		PeerID:    client.ID,
		Payload:   &structs.JoinedParams{ID: client.ID, Peers: peers},
		Listener:  listener,
	}))

	s.Metrics.Joins.Inc()
	s.Log.Info("joined session",
		zap.String("peer", client.ID),
		zap.String("session", session.ID),
		zap.Int("members", len(session.Members)),
	)
	return nil
}

// Leave removes the connection from its session, tells the remaining members
// that it departed, and deletes the session once it is empty. It returns the
// session left, or false when the connection was not in one.
func Leave(s *structs.Server, id string) (string, bool) {
	client := GetClient(s, id)
	if client == nil {
		return "", false
	}
	client.Mux.Lock()
	defer client.Mux.Unlock()
	return leave_session(s, client)
}

// leave_session must be called with the client's lock held.
func leave_session(s *structs.Server, client *structs.Client) (string, bool) {
	session := client.Session
	if session == nil {
		return "", false
	}

	session.Mutex.Lock()
	defer session.Mutex.Unlock()

	session.Remove(client)
	client.Session = nil

	// During shutdown every member was already told about every counterpart.
	if !s.Draining.Load() {
		notice := encode(&structs.OutboundPacket{
			Type:      structs.TypePeerLeft,
			SessionID: session.ID,
			PeerID:    client.ID,
		})
		for _, member := range session.Members {
			Deliver(s, member, notice)
		}
	}

	if len(session.Members) == 0 {
		session.Deleted = true
		destroy_session(s, session)
	}

	s.Log.Info("left session",
		zap.String("peer", client.ID),
		zap.String("session", session.ID),
		zap.Int("members", len(session.Members)),
	)
	return session.ID, true
}

// Shutdown sends every member of every session a peer-left notice for each of
// its counterparts, then disconnects all connections. Queued messages are
// still flushed by the writers before the transports close. New connections
// are refused from this point on.
func Shutdown(s *structs.Server) {
	s.Clients.Mutex.Lock()
	s.Draining.Store(true)
	s.Clients.Mutex.Unlock()

	for _, session := range all_sessions(s) {
		session.Mutex.Lock()
		for _, member := range session.Members {
			for _, peer := range session.Members {
				if peer == member {
					continue
				}
				Deliver(s, member, encode(&structs.OutboundPacket{
					Type:      structs.TypePeerLeft,
					SessionID: session.ID,
					PeerID:    peer.ID,
				}))
			}
		}
		session.Mutex.Unlock()
	}

	clients := all_clients(s)
	for _, client := range clients {
		Disconnect(s, client.ID)
	}
	s.Log.Info("relay shut down", zap.Int("connections", len(clients)))
}
