package manager

import (
	"github.com/MikeDev101/camrelay/pkg/structs"
	"go.uber.org/zap"
)

// Register adds a freshly accepted connection to the registry. It fails once
// the relay is shutting down or the connection limit is reached.
func Register(s *structs.Server, client *structs.Client) error {
	s.Clients.Mutex.Lock()
	defer s.Clients.Mutex.Unlock()

	if s.Draining.Load() {
		return ErrConnectionClosed
	}
	if max := s.Config.MaxConnections; max > 0 && len(s.Clients.Clients) >= max {
		return ErrTooManyConnections
	}
	s.Clients.Clients[client.ID] = client
	s.Metrics.Connections.Inc()
	return nil
}

// GetClient returns the registered connection with the given ID, or nil.
func GetClient(s *structs.Server, id string) *structs.Client {
	s.Clients.Mutex.RLock()
	defer s.Clients.Mutex.RUnlock()
	return s.Clients.Clients[id]
}

// DoesPeerExist checks if a connection with the given ID is registered.
func DoesPeerExist(s *structs.Server, id string) bool {
	return GetClient(s, id) != nil
}

// ConnectionCount returns the number of registered connections.
func ConnectionCount(s *structs.Server) int {
	s.Clients.Mutex.RLock()
	defer s.Clients.Mutex.RUnlock()
	return len(s.Clients.Clients)
}

// AtConnectionLimit reports whether a new connection would be refused.
func AtConnectionLimit(s *structs.Server) bool {
	max := s.Config.MaxConnections
	return max > 0 && ConnectionCount(s) >= max
}

func all_clients(s *structs.Server) []*structs.Client {
	s.Clients.Mutex.RLock()
	defer s.Clients.Mutex.RUnlock()

	clients := make([]*structs.Client, 0, len(s.Clients.Clients))
	for _, client := range s.Clients.Clients {
		clients = append(clients, client)
	}
	return clients
}

// Disconnect removes the connection from its session, notifying the remaining
// members, and releases everything the relay holds for it: the outbound queue
// is closed (which makes the writer flush and close the transport) and the
// registry entry is removed. Only the first call has any effect.
func Disconnect(s *structs.Server, id string) {
	client := GetClient(s, id)
	if client == nil {
		return
	}

	client.Release(func() {
		client.Mux.Lock()
		client.Closed = true
		sessionid, left := leave_session(s, client)
		client.Mux.Unlock()

		client.CloseOutbox()

		s.Clients.Mutex.Lock()
		delete(s.Clients.Clients, client.ID)
		s.Clients.Mutex.Unlock()
		s.Metrics.Connections.Dec()

		if left {
			s.Log.Info("disconnected", zap.String("peer", client.ID), zap.String("session", sessionid))
		} else {
			s.Log.Info("disconnected", zap.String("peer", client.ID))
		}
	})
}

// Deliver queues already-encoded data for client without blocking. A
// recipient that cannot take the message is disconnected asynchronously and
// Deliver reports false.
func Deliver(s *structs.Server, client *structs.Client, data []byte) bool {
	if client.Enqueue(data) {
		return true
	}
	s.Metrics.Dropped.Inc()
	s.Log.Warn("dropping unreachable peer", zap.String("peer", client.ID), zap.Error(ErrTransportWriteFailed))
	go Disconnect(s, client.ID)
	return false
}
