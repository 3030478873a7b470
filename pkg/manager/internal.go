package manager

import (
	"time"

	"github.com/MikeDev101/camrelay/pkg/structs"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// acquire_session is an internal helper that retrieves a session from the
// session table, creating it if it doesn't exist. The table lock is released
// before returning; callers must lock the session and check Deleted.
func acquire_session(s *structs.Server, sessionid string) (*structs.Session, error) {
	s.Sessions.Mutex.Lock()
	defer s.Sessions.Mutex.Unlock()

	if session, exists := s.Sessions.Sessions[sessionid]; exists {
		return session, nil
	}
	if max := s.Config.MaxSessions; max > 0 && len(s.Sessions.Sessions) >= max {
		return nil, ErrTooManySessions
	}

	session := &structs.Session{ID: sessionid, Created: time.Now()}
	s.Sessions.Sessions[sessionid] = session
	s.Metrics.Sessions.Inc()
	s.Log.Debug("created session", zap.String("session", sessionid))
	return session, nil
}

// destroy_session removes an emptied session from the table. It must be
// called with the session's lock held and Deleted already set.
func destroy_session(s *structs.Server, session *structs.Session) {
	s.Sessions.Mutex.Lock()
	defer s.Sessions.Mutex.Unlock()

	if s.Sessions.Sessions[session.ID] == session {
		delete(s.Sessions.Sessions, session.ID)
		s.Metrics.Sessions.Dec()
		s.Log.Debug("deleted session", zap.String("session", session.ID))
	}
}

// all_sessions copies the session pointers so sessions can be locked without
// holding the table lock.
func all_sessions(s *structs.Server) []*structs.Session {
	s.Sessions.Mutex.RLock()
	defer s.Sessions.Mutex.RUnlock()

	sessions := make([]*structs.Session, 0, len(s.Sessions.Sessions))
	for _, session := range s.Sessions.Sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func encode(packet *structs.OutboundPacket) []byte {
	data, err := json.Marshal(packet)
	if err != nil {
		// Outbound packets are built from strings and raw JSON only.
		panic(err)
	}
	return data
}
