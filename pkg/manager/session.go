package manager

import (
	"sort"

	"github.com/MikeDev101/camrelay/pkg/structs"
)

// CurrentSession returns the session the connection is in, if any.
func CurrentSession(s *structs.Server, id string) (string, bool) {
	client := GetClient(s, id)
	if client == nil {
		return "", false
	}
	client.Mux.Lock()
	defer client.Mux.Unlock()
	if client.Session == nil {
		return "", false
	}
	return client.Session.ID, true
}

// SessionMembers returns the member IDs of a session in join order, or nil if
// the session doesn't exist.
func SessionMembers(s *structs.Server, sessionid string) []string {
	s.Sessions.Mutex.RLock()
	session, exists := s.Sessions.Sessions[sessionid]
	s.Sessions.Mutex.RUnlock()
	if !exists {
		return nil
	}

	session.Mutex.Lock()
	defer session.Mutex.Unlock()
	if session.Deleted {
		return nil
	}
	return session.MemberIDs()
}

// DoesSessionExist checks if a session with the given ID is in the session table.
func DoesSessionExist(s *structs.Server, sessionid string) bool {
	s.Sessions.Mutex.RLock()
	defer s.Sessions.Mutex.RUnlock()
	_, exists := s.Sessions.Sessions[sessionid]
	return exists
}

// Snapshot reports the current sessions and their member counts, sorted by ID.
func Snapshot(s *structs.Server) structs.SessionsReport {
	report := structs.SessionsReport{Sessions: []structs.SessionInfo{}}
	for _, session := range all_sessions(s) {
		session.Mutex.Lock()
		if !session.Deleted {
			report.Sessions = append(report.Sessions, structs.SessionInfo{
				ID:      session.ID,
				Members: len(session.Members),
				Created: session.Created,
			})
		}
		session.Mutex.Unlock()
	}
	sort.Slice(report.Sessions, func(i, j int) bool {
		return report.Sessions[i].ID < report.Sessions[j].ID
	})
	report.Count = len(report.Sessions)
	return report
}
