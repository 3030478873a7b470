package structs

import (
	"regexp"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MikeDev101/camrelay/pkg/config"
	"github.com/MikeDev101/camrelay/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Server struct {
	AuthorizedOriginsStorage []*regexp.Regexp
	Config                   *config.Config
	Clients                  *ClientStore
	Sessions                 *SessionStore
	PacketValidator          *validator.Validate
	Metrics                  *metrics.Metrics
	Log                      *zap.Logger
	WebsocketConnCounter     atomic.Uint64
	Draining                 atomic.Bool // set once shutdown has sent its peer-left notices
}

// Session groups the connections negotiating one peer link. Members is in join order.
type Session struct {
	Mutex   sync.Mutex
	ID      string
	Members []*Client
	Created time.Time
	Deleted bool // set under Mutex when the last member leaves
}

type SessionStore struct {
	Mutex    sync.RWMutex
	Sessions map[string]*Session
}

type ClientStore struct {
	Mutex   sync.RWMutex
	Clients map[string]*Client
}

// MemberIDs must be called with Mutex held.
func (s *Session) MemberIDs() []string {
	ids := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// Remove drops client from Members, keeping join order. Must be called with Mutex held.
func (s *Session) Remove(client *Client) bool {
	i := slices.Index(s.Members, client)
	if i == -1 {
		return false
	}
	s.Members = slices.Delete(s.Members, i, i+1)
	return true
}
