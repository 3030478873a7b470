package structs

import (
	"sync"
	"sync/atomic"

	"github.com/gofiber/contrib/websocket"
	"golang.org/x/time/rate"
)

type Client struct {
	Conn    *websocket.Conn // nil for connections that are not backed by a websocket
	ID      string          // ULID assigned on accept
	Counter uint64          // websocket ordinal, for logs
	Limiter *rate.Limiter   // inbound message rate

	// Outbox is drained by the connection's writer. Only Enqueue sends on it.
	Outbox     chan []byte
	WriterDone chan struct{}

	Mux     sync.Mutex // guards Session and Closed
	Session *Session
	Closed  bool

	sendMux      sync.Mutex // guards outboxClosed and sends on Outbox
	outboxClosed bool

	alive atomic.Bool
	once  sync.Once
}

// NewClient returns a connected, sessionless client with an outbound queue of the given size.
func NewClient(id string, queue int, limiter *rate.Limiter) *Client {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	c := &Client{
		ID:         id,
		Limiter:    limiter,
		Outbox:     make(chan []byte, queue),
		WriterDone: make(chan struct{}),
	}
	c.alive.Store(true)
	return c
}

// Enqueue hands data to the writer without blocking. It reports false if the
// queue is full or already closed.
func (c *Client) Enqueue(data []byte) bool {
	c.sendMux.Lock()
	defer c.sendMux.Unlock()

	if c.outboxClosed {
		return false
	}
	select {
	case c.Outbox <- data:
		return true
	default:
		return false
	}
}

// CloseOutbox stops all further delivery. The writer flushes what is queued and exits.
func (c *Client) CloseOutbox() {
	c.sendMux.Lock()
	defer c.sendMux.Unlock()

	if !c.outboxClosed {
		c.outboxClosed = true
		close(c.Outbox)
	}
}

// Release runs fn at most once for the lifetime of the client.
func (c *Client) Release(fn func()) {
	c.once.Do(fn)
}

func (c *Client) MarkAlive() {
	c.alive.Store(true)
}

// CheckAlive reports whether the client showed activity since the previous
// check, and resets the flag.
func (c *Client) CheckAlive() bool {
	return c.alive.Swap(false)
}

// AmIInASession must be called with Mux held.
func (c *Client) AmIInASession() bool {
	return c.Session != nil
}
