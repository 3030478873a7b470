package structs

import (
	"time"

	"github.com/goccy/go-json"
)

// Inbound message types.
const (
	TypeJoin      = "join"
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
	TypeLeave     = "leave"
	TypeKeepalive = "keepalive"
)

// Outbound-only message types.
const (
	TypePeerJoined = "peer-joined"
	TypePeerLeft   = "peer-left"
	TypeJoined     = "joined"
	TypeLeft       = "left"
	TypeError      = "error"
)

// Error codes carried in an error packet's payload.
const (
	CodeAlreadyInSession   = "ALREADY_IN_SESSION"
	CodeSessionFull        = "SESSION_FULL"
	CodeSenderNotInSession = "SENDER_NOT_IN_SESSION"
	CodeMalformedMessage   = "MALFORMED_MESSAGE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeViolation          = "VIOLATION"
	CodeConnectionClosed   = "CONNECTION_CLOSED"
	CodeInternal           = "INTERNAL"
)

// Declare the packet format for client -> relay messages.
type SignalPacket struct {
	Type      string          `json:"type" validate:"required,oneof=join offer answer candidate leave keepalive" label:"type"`
	SessionID string          `json:"sessionId,omitempty" validate:"omitempty,max=128,printascii" label:"sessionId"`
	Payload   json.RawMessage `json:"payload,omitempty" label:"payload"`
	Listener  string          `json:"listener,omitempty" validate:"omitempty,max=64" label:"listener"` // echoed on direct replies
}

// Declare the packet format for relay -> client messages.
type OutboundPacket struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	PeerID    string `json:"peerId,omitempty"` // sender of a relayed message, or the peer that joined/left
	Payload   any    `json:"payload,omitempty"`
	Listener  string `json:"listener,omitempty"`
}

// Payload of the joined acknowledgement.
type JoinedParams struct {
	ID    string   `json:"id"`
	Peers []string `json:"peers"`
}

type ErrorParams struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SessionInfo struct {
	ID      string    `json:"id"`
	Members int       `json:"members"`
	Created time.Time `json:"created"`
}

// Response body of GET /sessions.
type SessionsReport struct {
	Count    int           `json:"count"`
	Sessions []SessionInfo `json:"sessions"`
}
