package manager

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyInSession     = errors.New("connection is already in a session")
	ErrSessionFull          = errors.New("session is full")
	ErrTooManySessions      = fmt.Errorf("%w: session limit reached", ErrSessionFull)
	ErrSenderNotInSession   = errors.New("sender is not in a session")
	ErrMalformedMessage     = errors.New("malformed message")
	ErrTransportWriteFailed = errors.New("transport write failed")
	ErrConnectionClosed     = errors.New("connection is closed")
	ErrUnknownConnection    = errors.New("unknown connection")
	ErrTooManyConnections   = errors.New("connection limit reached")
)
