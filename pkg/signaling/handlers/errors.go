package handlers

import (
	"errors"

	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/MikeDev101/camrelay/pkg/signaling/message"
	"github.com/MikeDev101/camrelay/pkg/structs"
	"go.uber.org/zap"
)

// ErrorCode maps a relay error onto the code reported to the client.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, manager.ErrAlreadyInSession):
		return structs.CodeAlreadyInSession
	case errors.Is(err, manager.ErrSessionFull):
		return structs.CodeSessionFull
	case errors.Is(err, manager.ErrSenderNotInSession):
		return structs.CodeSenderNotInSession
	case errors.Is(err, manager.ErrMalformedMessage):
		return structs.CodeMalformedMessage
	case errors.Is(err, manager.ErrConnectionClosed), errors.Is(err, manager.ErrUnknownConnection), errors.Is(err, manager.ErrTooManyConnections):
		return structs.CodeConnectionClosed
	}
	return structs.CodeInternal
}

// reject reports err to the client as an error packet.
func reject(s *structs.Server, client *structs.Client, err error, listener string) {
	code := ErrorCode(err)
	if code == structs.CodeInternal {
		s.Log.Error("request failed", zap.String("peer", client.ID), zap.Error(err))
	}
	message.Error(s, client, code, err.Error(), listener)
}
