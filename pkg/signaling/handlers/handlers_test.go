package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/MikeDev101/camrelay/pkg/structs"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{manager.ErrAlreadyInSession, structs.CodeAlreadyInSession},
		{manager.ErrSessionFull, structs.CodeSessionFull},
		{manager.ErrTooManySessions, structs.CodeSessionFull},
		{manager.ErrSenderNotInSession, structs.CodeSenderNotInSession},
		{fmt.Errorf("%w: offer requires a payload", manager.ErrMalformedMessage), structs.CodeMalformedMessage},
		{manager.ErrConnectionClosed, structs.CodeConnectionClosed},
		{manager.ErrUnknownConnection, structs.CodeConnectionClosed},
		{manager.ErrTooManyConnections, structs.CodeConnectionClosed},
		{errors.New("boom"), structs.CodeInternal},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, ErrorCode(c.err), c.err.Error())
	}
}
