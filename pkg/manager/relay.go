package manager

import (
	"bytes"
	"fmt"

	"github.com/MikeDev101/camrelay/pkg/structs"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// IsRelayKind reports whether kind is one of the negotiation messages the relay forwards.
func IsRelayKind(kind string) bool {
	switch kind {
	case structs.TypeOffer, structs.TypeAnswer, structs.TypeCandidate:
		return true
	}
	return false
}

// Relay forwards a negotiation message from the sender to every other member
// of its session and returns the IDs of the members whose queue accepted it.
//
// The payload is forwarded byte for byte. Members are visited while the
// session is locked and every connection's queue is FIFO, so messages from one
// sender reach each recipient in the order Relay was called. A recipient whose
// queue is full is left out of the result and disconnected in the background.
func Relay(s *structs.Server, senderid string, packet *structs.SignalPacket) ([]string, error) {
	client := GetClient(s, senderid)
	if client == nil {
		return nil, ErrSenderNotInSession
	}

	client.Mux.Lock()
	defer client.Mux.Unlock()

	if client.Closed || !client.AmIInASession() {
		return nil, ErrSenderNotInSession
	}
	if err := check_message(s, packet); err != nil {
		return nil, err
	}

	session := client.Session
	session.Mutex.Lock()
	defer session.Mutex.Unlock()

	data := encode(&structs.OutboundPacket{
		Type:      packet.Type,
		SessionID: session.ID,
		PeerID:    client.ID,
		Payload:   packet.Payload,
	})

	delivered := make([]string, 0, len(session.Members)-1)
	for _, member := range session.Members {
		if member == client {
			continue
		}
		if Deliver(s, member, data) {
			delivered = append(delivered, member.ID)
		}
	}

	s.Metrics.Relayed.WithLabelValues(packet.Type).Inc()
	s.Log.Debug("relayed",
		zap.String("kind", packet.Type),
		zap.String("peer", client.ID),
		zap.String("session", session.ID),
		zap.Strings("to", delivered),
	)
	return delivered, nil
}

func check_message(s *structs.Server, packet *structs.SignalPacket) error {
	if packet == nil || !IsRelayKind(packet.Type) {
		return ErrMalformedMessage
	}
	if !HasPayload(packet.Payload) {
		return fmt.Errorf("%w: %s requires a payload", ErrMalformedMessage, packet.Type)
	}
	if s.Config.StrictPayloads {
		if err := CheckPayload(packet.Type, packet.Payload); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
	}
	return nil
}

// HasPayload reports whether raw is present, valid JSON and not null.
func HasPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	return json.Valid(trimmed)
}
