package message

import (
	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/MikeDev101/camrelay/pkg/structs"
	"github.com/goccy/go-json"
)

// Send marshals the given packet using go-json and queues it for the client.
// A client that cannot take it is disconnected in the background.
func Send(s *structs.Server, client *structs.Client, packet *structs.OutboundPacket) error {
	if client == nil {
		s.Log.Warn("got a nil client when sending message")
		return nil
	}

	bytes, err := json.Marshal(packet)
	if err != nil {
		return err
	}
	if !manager.Deliver(s, client, bytes) {
		return manager.ErrTransportWriteFailed
	}
	return nil
}

// Code sends a packet of the given type with an optional payload, echoing the
// listener the client supplied with its request.
func Code(s *structs.Server, client *structs.Client, kind string, payload any, listener string) error {
	return Send(s, client, &structs.OutboundPacket{Type: kind, Payload: payload, Listener: listener})
}

// Error sends an error packet with the given code and human readable text.
func Error(s *structs.Server, client *structs.Client, code string, text string, listener string) error {
	return Code(s, client, structs.TypeError, &structs.ErrorParams{Code: code, Message: text}, listener)
}
