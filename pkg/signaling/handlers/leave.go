package handlers

import (
	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/MikeDev101/camrelay/pkg/signaling/message"
	"github.com/MikeDev101/camrelay/pkg/structs"
)

// LEAVE removes the peer from its session without closing the connection, so
// it may join another one afterwards.
func LEAVE(s *structs.Server, client *structs.Client, packet *structs.SignalPacket) {
	sessionid, ok := manager.Leave(s, client.ID)
	if !ok {
		reject(s, client, manager.ErrSenderNotInSession, packet.Listener)
		return
	}
	message.Send(s, client, &structs.OutboundPacket{
		Type:      structs.TypeLeft,
		SessionID: sessionid,
		Listener:  packet.Listener,
	})
}

// KEEPALIVE echoes the packet's payload back to the peer.
func KEEPALIVE(s *structs.Server, client *structs.Client, packet *structs.SignalPacket) {
	var payload any
	if manager.HasPayload(packet.Payload) {
		payload = packet.Payload
	}
	message.Code(s, client, structs.TypeKeepalive, payload, packet.Listener)
}
