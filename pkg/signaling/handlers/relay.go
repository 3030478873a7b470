package handlers

import (
	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/MikeDev101/camrelay/pkg/structs"
)

// OFFER relays an SDP offer to the other members of the sender's session.
func OFFER(s *structs.Server, client *structs.Client, packet *structs.SignalPacket) {
	relay(s, client, packet)
}

// ANSWER relays an SDP answer to the other members of the sender's session.
func ANSWER(s *structs.Server, client *structs.Client, packet *structs.SignalPacket) {
	relay(s, client, packet)
}

// CANDIDATE relays an ICE candidate to the other members of the sender's session.
func CANDIDATE(s *structs.Server, client *structs.Client, packet *structs.SignalPacket) {
	relay(s, client, packet)
}

func relay(s *structs.Server, client *structs.Client, packet *structs.SignalPacket) {
	if _, err := manager.Relay(s, client.ID, packet); err != nil {
		reject(s, client, err, packet.Listener)
	}
}
