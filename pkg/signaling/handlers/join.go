package handlers

import (
	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/MikeDev101/camrelay/pkg/structs"
)

// JOIN handles the join type. The peer is placed into the session named by
// sessionId, which is created if needed. The joined acknowledgement and the
// peer-joined notices are sent by the manager.
func JOIN(s *structs.Server, client *structs.Client, packet *structs.SignalPacket) {
	if err := manager.Join(s, client.ID, packet.SessionID, packet.Listener); err != nil {
		reject(s, client, err, packet.Listener)
	}
}
