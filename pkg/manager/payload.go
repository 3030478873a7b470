package manager

import (
	"fmt"

	"github.com/MikeDev101/camrelay/pkg/structs"
	"github.com/goccy/go-json"
	"github.com/pion/webrtc/v4"
)

// CheckPayload verifies that a payload has the shape the browser API produces
// for kind: an RTCSessionDescriptionInit of the matching type for offers and
// answers, an RTCIceCandidateInit for candidates. The SDP itself is not parsed.
func CheckPayload(kind string, payload json.RawMessage) error {
	switch kind {
	case structs.TypeOffer, structs.TypeAnswer:
		var desc webrtc.SessionDescription
		if err := json.Unmarshal(payload, &desc); err != nil {
			return fmt.Errorf("%s payload is not a session description: %w", kind, err)
		}
		if want := webrtc.NewSDPType(kind); desc.Type != want {
			return fmt.Errorf("%s payload has description type %q", kind, desc.Type.String())
		}
		if desc.SDP == "" {
			return fmt.Errorf("%s payload has an empty sdp", kind)
		}
	case structs.TypeCandidate:
		// An empty candidate string is the end-of-candidates marker and is allowed.
		var init webrtc.ICECandidateInit
		if err := json.Unmarshal(payload, &init); err != nil {
			return fmt.Errorf("candidate payload is not an ice candidate: %w", err)
		}
	default:
		return fmt.Errorf("unknown message kind %q", kind)
	}
	return nil
}
