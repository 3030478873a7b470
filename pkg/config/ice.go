package config

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pion/webrtc/v4"
)

type iceServerJSON struct {
	URLs       stringOrStringSlice `json:"urls"`
	Username   string              `json:"username,omitempty"`
	Credential string              `json:"credential,omitempty"`
}

// stringOrStringSlice accepts both forms browsers allow for RTCIceServer.urls.
type stringOrStringSlice []string

func (s *stringOrStringSlice) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// ParseICEServersJSON parses a JSON array shaped like RTCConfiguration.iceServers.
func ParseICEServersJSON(raw string) ([]webrtc.ICEServer, error) {
	var servers []iceServerJSON
	if err := json.Unmarshal([]byte(raw), &servers); err != nil {
		return nil, err
	}

	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, server := range servers {
		pcServer := webrtc.ICEServer{
			URLs:     server.URLs,
			Username: strings.TrimSpace(server.Username),
		}
		if server.Credential != "" {
			pcServer.Credential = server.Credential
		}
		out = append(out, pcServer)
	}
	return normalizeICEServers(out), nil
}

func normalizeICEServers(servers []webrtc.ICEServer) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, server := range servers {
		urls := make([]string, 0, len(server.URLs))
		for _, url := range server.URLs {
			if url = strings.TrimSpace(url); url != "" {
				urls = append(urls, url)
			}
		}
		server.URLs = urls
		if len(urls) > 0 {
			out = append(out, server)
		}
	}
	return out
}

func validateICEServers(servers []webrtc.ICEServer) error {
	for i, server := range servers {
		for _, url := range server.URLs {
			lower := strings.ToLower(url)
			switch {
			case strings.HasPrefix(lower, "stun:"), strings.HasPrefix(lower, "stuns:"):
			case strings.HasPrefix(lower, "turn:"), strings.HasPrefix(lower, "turns:"):
				cred, _ := server.Credential.(string)
				if server.Username == "" || cred == "" {
					return fmt.Errorf("ice_servers[%d]: TURN url %q requires username and credential", i, url)
				}
			default:
				return fmt.Errorf("ice_servers[%d]: unsupported url scheme in %q", i, url)
			}
		}
	}
	return nil
}
