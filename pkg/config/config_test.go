package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultMaxSessionMembers, cfg.MaxSessionMembers)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{DefaultSTUNURL}, cfg.ICEServers[0].URLs)
	assert.False(t, cfg.StrictPayloads)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camrelay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: "127.0.0.1:9000"
max_session_members: 4
pong_wait: 30s
ping_period: 20s
allowed_origins: ["https://*.example.com"]
ice_servers:
  - urls: ["stun:stun.example.com:3478"]
  - urls: ["turn:turn.example.com:3478"]
    username: user
    credential: pass
`), 0o600))

	cfg, err := Load(path, envMap(map[string]string{
		"CAMRELAY_MAX_SESSIONS":    "10",
		"CAMRELAY_STRICT_PAYLOADS": "true",
		"CAMRELAY_LOG_FORMAT":      "JSON",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 4, cfg.MaxSessionMembers)
	assert.Equal(t, 10, cfg.MaxSessions)
	assert.Equal(t, 30*time.Second, cfg.PongWait)
	assert.Equal(t, 20*time.Second, cfg.PingPeriod)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.True(t, cfg.StrictPayloads)
	assert.Equal(t, []string{"https://*.example.com"}, cfg.AllowedOrigins)
	require.Len(t, cfg.ICEServers, 2)
	assert.Equal(t, "user", cfg.ICEServers[1].Username)
}

func TestPortEnvOverriddenByListenAddr(t *testing.T) {
	cfg, err := Load("", envMap(map[string]string{"PORT": "8080"}))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)

	cfg, err = Load("", envMap(map[string]string{"PORT": "8080", "CAMRELAY_LISTEN_ADDR": "0.0.0.0:7000"}))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.ListenAddr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"single member sessions": {"CAMRELAY_MAX_SESSION_MEMBERS": "1"},
		"bad integer":            {"CAMRELAY_MAX_SESSIONS": "many"},
		"bad log format":         {"CAMRELAY_LOG_FORMAT": "xml"},
		"bad bool":               {"CAMRELAY_STRICT_PAYLOADS": "perhaps"},
		"turn without creds":     {"CAMRELAY_ICE_SERVERS_JSON": `[{"urls":"turn:turn.example.com"}]`},
		"unknown scheme":         {"CAMRELAY_ICE_SERVERS_JSON": `[{"urls":"http://example.com"}]`},
		"negative connections":   {"CAMRELAY_MAX_CONNECTIONS": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load("", envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestParseICEServersJSON(t *testing.T) {
	servers, err := ParseICEServersJSON(`[
		{"urls": "stun:a.example.com"},
		{"urls": [" turn:b.example.com ", ""], "username": " u ", "credential": "c"},
		{"urls": []}
	]`)
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, []string{"stun:a.example.com"}, servers[0].URLs)
	assert.Equal(t, []string{"turn:b.example.com"}, servers[1].URLs)
	assert.Equal(t, "u", servers[1].Username)
	assert.Equal(t, "c", servers[1].Credential)

	_, err = ParseICEServersJSON(`{"urls": 1}`)
	assert.Error(t, err)
}

func TestValidatePingPeriod(t *testing.T) {
	cfg := Default()
	cfg.PingPeriod = cfg.PongWait
	assert.Error(t, cfg.Validate())
}
