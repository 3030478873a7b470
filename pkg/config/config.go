package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"
	"gopkg.in/yaml.v3"
)

const (
	envVarListenAddr        = "CAMRELAY_LISTEN_ADDR"
	envVarPort              = "PORT"
	envVarLogLevel          = "CAMRELAY_LOG_LEVEL"
	envVarLogFormat         = "CAMRELAY_LOG_FORMAT"
	envVarAllowedOrigins    = "CAMRELAY_ALLOWED_ORIGINS"
	envVarStaticDir         = "CAMRELAY_STATIC_DIR"
	envVarMaxSessionMembers = "CAMRELAY_MAX_SESSION_MEMBERS"
	envVarMaxSessions       = "CAMRELAY_MAX_SESSIONS"
	envVarMaxConnections    = "CAMRELAY_MAX_CONNECTIONS"
	envVarStrictPayloads    = "CAMRELAY_STRICT_PAYLOADS"
	envVarShutdownTimeout   = "CAMRELAY_SHUTDOWN_TIMEOUT"
	envVarICEServersJSON    = "CAMRELAY_ICE_SERVERS_JSON"

	DefaultListenAddr        = ":3000"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = LogFormatText
	DefaultMaxSessionMembers = 2
	DefaultSendQueueSize     = 64
	DefaultMaxMessageBytes   = int64(64 * 1024)
	DefaultPongWait          = 60 * time.Second
	DefaultPingPeriod        = (DefaultPongWait * 9) / 10
	DefaultWriteWait         = 10 * time.Second
	DefaultMessagesPerSecond = 50
	DefaultMessageBurst      = 100
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultSTUNURL           = "stun:stun.l.google.com:19302"
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config holds every tunable of the relay process. Zero limits mean unlimited.
type Config struct {
	ListenAddr     string    `yaml:"listen_addr"`
	LogLevel       string    `yaml:"log_level"`
	LogFormat      LogFormat `yaml:"log_format"`
	AllowedOrigins []string  `yaml:"allowed_origins"`
	StaticDir      string    `yaml:"static_dir"`

	// MaxSessionMembers of 2 is strict one-to-one pairing; larger values allow rooms.
	MaxSessionMembers int `yaml:"max_session_members"`
	MaxSessions       int `yaml:"max_sessions"`
	MaxConnections    int `yaml:"max_connections"`

	SendQueueSize     int           `yaml:"send_queue_size"`
	MaxMessageBytes   int64         `yaml:"max_message_bytes"`
	PongWait          time.Duration `yaml:"pong_wait"`
	PingPeriod        time.Duration `yaml:"ping_period"`
	WriteWait         time.Duration `yaml:"write_wait"`
	MessagesPerSecond float64       `yaml:"messages_per_second"`
	MessageBurst      int           `yaml:"message_burst"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`

	// StrictPayloads makes the relay reject offer/answer payloads that are not
	// session descriptions and candidate payloads that are not candidate inits.
	StrictPayloads bool `yaml:"strict_payloads"`

	ICEServers []webrtc.ICEServer `yaml:"-"`
	RawICE     []iceServerYAML    `yaml:"ice_servers"`
}

type iceServerYAML struct {
	URLs       []string `yaml:"urls"`
	Username   string   `yaml:"username"`
	Credential string   `yaml:"credential"`
}

// Default returns the configuration used when no file or environment overrides are given.
func Default() Config {
	return Config{
		ListenAddr:        DefaultListenAddr,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		AllowedOrigins:    []string{"*"},
		MaxSessionMembers: DefaultMaxSessionMembers,
		SendQueueSize:     DefaultSendQueueSize,
		MaxMessageBytes:   DefaultMaxMessageBytes,
		PongWait:          DefaultPongWait,
		PingPeriod:        DefaultPingPeriod,
		WriteWait:         DefaultWriteWait,
		MessagesPerSecond: DefaultMessagesPerSecond,
		MessageBurst:      DefaultMessageBurst,
		ShutdownTimeout:   DefaultShutdownTimeout,
		ICEServers:        []webrtc.ICEServer{{URLs: []string{DefaultSTUNURL}}},
	}
}

// Load builds the configuration from defaults, then the YAML file at path (if
// any), then environment variables read through lookup. The result is validated.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if len(cfg.RawICE) > 0 {
			servers := make([]webrtc.ICEServer, 0, len(cfg.RawICE))
			for _, s := range cfg.RawICE {
				servers = append(servers, webrtc.ICEServer{URLs: s.URLs, Username: s.Username, Credential: s.Credential})
			}
			cfg.ICEServers = servers
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	cfg.ICEServers = normalizeICEServers(cfg.ICEServers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	if port, ok := lookup(envVarPort); ok && strings.TrimSpace(port) != "" {
		c.ListenAddr = ":" + strings.TrimSpace(port)
	}
	str(envVarListenAddr, &c.ListenAddr)
	str(envVarLogLevel, &c.LogLevel)
	str(envVarStaticDir, &c.StaticDir)

	var format string
	str(envVarLogFormat, &format)
	if format != "" {
		c.LogFormat = LogFormat(strings.ToLower(format))
	}

	if v, ok := lookup(envVarAllowedOrigins); ok && strings.TrimSpace(v) != "" {
		c.AllowedOrigins = splitList(v)
	}

	if err := integer(envVarMaxSessionMembers, &c.MaxSessionMembers); err != nil {
		return err
	}
	if err := integer(envVarMaxSessions, &c.MaxSessions); err != nil {
		return err
	}
	if err := integer(envVarMaxConnections, &c.MaxConnections); err != nil {
		return err
	}

	if v, ok := lookup(envVarStrictPayloads); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", envVarStrictPayloads, err)
		}
		c.StrictPayloads = b
	}

	if v, ok := lookup(envVarShutdownTimeout); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", envVarShutdownTimeout, err)
		}
		c.ShutdownTimeout = d
	}

	if v, ok := lookup(envVarICEServersJSON); ok && strings.TrimSpace(v) != "" {
		servers, err := ParseICEServersJSON(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envVarICEServersJSON, err)
		}
		c.ICEServers = servers
	}
	return nil
}

// Validate reports the first setting that would make the relay misbehave.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("listen_addr must not be empty")
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log_format %q (expected %q or %q)", c.LogFormat, LogFormatText, LogFormatJSON)
	}
	if c.MaxSessionMembers < 2 {
		return fmt.Errorf("max_session_members must be at least 2, got %d", c.MaxSessionMembers)
	}
	if c.MaxSessions < 0 || c.MaxConnections < 0 {
		return errors.New("max_sessions and max_connections must not be negative")
	}
	if c.SendQueueSize <= 0 {
		return fmt.Errorf("send_queue_size must be positive, got %d", c.SendQueueSize)
	}
	if c.MaxMessageBytes <= 0 {
		return fmt.Errorf("max_message_bytes must be positive, got %d", c.MaxMessageBytes)
	}
	if c.PongWait <= 0 || c.WriteWait <= 0 || c.PingPeriod <= 0 {
		return errors.New("pong_wait, ping_period and write_wait must be positive")
	}
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping_period (%s) must be shorter than pong_wait (%s)", c.PingPeriod, c.PongWait)
	}
	if c.MessagesPerSecond < 0 || c.MessageBurst < 0 {
		return errors.New("messages_per_second and message_burst must not be negative")
	}
	if c.MessagesPerSecond > 0 && c.MessageBurst == 0 {
		return errors.New("message_burst must be positive when messages_per_second is set")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("allowed_origins must not be empty")
	}
	return validateICEServers(c.ICEServers)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
