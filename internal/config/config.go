// Package config manages govisionary configuration using koanf/v2.
//
// Supports YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete govisionary configuration.
type Config struct {
	Control   ControlConfig   `koanf:"control"`
	Transport TransportConfig `koanf:"transport"`
	Session   SessionConfig   `koanf:"session"`
	UDP       UDPConfig       `koanf:"udp"`
	TCPStream TCPStreamConfig `koanf:"tcp_stream"`
	Auth      AuthConfig      `koanf:"auth"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Log       LogConfig       `koanf:"log"`
}

// ControlConfig addresses the device's CoLa control channel.
type ControlConfig struct {
	// Host is the device's IP address or hostname.
	Host string `koanf:"host"`
	// Port is the control-channel TCP port (CoLa-B or CoLa-2).
	Port int `koanf:"port"`
}

// TransportConfig holds the control-channel startup timeout.
type TransportConfig struct {
	// TimeoutSecs bounds svstreamd's startup sequence as a whole: dialing
	// the control channel, opening the session, login, reading the blob
	// client config and starting acquisition. Later Transport I/O calls use
	// the transport's own fixed receive deadline.
	TimeoutSecs int `koanf:"timeout_s"`
}

// SessionConfig holds the CoLa-2 session parameters negotiated at open time.
type SessionConfig struct {
	// TimeoutSecs is the idle session timeout requested of the device.
	// Zero selects visionary.DefaultSessionTimeoutSecs.
	TimeoutSecs int `koanf:"timeout_s"`
	// ClientID identifies this client in Variant 2's session-open body.
	ClientID string `koanf:"client_id"`
}

// UDPConfig addresses the UDP blob fragment path.
type UDPConfig struct {
	// Port is the local port the fragment reassembler listens on.
	Port int `koanf:"port"`
}

// TCPStreamConfig addresses the TCP blob stream path.
type TCPStreamConfig struct {
	// Port is the device's TCP blob stream port.
	Port int `koanf:"port"`
}

// AuthConfig selects and parameterizes device login.
type AuthConfig struct {
	// Level is the CoLa access level requested at login: "run",
	// "operator", "maintenance", "authorized_client", or "service".
	Level string `koanf:"level"`
	// Password is the plaintext password hashed by whichever
	// authentication scheme is selected.
	Password string `koanf:"password"`
	// Secure selects SecureAuthenticator (challenge/response) over
	// LegacyAuthenticator (static MD5 fold) for Login/Logout.
	Secure bool `koanf:"secure"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Control: ControlConfig{
			Host: "192.168.1.10",
			Port: 2112,
		},
		Transport: TransportConfig{
			TimeoutSecs: 5,
		},
		Session: SessionConfig{
			TimeoutSecs: 5,
			ClientID:    "govisionary",
		},
		UDP: UDPConfig{
			Port: 6060,
		},
		TCPStream: TCPStreamConfig{
			Port: 2113,
		},
		Auth: AuthConfig{
			Level:  "run",
			Secure: false,
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for govisionary configuration.
// Variables are named GOVISIONARY_<section>_<key>, e.g., GOVISIONARY_CONTROL_HOST.
const envPrefix = "GOVISIONARY_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (GOVISIONARY_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults.
//
// Environment variable mapping:
//
//	GOVISIONARY_CONTROL_HOST     -> control.host
//	GOVISIONARY_CONTROL_PORT     -> control.port
//	GOVISIONARY_UDP_PORT         -> udp.port
//	GOVISIONARY_TCP_STREAM_PORT  -> tcp_stream.port
//	GOVISIONARY_AUTH_PASSWORD    -> auth.password
//	GOVISIONARY_LOG_LEVEL        -> log.level
//
// Uses koanf/v2 with file + env providers and YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms GOVISIONARY_CONTROL_HOST -> control.host.
// Strips the GOVISIONARY_ prefix, lowercases, and replaces the underscore
// that ends the section name with a dot; underscores inside a section name
// (tcp_stream) or a key (timeout_s, client_id) are kept.
func envKeyMapper(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range []string{"control", "transport", "session", "udp", "tcp_stream", "auth", "metrics", "log"} {
		if rest, ok := strings.CutPrefix(s, section+"_"); ok {
			return section + "." + rest
		}
	}
	return strings.ReplaceAll(s, "_", ".")
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"control.host":        defaults.Control.Host,
		"control.port":        defaults.Control.Port,
		"transport.timeout_s": defaults.Transport.TimeoutSecs,
		"session.timeout_s":   defaults.Session.TimeoutSecs,
		"session.client_id":   defaults.Session.ClientID,
		"udp.port":            defaults.UDP.Port,
		"tcp_stream.port":     defaults.TCPStream.Port,
		"auth.level":          defaults.Auth.Level,
		"auth.password":       defaults.Auth.Password,
		"auth.secure":         defaults.Auth.Secure,
		"metrics.addr":        defaults.Metrics.Addr,
		"metrics.path":        defaults.Metrics.Path,
		"log.level":           defaults.Log.Level,
		"log.format":          defaults.Log.Format,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyControlHost indicates the control host is empty.
	ErrEmptyControlHost = errors.New("control.host must not be empty")

	// ErrInvalidControlPort indicates the control port is out of range.
	ErrInvalidControlPort = errors.New("control.port must be between 1 and 65535")

	// ErrInvalidUDPPort indicates the UDP listen port is out of range.
	ErrInvalidUDPPort = errors.New("udp.port must be between 1 and 65535")

	// ErrInvalidTCPStreamPort indicates the TCP stream port is out of range.
	ErrInvalidTCPStreamPort = errors.New("tcp_stream.port must be between 1 and 65535")

	// ErrInvalidTransportTimeout indicates the transport timeout is non-positive.
	ErrInvalidTransportTimeout = errors.New("transport.timeout_s must be > 0")

	// ErrInvalidAuthLevel indicates the auth level string is unrecognized.
	ErrInvalidAuthLevel = errors.New("auth.level must be one of run, operator, maintenance, authorized_client, service")

	// ErrEmptyMetricsAddr indicates the metrics listen address is empty.
	ErrEmptyMetricsAddr = errors.New("metrics.addr must not be empty")
)

// ValidAuthLevels lists the recognized auth.level strings.
var ValidAuthLevels = map[string]bool{
	"run":               true,
	"operator":          true,
	"maintenance":       true,
	"authorized_client": true,
	"service":           true,
}

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.Control.Host == "" {
		return ErrEmptyControlHost
	}
	if cfg.Control.Port < 1 || cfg.Control.Port > 65535 {
		return ErrInvalidControlPort
	}
	if cfg.UDP.Port < 1 || cfg.UDP.Port > 65535 {
		return ErrInvalidUDPPort
	}
	if cfg.TCPStream.Port < 1 || cfg.TCPStream.Port > 65535 {
		return ErrInvalidTCPStreamPort
	}
	if cfg.Transport.TimeoutSecs <= 0 {
		return ErrInvalidTransportTimeout
	}
	if cfg.Auth.Level != "" && !ValidAuthLevels[cfg.Auth.Level] {
		return ErrInvalidAuthLevel
	}
	if cfg.Metrics.Addr == "" {
		return ErrEmptyMetricsAddr
	}
	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AuthLevel maps cfg.Auth.Level to a visionary.UserLevel-compatible int8
// ordinal (Run=0, Operator=1, Maintenance=2, AuthorizedClient=3,
// Service=4), matching internal/visionary.UserLevel's declaration order.
// Unknown values return 0 (Run).
func AuthLevel(level string) int8 {
	switch strings.ToLower(level) {
	case "operator":
		return 1
	case "maintenance":
		return 2
	case "authorized_client":
		return 3
	case "service":
		return 4
	default:
		return 0
	}
}
