package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sick-safevisionary/govisionary/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	if cfg.Control.Port != 2112 {
		t.Errorf("Control.Port = %d, want %d", cfg.Control.Port, 2112)
	}
	if cfg.UDP.Port != 6060 {
		t.Errorf("UDP.Port = %d, want %d", cfg.UDP.Port, 6060)
	}
	if cfg.TCPStream.Port != 2113 {
		t.Errorf("TCPStream.Port = %d, want %d", cfg.TCPStream.Port, 2113)
	}
	if cfg.Session.ClientID != "govisionary" {
		t.Errorf("Session.ClientID = %q, want %q", cfg.Session.ClientID, "govisionary")
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9100")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}

	if err := config.Validate(cfg); err != nil {
		t.Errorf("DefaultConfig() failed validation: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
control:
  host: "10.0.0.5"
  port: 2112
udp:
  port: 7000
tcp_stream:
  port: 7001
session:
  client_id: "test-client"
auth:
  level: "maintenance"
  password: "secret"
  secure: true
metrics:
  addr: ":9200"
  path: "/custom-metrics"
log:
  level: "debug"
  format: "text"
`

	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Control.Host != "10.0.0.5" {
		t.Errorf("Control.Host = %q, want %q", cfg.Control.Host, "10.0.0.5")
	}
	if cfg.UDP.Port != 7000 {
		t.Errorf("UDP.Port = %d, want %d", cfg.UDP.Port, 7000)
	}
	if cfg.TCPStream.Port != 7001 {
		t.Errorf("TCPStream.Port = %d, want %d", cfg.TCPStream.Port, 7001)
	}
	if cfg.Session.ClientID != "test-client" {
		t.Errorf("Session.ClientID = %q, want %q", cfg.Session.ClientID, "test-client")
	}
	if cfg.Auth.Level != "maintenance" {
		t.Errorf("Auth.Level = %q, want %q", cfg.Auth.Level, "maintenance")
	}
	if !cfg.Auth.Secure {
		t.Error("Auth.Secure = false, want true")
	}
	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9200")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Parallel()

	// Partial YAML: only override control.host and log.level.
	// Everything else should inherit from defaults.
	yamlContent := `
control:
  host: "192.168.2.50"
log:
  level: "warn"
`

	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Control.Host != "192.168.2.50" {
		t.Errorf("Control.Host = %q, want %q", cfg.Control.Host, "192.168.2.50")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}

	// Defaults preserved.
	if cfg.Control.Port != 2112 {
		t.Errorf("Control.Port = %d, want default %d", cfg.Control.Port, 2112)
	}
	if cfg.UDP.Port != 6060 {
		t.Errorf("UDP.Port = %d, want default %d", cfg.UDP.Port, 6060)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Errorf("Metrics.Addr = %q, want default %q", cfg.Metrics.Addr, ":9100")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, "json")
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr error
	}{
		{
			name: "empty control host",
			modify: func(cfg *config.Config) {
				cfg.Control.Host = ""
			},
			wantErr: config.ErrEmptyControlHost,
		},
		{
			name: "control port too low",
			modify: func(cfg *config.Config) {
				cfg.Control.Port = 0
			},
			wantErr: config.ErrInvalidControlPort,
		},
		{
			name: "control port too high",
			modify: func(cfg *config.Config) {
				cfg.Control.Port = 70000
			},
			wantErr: config.ErrInvalidControlPort,
		},
		{
			name: "udp port out of range",
			modify: func(cfg *config.Config) {
				cfg.UDP.Port = 0
			},
			wantErr: config.ErrInvalidUDPPort,
		},
		{
			name: "tcp stream port out of range",
			modify: func(cfg *config.Config) {
				cfg.TCPStream.Port = 70000
			},
			wantErr: config.ErrInvalidTCPStreamPort,
		},
		{
			name: "non-positive transport timeout",
			modify: func(cfg *config.Config) {
				cfg.Transport.TimeoutSecs = 0
			},
			wantErr: config.ErrInvalidTransportTimeout,
		},
		{
			name: "unrecognized auth level",
			modify: func(cfg *config.Config) {
				cfg.Auth.Level = "superuser"
			},
			wantErr: config.ErrInvalidAuthLevel,
		},
		{
			name: "empty metrics addr",
			modify: func(cfg *config.Config) {
				cfg.Metrics.Addr = ""
			},
			wantErr: config.ErrEmptyMetricsAddr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			tt.modify(cfg)

			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate() returned nil, want error")
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "WARN", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "Error", want: slog.LevelError},
		{input: "unknown", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "trace", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := config.ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAuthLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  int8
	}{
		{input: "run", want: 0},
		{input: "", want: 0},
		{input: "operator", want: 1},
		{input: "maintenance", want: 2},
		{input: "authorized_client", want: 3},
		{input: "service", want: 4},
		{input: "Service", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := config.AuthLevel(tt.input)
			if got != tt.want {
				t.Errorf("AuthLevel(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/path/config.yml")
	if err == nil {
		t.Fatal("Load() returned nil error for nonexistent file")
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "govisionary.yml")

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	return path
}
