package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.Stream.Endpoint != "ws://127.0.0.1:3000/ws" {
		t.Errorf("unexpected default endpoint %q", cfg.Stream.Endpoint)
	}
	if cfg.Stream.ReconnectDelay != 3*time.Second {
		t.Errorf("unexpected reconnect delay %v", cfg.Stream.ReconnectDelay)
	}
	if cfg.Engine.TickInterval != time.Second {
		t.Errorf("unexpected tick interval %v", cfg.Engine.TickInterval)
	}
	if cfg.View.ActiveWindow != 60*time.Minute {
		t.Errorf("unexpected active window %v", cfg.View.ActiveWindow)
	}
}

func TestValidate_Endpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{"ws", "ws://localhost:3000/ws", false},
		{"wss", "wss://signals.example.com/ws", false},
		{"empty", "", true},
		{"http scheme", "http://localhost:3000/ws", true},
		{"no host", "ws://", true},
		{"garbage", "ws://bad url with spaces", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Stream.Endpoint = tt.endpoint
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 70000
	if cfg.Validate() == nil {
		t.Error("expected out-of-range port to fail")
	}

	cfg = Defaults()
	cfg.Stream.ReconnectDelay = -time.Second
	if cfg.Validate() == nil {
		t.Error("expected negative reconnect delay to fail")
	}
}

func TestValidate_WebhookNotifier(t *testing.T) {
	cfg := Defaults()
	cfg.Notifiers = map[string]NotifierConfig{
		"webhook": {Enabled: true},
	}
	if cfg.Validate() == nil {
		t.Error("expected enabled webhook without url to fail")
	}

	cfg.Notifiers["webhook"] = NotifierConfig{Enabled: true, URL: "http://localhost:9000/hook"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid webhook config, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  host: 127.0.0.1
  port: 9090
stream:
  endpoint: wss://feed.example.com/ws
  reconnect_delay: 5s
engine:
  tick_interval: 2s
view:
  active_window: 30m
metrics:
  enabled: true
  path: /metrics
notifiers:
  webhook:
    enabled: true
    url: http://localhost:9000/hook
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Stream.Endpoint != "wss://feed.example.com/ws" {
		t.Errorf("endpoint = %q", cfg.Stream.Endpoint)
	}
	if cfg.Stream.ReconnectDelay != 5*time.Second {
		t.Errorf("reconnect delay = %v", cfg.Stream.ReconnectDelay)
	}
	if cfg.View.ActiveWindow != 30*time.Minute {
		t.Errorf("active window = %v", cfg.View.ActiveWindow)
	}
	if !cfg.Notifiers["webhook"].Enabled {
		t.Error("webhook notifier not loaded")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("STREAM_ENDPOINT", "ws://override.example.com/ws")
	cfg := Defaults()
	if cfg.Stream.Endpoint != "ws://override.example.com/ws" {
		t.Errorf("env override ignored, got %q", cfg.Stream.Endpoint)
	}
}
