package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cleartag.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.Camera.Width != 1920 || cfg.Camera.Height != 1080 || cfg.Scan.Quality != 90 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.Scan.Timeout != 0 {
		t.Errorf("Expected no scan timeout by default, got %s", cfg.Scan.Timeout)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server_url: http://raspberrypi.local:8000
mode: remote
camera:
  facing: user
  warm_up: 2s
  commands: [libcamera-still]
scan:
  timeout: 30s
`)
	t.Setenv("CLEARTAG_SERVER_URL", "http://10.0.0.9:8000")
	t.Setenv("CLEARTAG_JPEG_QUALITY", "75")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerURL != "http://10.0.0.9:8000" {
		t.Errorf("Expected env to override file, got %q", cfg.ServerURL)
	}
	if cfg.Mode != "remote" || cfg.Camera.Facing != "user" {
		t.Errorf("Expected file values, got mode=%q facing=%q", cfg.Mode, cfg.Camera.Facing)
	}
	if cfg.Camera.WarmUp != 2*time.Second || cfg.Scan.Timeout != 30*time.Second {
		t.Errorf("Unexpected durations warm_up=%s timeout=%s", cfg.Camera.WarmUp, cfg.Scan.Timeout)
	}
	if len(cfg.Camera.Commands) != 1 || cfg.Camera.Commands[0] != "libcamera-still" {
		t.Errorf("Unexpected commands %v", cfg.Camera.Commands)
	}
	if cfg.Scan.Quality != 75 {
		t.Errorf("Expected quality from env, got %d", cfg.Scan.Quality)
	}
	if cfg.Camera.Width != 1920 {
		t.Errorf("Expected default width kept, got %d", cfg.Camera.Width)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "server: http://localhost:8000\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerURL != Default().ServerURL {
		t.Errorf("Expected defaults, got %q", cfg.ServerURL)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	tests := map[string]string{
		"CLEARTAG_JPEG_QUALITY":   "high",
		"CLEARTAG_SCAN_TIMEOUT":   "soon",
		"CLEARTAG_FALLBACK_DUMMY": "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			lookup := func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			}
			if err := cfg.applyEnv(lookup); err == nil {
				t.Errorf("Expected error for %s=%s", key, value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "bad mode", mutate: func(c *Config) { c.Mode = "cloud" }, wantErr: "capture mode"},
		{name: "bad facing", mutate: func(c *Config) { c.Camera.Facing = "left" }, wantErr: "facing mode"},
		{name: "bad quality", mutate: func(c *Config) { c.Scan.Quality = 0 }, wantErr: "JPEG quality"},
		{name: "bad resolution", mutate: func(c *Config) { c.Camera.Width = 0 }, wantErr: "resolution"},
		{name: "missing server", mutate: func(c *Config) { c.ServerURL = " " }, wantErr: "server_url"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
