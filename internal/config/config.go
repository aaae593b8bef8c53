package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleartag/cleartag/internal/camera"
)

// Config holds everything a station needs
type Config struct {
	// ServerURL is the base URL of the scan server, /scan is appended
	ServerURL string `yaml:"server_url"`
	// Mode is local (capture here) or remote (server captures)
	Mode     string       `yaml:"mode"`
	Listen   string       `yaml:"listen"`
	LogLevel string       `yaml:"log_level"`
	Camera   CameraConfig `yaml:"camera"`
	Scan     ScanConfig   `yaml:"scan"`
}

// CameraConfig configures the capture side
type CameraConfig struct {
	Facing   string   `yaml:"facing"`
	Width    int      `yaml:"width"`
	Height   int      `yaml:"height"`
	Commands []string `yaml:"commands"`
	// EnvironmentIndex and UserIndex are the --camera numbers of the rear
	// and front camera
	EnvironmentIndex int           `yaml:"environment_index"`
	UserIndex        int           `yaml:"user_index"`
	WarmUp           time.Duration `yaml:"warm_up"`
	// Image replaces the camera with a fixed image file
	Image string `yaml:"image"`
	// FallbackDummy serves a generated grey frame when no camera is found
	FallbackDummy     bool `yaml:"fallback_dummy"`
	DiagnosticPreview bool `yaml:"diagnostic_preview"`
}

// ScanConfig configures requests to the scan server
type ScanConfig struct {
	Quality int           `yaml:"quality"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration of a stock Raspberry Pi station
func Default() *Config {
	return &Config{
		ServerURL: "http://localhost:8000",
		Mode:      string(camera.ModeLocal),
		Listen:    ":8888",
		LogLevel:  "info",
		Camera: CameraConfig{
			Facing:           string(camera.FacingEnvironment),
			Width:            1920,
			Height:           1080,
			Commands:         append([]string(nil), camera.DefaultStillCommands...),
			EnvironmentIndex: 0,
			UserIndex:        1,
			WarmUp:           time.Second,
		},
		Scan: ScanConfig{
			Quality: 90,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// not empty) and CLEARTAG_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"CLEARTAG_SERVER_URL":   &c.ServerURL,
		"CLEARTAG_MODE":         &c.Mode,
		"CLEARTAG_LISTEN":       &c.Listen,
		"CLEARTAG_LOG_LEVEL":    &c.LogLevel,
		"CLEARTAG_FACING":       &c.Camera.Facing,
		"CLEARTAG_CAMERA_IMAGE": &c.Camera.Image,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("CLEARTAG_JPEG_QUALITY"); ok && v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CLEARTAG_JPEG_QUALITY %q: %w", v, err)
		}
		c.Scan.Quality = q
	}
	if v, ok := lookup("CLEARTAG_SCAN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CLEARTAG_SCAN_TIMEOUT %q: %w", v, err)
		}
		c.Scan.Timeout = d
	}
	if v, ok := lookup("CLEARTAG_FALLBACK_DUMMY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CLEARTAG_FALLBACK_DUMMY %q: %w", v, err)
		}
		c.Camera.FallbackDummy = b
	}
	return nil
}

// Validate checks the values a station cannot start without
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ServerURL) == "" {
		errs = append(errs, errors.New("server_url is required"))
	}
	if _, err := camera.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := camera.ParseFacing(c.Camera.Facing); err != nil {
		errs = append(errs, err)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid camera resolution %dx%d", c.Camera.Width, c.Camera.Height))
	}
	if c.Scan.Quality < 1 || c.Scan.Quality > 100 {
		errs = append(errs, fmt.Errorf("invalid JPEG quality %d (expected 1-100)", c.Scan.Quality))
	}
	if c.Scan.Timeout < 0 {
		errs = append(errs, fmt.Errorf("invalid scan timeout %s", c.Scan.Timeout))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CaptureMode returns the parsed capture mode
func (c *Config) CaptureMode() camera.Mode {
	return camera.Mode(c.Mode)
}

// Facing returns the parsed facing mode
func (c *Config) Facing() camera.Facing {
	return camera.Facing(c.Camera.Facing)
}

// ParseLevel maps a level name onto slog
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}
