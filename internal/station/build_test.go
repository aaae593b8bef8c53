package station

import (
	"testing"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/config"
)

func TestSourceSelection(t *testing.T) {
	cfg := config.Default()
	if _, ok := Source(cfg, quietLogger).(*camera.StillSource); !ok {
		t.Error("Expected still source by default")
	}

	cfg.Camera.FallbackDummy = true
	if _, ok := Source(cfg, quietLogger).(*camera.FallbackSource); !ok {
		t.Error("Expected fallback source when fallback_dummy is set")
	}

	cfg.Camera.Image = "/tmp/label.jpg"
	if _, ok := Source(cfg, quietLogger).(*camera.FileSource); !ok {
		t.Error("Expected file source when an image is configured")
	}
}

func TestFromConfigRejectsInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = "both"
	if _, err := FromConfig(cfg, "cleartag/test", quietLogger); err == nil {
		t.Error("Expected validation error")
	}

	cfg = config.Default()
	cfg.ServerURL = "not a url"
	if _, err := FromConfig(cfg, "cleartag/test", quietLogger); err == nil {
		t.Error("Expected invalid server URL error")
	}
}

func TestFromConfigRemote(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = "remote"
	s, err := FromConfig(cfg, "cleartag/test", quietLogger)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	st := s.CameraStatus()
	if st.Mode != camera.ModeRemote {
		t.Errorf("Expected remote mode, got %s", st.Mode)
	}
}
