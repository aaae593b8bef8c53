package station

import (
	"log/slog"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/config"
	"github.com/cleartag/cleartag/internal/panel"
	"github.com/cleartag/cleartag/internal/scan"
)

// FromConfig builds a station with the camera source and scan client the
// configuration asks for.
func FromConfig(cfg *config.Config, userAgent string, logger *slog.Logger) (*Station, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := scan.NewClient(cfg.ServerURL, scan.Options{
		Quality:   cfg.Scan.Quality,
		Timeout:   cfg.Scan.Timeout,
		UserAgent: userAgent,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	cam := camera.NewController(Source(cfg, logger), camera.Options{
		Mode:              cfg.CaptureMode(),
		Facing:            cfg.Facing(),
		Width:             cfg.Camera.Width,
		Height:            cfg.Camera.Height,
		DiagnosticPreview: cfg.Camera.DiagnosticPreview,
		Logger:            logger,
	})

	return New(cam, client, panel.New(), logger), nil
}

// Source picks the camera source: a fixed image when one is configured,
// otherwise the Pi still commands, optionally backed by a placeholder frame.
func Source(cfg *config.Config, logger *slog.Logger) camera.Source {
	if cfg.Camera.Image != "" {
		return camera.NewFileSource(cfg.Camera.Image)
	}

	still := camera.NewStillSource(logger)
	if len(cfg.Camera.Commands) > 0 {
		still.Commands = cfg.Camera.Commands
	}
	still.WarmUp = cfg.Camera.WarmUp
	still.EnvironmentCamera = cfg.Camera.EnvironmentIndex
	still.UserCamera = cfg.Camera.UserIndex

	if cfg.Camera.FallbackDummy {
		return &camera.FallbackSource{
			Primary:  still,
			Fallback: camera.PlaceholderSource{},
			Logger:   logger,
		}
	}
	return still
}
