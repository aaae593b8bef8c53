package station

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/models"
	"github.com/cleartag/cleartag/internal/panel"
	"github.com/cleartag/cleartag/internal/render"
	"github.com/cleartag/cleartag/internal/scan"
)

// Camera is the part of the capture controller a station drives
type Camera interface {
	Mode() camera.Mode
	Start(ctx context.Context) camera.Status
	SwitchFacing(ctx context.Context) camera.Status
	Frame(ctx context.Context) (image.Image, error)
	Status() camera.Status
	Release()
}

// Scanner sends a capture to the scan endpoint
type Scanner interface {
	Scan(ctx context.Context, p scan.Payload) (*models.Result, error)
}

// Station runs capture → scan → render cycles against one results panel.
type Station struct {
	camera  Camera
	scanner Scanner
	panel   *panel.Panel
	logger  *slog.Logger
	now     func() time.Time
}

// New wires a station together
func New(cam Camera, scanner Scanner, p *panel.Panel, logger *slog.Logger) *Station {
	if logger == nil {
		logger = slog.Default()
	}
	if p == nil {
		p = panel.New()
	}
	return &Station{
		camera:  cam,
		scanner: scanner,
		panel:   p,
		logger:  logger.With("component", "station"),
		now:     time.Now,
	}
}

// Start brings the camera up
func (s *Station) Start(ctx context.Context) camera.Status {
	return s.camera.Start(ctx)
}

// Shutdown releases the camera
func (s *Station) Shutdown() {
	s.camera.Release()
}

// Capture runs one cycle. It returns panel.ErrBusy when a cycle is already
// in flight; every other failure ends up on the panel as an error card.
func (s *Station) Capture(ctx context.Context) (panel.Snapshot, error) {
	cycleID, err := s.panel.Begin()
	if err != nil {
		s.logger.Warn("Capture rejected", "error", err)
		return s.panel.Snapshot(), err
	}
	logger := s.logger.With("cycle_id", cycleID)
	logger.Info("Capture started", "mode", string(s.camera.Mode()))

	payload := scan.Trigger()
	if s.camera.Mode() == camera.ModeLocal {
		frame, err := s.camera.Frame(ctx)
		if err != nil {
			logger.Error("Capture failed", "error", err)
			s.panel.OnFailure(cycleID, render.Failure(err))
			return s.panel.Snapshot(), nil
		}
		payload.Frame = frame
	}

	s.panel.AwaitResponse(cycleID)
	result, err := s.scanner.Scan(ctx, payload)
	if err != nil {
		logger.Error("Scan failed", "error", err)
		s.panel.OnFailure(cycleID, render.Failure(err))
		return s.panel.Snapshot(), nil
	}

	s.panel.OnResultReady(cycleID, render.Render(*result, s.now()))
	logger.Info("Result rendered", "kind", result.Kind.String(), "status", result.Status().String())
	return s.panel.Snapshot(), nil
}

// ClosePanel hides the results panel
func (s *Station) ClosePanel() panel.Snapshot {
	s.panel.Close()
	return s.panel.Snapshot()
}

// SwitchCamera flips the facing mode
func (s *Station) SwitchCamera(ctx context.Context) camera.Status {
	return s.camera.SwitchFacing(ctx)
}

// CameraStatus reports the capture side
func (s *Station) CameraStatus() camera.Status {
	return s.camera.Status()
}

// Panel returns a snapshot of the results panel
func (s *Station) Panel() panel.Snapshot {
	return s.panel.Snapshot()
}

// Preview grabs a frame for the live preview. Remote stations only have one
// when the diagnostic preview is on.
func (s *Station) Preview(ctx context.Context) (image.Image, error) {
	return s.camera.Frame(ctx)
}
