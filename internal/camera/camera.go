package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoStream is returned by Frame when no camera stream is active.
	ErrNoStream = errors.New("no active camera stream")
	// ErrStreamStopped is returned by a stream used after Stop.
	ErrStreamStopped = errors.New("camera stream stopped")
)

// Facing selects the front or rear camera
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Toggle returns the other facing mode
func (f Facing) Toggle() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// ParseFacing validates a facing mode name
func ParseFacing(s string) (Facing, error) {
	switch Facing(s) {
	case FacingEnvironment, FacingUser:
		return Facing(s), nil
	default:
		return "", fmt.Errorf("invalid facing mode %q (expected environment or user)", s)
	}
}

// Mode says where the capture happens
type Mode string

const (
	// ModeLocal captures on this device and uploads the frame
	ModeLocal Mode = "local"
	// ModeRemote asks the scan server to capture with its own camera
	ModeRemote Mode = "remote"
)

// ParseMode validates a capture mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeRemote:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid capture mode %q (expected local or remote)", s)
	}
}

// Constraints describe the stream being asked for. Width and Height are
// ideal values, sources may deliver something else.
type Constraints struct {
	Facing Facing
	Width  int
	Height int
}

// Stream is an open camera handle
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Stop() error
}

// Source opens camera streams
type Source interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// NoticeKind is how a degraded camera state is shown to the operator
type NoticeKind string

const (
	NoticeNone        NoticeKind = ""
	NoticeAlert       NoticeKind = "alert"
	NoticePlaceholder NoticeKind = "placeholder"
)

const (
	AlertText       = "Could not access camera. Please ensure you have given permission."
	PlaceholderText = "Camera ready"
)

// Notice is shown instead of the live preview when there is no stream
type Notice struct {
	Kind NoticeKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Text string     `json:"text,omitempty" yaml:"text,omitempty"`
}

// Status describes the capture side for surfaces
type Status struct {
	Mode      Mode      `json:"mode" yaml:"mode"`
	Live      bool      `json:"live" yaml:"live"`
	SessionID string    `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Facing    Facing    `json:"facing" yaml:"facing"`
	StartedAt time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Notice    Notice    `json:"notice" yaml:"notice"`
}

// Session is the currently held stream
type Session struct {
	ID          string
	Constraints Constraints
	StartedAt   time.Time
	stream      Stream
}

// Options configure a Controller
type Options struct {
	Mode   Mode
	Facing Facing
	Width  int
	Height int
	// DiagnosticPreview tries a local stream in remote mode as well
	DiagnosticPreview bool
	Logger            *slog.Logger
}

// Controller owns the one camera session of the station. Acquire always
// releases the previous stream before opening a new one.
type Controller struct {
	source     Source
	mode       Mode
	width      int
	height     int
	diagnostic bool
	logger     *slog.Logger

	mu      sync.Mutex
	facing  Facing
	session *Session
	notice  Notice
}

// NewController returns a controller that has not opened anything yet
func NewController(source Source, opts Options) *Controller {
	if opts.Mode == "" {
		opts.Mode = ModeLocal
	}
	if opts.Facing == "" {
		opts.Facing = FacingEnvironment
	}
	if opts.Width == 0 {
		opts.Width = 1920
	}
	if opts.Height == 0 {
		opts.Height = 1080
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Controller{
		source:     source,
		mode:       opts.Mode,
		width:      opts.Width,
		height:     opts.Height,
		diagnostic: opts.DiagnosticPreview,
		logger:     opts.Logger.With("component", "camera", "mode", string(opts.Mode)),
		facing:     opts.Facing,
	}
}

// Mode returns the capture mode the controller was built for
func (c *Controller) Mode() Mode {
	return c.mode
}

// Start opens a stream for the current facing mode. Failures never escape:
// they are logged and reported as a degraded Status.
func (c *Controller) Start(ctx context.Context) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start(ctx)
	return c.status()
}

// SwitchFacing flips between the rear and front camera and restarts.
func (c *Controller) SwitchFacing(ctx context.Context) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.facing = c.facing.Toggle()
	c.logger.Info("Switching camera", "facing", string(c.facing))
	c.start(ctx)
	return c.status()
}

func (c *Controller) start(ctx context.Context) {
	c.release()

	if c.mode == ModeRemote && !c.diagnostic {
		c.notice = Notice{Kind: NoticePlaceholder, Text: PlaceholderText}
		return
	}

	if c.source == nil {
		c.degrade(errors.New("no camera source configured"))
		return
	}

	constraints := Constraints{Facing: c.facing, Width: c.width, Height: c.height}
	stream, err := c.source.Open(ctx, constraints)
	if err != nil {
		c.degrade(err)
		return
	}

	c.session = &Session{
		ID:          uuid.NewString(),
		Constraints: constraints,
		StartedAt:   time.Now(),
		stream:      stream,
	}
	c.notice = Notice{}
	c.logger.Info("Camera stream started", "session_id", c.session.ID, "facing", string(c.facing), "width", c.width, "height", c.height)
}

func (c *Controller) degrade(err error) {
	if c.mode == ModeRemote {
		// the preview is a convenience on remote stations, failing is normal
		c.logger.Debug("Diagnostic preview unavailable", "error", err)
		c.notice = Notice{Kind: NoticePlaceholder, Text: PlaceholderText}
		return
	}
	c.logger.Warn("Error accessing camera", "facing", string(c.facing), "error", err)
	c.notice = Notice{Kind: NoticeAlert, Text: AlertText}
}

// Release stops the current stream. It is safe to call repeatedly.
func (c *Controller) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
}

func (c *Controller) release() {
	if c.session == nil {
		return
	}
	if err := c.session.stream.Stop(); err != nil {
		c.logger.Warn("Failed to stop camera stream", "session_id", c.session.ID, "error", err)
	}
	c.logger.Debug("Camera stream released", "session_id", c.session.ID)
	c.session = nil
}

// Frame grabs a still from the live stream. The controller lock is only held
// to look up the stream, so Status stays responsive during a slow capture.
func (c *Controller) Frame(ctx context.Context) (image.Image, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil, ErrNoStream
	}
	stream := c.session.stream
	c.mu.Unlock()

	img, err := stream.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to grab frame: %w", err)
	}
	return img, nil
}

// Status reports the current session or degraded state
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status()
}

func (c *Controller) status() Status {
	st := Status{
		Mode:   c.mode,
		Facing: c.facing,
		Notice: c.notice,
	}
	if c.session != nil {
		st.Live = true
		st.SessionID = c.session.ID
		st.StartedAt = c.session.StartedAt
	}
	return st
}
