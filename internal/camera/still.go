package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultStillCommands are tried in order. rpicam-still is the newer name of
// libcamera-still on Raspberry Pi OS.
var DefaultStillCommands = []string{"rpicam-still", "libcamera-still"}

// StillSource captures single frames with the Raspberry Pi camera tools.
type StillSource struct {
	Commands []string
	// Dir holds the temporary capture files, os.TempDir() when empty
	Dir string
	// WarmUp is passed as -t so auto exposure and focus can settle
	WarmUp            time.Duration
	EnvironmentCamera int
	UserCamera        int
	Logger            *slog.Logger

	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewStillSource returns a source using the default commands, rear camera 0
// and front camera 1.
func NewStillSource(logger *slog.Logger) *StillSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &StillSource{
		Commands:          DefaultStillCommands,
		WarmUp:            time.Second,
		EnvironmentCamera: 0,
		UserCamera:        1,
		Logger:            logger.With("component", "still-source"),
	}
}

// Open checks that at least one capture command is installed.
func (s *StillSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	lookPath := s.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var available []string
	for _, name := range s.Commands {
		path, err := lookPath(name)
		if err != nil {
			continue
		}
		available = append(available, path)
	}
	if len(available) == 0 {
		return nil, fmt.Errorf("no camera command found (tried %s)", strings.Join(s.Commands, ", "))
	}

	return &stillStream{source: s, constraints: c, commands: available}, nil
}

func (s *StillSource) cameraIndex(f Facing) int {
	if f == FacingUser {
		return s.UserCamera
	}
	return s.EnvironmentCamera
}

func (s *StillSource) exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.run != nil {
		return s.run(ctx, name, args...)
	}
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type stillStream struct {
	source      *StillSource
	constraints Constraints
	commands    []string

	mu      sync.Mutex
	stopped bool
}

func (st *stillStream) Frame(ctx context.Context) (image.Image, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.stopped {
		return nil, ErrStreamStopped
	}

	tmp, err := os.CreateTemp(st.source.Dir, "scan_*.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	args := []string{
		"-t", strconv.FormatInt(st.source.WarmUp.Milliseconds(), 10),
		"-o", path,
		"--width", strconv.Itoa(st.constraints.Width),
		"--height", strconv.Itoa(st.constraints.Height),
		"--camera", strconv.Itoa(st.source.cameraIndex(st.constraints.Facing)),
		"--nopreview",
		"--autofocus-mode", "auto",
	}

	var errs []error
	for _, cmd := range st.commands {
		st.source.Logger.Debug("Attempting capture", "command", cmd, "args", strings.Join(args, " "))
		out, err := st.source.exec(ctx, cmd, args...)
		if err != nil {
			st.source.Logger.Warn("Capture command failed", "command", cmd, "error", err, "output", strings.TrimSpace(string(out)))
			errs = append(errs, fmt.Errorf("%s: %w", cmd, err))
			continue
		}
		img, err := decodeFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd, err))
			continue
		}
		st.source.Logger.Info("Capture successful", "command", cmd)
		return img, nil
	}
	return nil, fmt.Errorf("could not capture image: %w", errors.Join(errs...))
}

func (st *stillStream) Stop() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.stopped = true
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
