package camera

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestStillSourceNoCommand(t *testing.T) {
	s := NewStillSource(quietLogger)
	s.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	_, err := s.Open(context.Background(), Constraints{Facing: FacingEnvironment})
	if err == nil || !strings.Contains(err.Error(), "rpicam-still") {
		t.Errorf("Expected missing command error, got %v", err)
	}
}

func TestStillSourceFallsBackToSecondCommand(t *testing.T) {
	s := NewStillSource(quietLogger)
	s.Dir = t.TempDir()
	s.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }

	var calls []string
	var gotArgs []string
	s.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, filepath.Base(name))
		if strings.HasSuffix(name, "rpicam-still") {
			return []byte("ERROR: no cameras available"), errors.New("exit status 1")
		}
		gotArgs = args
		writePNG(t, argValue(args, "-o"), 8, 6)
		return nil, nil
	}

	stream, err := s.Open(context.Background(), Constraints{Facing: FacingUser, Width: 1920, Height: 1080})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	img, err := stream.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("Unexpected frame size %v", img.Bounds())
	}
	if len(calls) != 2 || calls[1] != "libcamera-still" {
		t.Errorf("Expected rpicam-still then libcamera-still, got %v", calls)
	}
	if argValue(gotArgs, "--camera") != "1" {
		t.Errorf("Expected front camera index 1, got args %v", gotArgs)
	}
	if argValue(gotArgs, "--width") != "1920" || argValue(gotArgs, "--height") != "1080" {
		t.Errorf("Expected 1920x1080, got args %v", gotArgs)
	}
	if _, err := os.Stat(argValue(gotArgs, "-o")); !os.IsNotExist(err) {
		t.Error("Expected temporary capture file removed")
	}

	if err := stream.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if _, err := stream.Frame(context.Background()); !errors.Is(err, ErrStreamStopped) {
		t.Errorf("Expected ErrStreamStopped, got %v", err)
	}
}

func TestStillSourceAllCommandsFail(t *testing.T) {
	s := NewStillSource(quietLogger)
	s.Dir = t.TempDir()
	s.lookPath = func(name string) (string, error) { return name, nil }
	s.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}

	stream, err := s.Open(context.Background(), Constraints{Facing: FacingEnvironment, Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := stream.Frame(context.Background()); err == nil {
		t.Error("Expected capture error")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label.png")
	writePNG(t, path, 10, 5)

	stream, err := NewFileSource(path).Open(context.Background(), Constraints{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	img, err := stream.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 5 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}

	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.jpg")).Open(context.Background(), Constraints{}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFallbackSource(t *testing.T) {
	src := &FallbackSource{
		Primary:  &fakeSource{err: errors.New("no camera")},
		Fallback: PlaceholderSource{},
		Logger:   quietLogger,
	}
	stream, err := src.Open(context.Background(), Constraints{Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	img, err := stream.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 320, 240) {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}
}
