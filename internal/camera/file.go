package camera

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
)

// FileSource plays back a single image file as if it were the camera.
type FileSource struct {
	Path string
}

// NewFileSource returns a source for path
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("camera image unavailable: %w", err)
	}
	return &fileStream{path: s.Path}, nil
}

type fileStream struct {
	path    string
	mu      sync.Mutex
	stopped bool
}

func (f *fileStream) Frame(ctx context.Context) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return nil, ErrStreamStopped
	}
	return decodeFile(f.path)
}

func (f *fileStream) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}
