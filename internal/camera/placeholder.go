package camera

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PlaceholderCaption is drawn on frames produced without a camera.
const PlaceholderCaption = "Dummy Capture (Camera Not Found)"

// PlaceholderSource produces grey frames with a caption. It stands in for a
// missing camera on development machines.
type PlaceholderSource struct{}

func (PlaceholderSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	return &placeholderStream{width: c.Width, height: c.Height}, nil
}

type placeholderStream struct {
	width  int
	height int
}

func (p *placeholderStream) Frame(ctx context.Context) (image.Image, error) {
	w, h := p.width, p.height
	if w <= 0 || h <= 0 {
		w, h = 1920, 1080
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Gray{Y: 128}}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(50, 50),
	}
	d.DrawString(PlaceholderCaption)
	return img, nil
}

func (p *placeholderStream) Stop() error { return nil }

// FallbackSource opens Primary and falls back to Fallback when that fails.
type FallbackSource struct {
	Primary  Source
	Fallback Source
	Logger   *slog.Logger
}

func (s *FallbackSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	stream, err := s.Primary.Open(ctx, c)
	if err == nil {
		return stream, nil
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Camera not available, using fallback source", "error", err)
	return s.Fallback.Open(ctx, c)
}
