package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/models"
	"github.com/cleartag/cleartag/internal/panel"
	"github.com/cleartag/cleartag/internal/scan"
	"github.com/cleartag/cleartag/internal/station"
)

// Runner scans image files one at a time through a local-mode station
type Runner struct {
	scanner station.Scanner
	logger  *slog.Logger
	now     func() time.Time
}

// NewRunner returns a runner that sends every image to scanner
func NewRunner(scanner station.Scanner, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		scanner: scanner,
		logger:  logger.With("component", "batch"),
		now:     time.Now,
	}
}

// Run scans paths in order. It only fails when ctx is cancelled; per-image
// failures are recorded on the row.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Row, error) {
	rows := make([]Row, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		r.logger.Info("Processing image", "file", filepath.Base(path), "progress", fmt.Sprintf("%d/%d", i+1, len(paths)))
		rows = append(rows, r.scanFile(ctx, path))
	}
	return rows, nil
}

func (r *Runner) scanFile(ctx context.Context, path string) Row {
	row := Row{File: filepath.Base(path)}
	start := r.now()
	defer func() {
		row.DurationMS = r.now().Sub(start).Milliseconds()
	}()

	rec := &recorder{next: r.scanner}
	cam := camera.NewController(camera.NewFileSource(path), camera.Options{
		Mode:   camera.ModeLocal,
		Logger: r.logger,
	})
	st := station.New(cam, rec, panel.New(), r.logger)
	defer st.Shutdown()

	if status := st.Start(ctx); !status.Live {
		row.Error = "camera image unavailable"
		return row
	}

	snap, err := st.Capture(ctx)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	if snap.State == panel.StateFailed {
		row.Error = "scan failed"
		if snap.Content != nil && snap.Content.Error != nil {
			row.Error = snap.Content.Error.Detail
		}
		return row
	}

	res := rec.last()
	if res == nil {
		row.Error = "no result"
		return row
	}
	fillRow(&row, *res)
	return row
}

func fillRow(row *Row, res models.Result) {
	row.Kind = res.Kind.String()
	row.Status = res.Status().String()
	row.Message = res.Message().String()

	found, total := res.CheckCounts()
	row.ChecksFound = int32(found)
	row.ChecksTotal = int32(total)

	switch res.Kind {
	case models.KindScored:
		if res.Scored != nil && res.Scored.ComplianceScore.Set {
			score := int32(res.Scored.ComplianceScore.Value)
			row.Score = &score
		}
	case models.KindSimple:
		if res.Simple != nil {
			row.Product = res.Simple.ProductName.String()
		}
	}
}

// recorder keeps the last decoded result so rows can carry the raw fields
// the rendered view no longer has.
type recorder struct {
	next station.Scanner

	mu     sync.Mutex
	result *models.Result
}

func (r *recorder) Scan(ctx context.Context, p scan.Payload) (*models.Result, error) {
	res, err := r.next.Scan(ctx, p)
	r.mu.Lock()
	r.result = res
	r.mu.Unlock()
	return res, err
}

func (r *recorder) last() *models.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}
