package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// WriteParquet writes rows to path, replacing any existing file
func WriteParquet(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[Row](f)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	slog.Debug("Parquet export written", "path", path, "rows", len(rows))
	return f.Close()
}

// ReadParquet loads an export written by WriteParquet
func ReadParquet(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var rows []Row
	buf := make([]Row, 128)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
	}
	return rows, nil
}

// Summarize counts rows per status and kind and averages the scores
func Summarize(rows []Row, cfg SummaryConfig) Summary {
	s := Summary{
		Config:   cfg,
		Total:    len(rows),
		ByStatus: make(map[string]int),
		ByKind:   make(map[string]int),
	}

	var total float64
	for _, r := range rows {
		if r.Failed() {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.ByStatus[r.Status]++
		s.ByKind[r.Kind]++
		if r.Score != nil {
			s.ScoredCount++
			total += float64(*r.Score)
		}
	}
	if s.ScoredCount > 0 {
		s.MeanScore = total / float64(s.ScoredCount)
	}
	return s
}

// SummaryPath is where the YAML summary for a Parquet export goes
func SummaryPath(parquetPath string) string {
	return strings.TrimSuffix(parquetPath, filepath.Ext(parquetPath)) + ".yaml"
}

// WriteSummary writes s as YAML to path
func WriteSummary(path string, s Summary) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

// PrintSummary writes a human readable summary
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Batch Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Total Images:       %d\n", s.Total)
	fmt.Fprintf(w, "Scanned:            %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed:             %d\n", s.Failed)
	if s.ScoredCount > 0 {
		fmt.Fprintf(w, "Mean Score:         %.1f%%\n", s.MeanScore)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "By Status:")

	statuses := make([]string, 0, len(s.ByStatus))
	for status := range s.ByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(w, "  %s: %d\n", status, s.ByStatus[status])
	}
	fmt.Fprintln(w, "========================================")
}
