package output

import (
	"fmt"
	"io"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/panel"
)

// Writer is implemented by each output format.
type Writer interface {
	WriteCamera(st camera.Status) error
	WritePanel(snap panel.Snapshot) error
}

// Formats lists the names accepted by New
var Formats = []string{"text", "json", "yaml"}

// New returns the writer for format
func New(format string, w io.Writer, noColor bool) (Writer, error) {
	switch format {
	case "", "text":
		return NewTextWriter(w, noColor), nil
	case "json":
		return NewJSONWriter(w), nil
	case "yaml":
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
