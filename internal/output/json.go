package output

import (
	"encoding/json"
	"io"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/panel"
)

// JSONWriter writes one indented JSON document per call
type JSONWriter struct {
	enc *json.Encoder
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONWriter{enc: enc}
}

func (j *JSONWriter) WriteCamera(st camera.Status) error {
	return j.enc.Encode(st)
}

func (j *JSONWriter) WritePanel(snap panel.Snapshot) error {
	return j.enc.Encode(snap)
}
