package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/panel"
)

// YAMLWriter writes a YAML document per call, separated by ---
type YAMLWriter struct {
	enc *yaml.Encoder
}

func NewYAMLWriter(w io.Writer) *YAMLWriter {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAMLWriter{enc: enc}
}

func (y *YAMLWriter) WriteCamera(st camera.Status) error {
	return y.enc.Encode(st)
}

func (y *YAMLWriter) WritePanel(snap panel.Snapshot) error {
	return y.enc.Encode(snap)
}

// Close flushes the encoder
func (y *YAMLWriter) Close() error {
	return y.enc.Close()
}
