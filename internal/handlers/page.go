package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/panel"
	"github.com/cleartag/cleartag/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var titleCaser = cases.Title(language.Und, cases.NoLower)

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"capitalize": func(s string) string { return titleCaser.String(s) },
	"iconGlyph":  iconGlyph,
}).ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Camera     camera.Status
	Panel      panel.Snapshot
	PreviewURL string
}

// HandleIndex renders the station page from the current camera and panel
// state.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Camera: h.station.CameraStatus(),
		Panel:  h.station.Panel(),
	}
	if data.Camera.Live {
		data.PreviewURL = render.CacheBust("/api/camera/preview", time.Now())
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.writeError(w, "Failed to render page: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("Unable to write page", "err", err)
	}
}

// HandleStatic serves the embedded stylesheet and scripts
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	if file == "" || strings.Contains(file, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	data, err := staticFS.ReadFile(path.Join("static", file))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case strings.HasSuffix(file, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(file, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	}
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Unable to write static file", "file", file, "err", err)
	}
}

func iconGlyph(icon render.Icon) string {
	switch icon {
	case render.IconCheck:
		return "✔"
	case render.IconCross:
		return "✘"
	default:
		return ""
	}
}
