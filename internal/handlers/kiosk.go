package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/panel"
	"github.com/cleartag/cleartag/internal/scan"
)

// HandleCapture runs one capture → scan → render cycle.
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	snap, err := h.station.Capture(r.Context())
	if errors.Is(err, panel.ErrBusy) {
		if wantsRedirect(r) {
			h.redirectHome(w, r)
			return
		}
		h.writeError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.writeError(w, "Capture failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if wantsRedirect(r) {
		h.redirectHome(w, r)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// HandlePanel returns the results panel
func (h *Handler) HandlePanel(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.station.Panel())
}

// HandleClosePanel hides the results panel and drops its content
func (h *Handler) HandleClosePanel(w http.ResponseWriter, r *http.Request) {
	snap := h.station.ClosePanel()
	if wantsRedirect(r) {
		h.redirectHome(w, r)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// HandleCamera returns the camera status
func (h *Handler) HandleCamera(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.station.CameraStatus())
}

// HandleSwitchCamera flips between the rear and front camera
func (h *Handler) HandleSwitchCamera(w http.ResponseWriter, r *http.Request) {
	st := h.station.SwitchCamera(r.Context())
	if wantsRedirect(r) {
		h.redirectHome(w, r)
		return
	}
	h.writeJSON(w, http.StatusOK, st)
}

// HandlePreview serves the current camera frame as a JPEG
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	img, err := h.station.Preview(r.Context())
	if errors.Is(err, camera.ErrNoStream) {
		http.Error(w, "No camera stream", http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to grab preview: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := scan.EncodeJPEG(&buf, img, h.quality); err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("Unable to write preview", "err", err)
	}
}

// HandleHealthcheck answers OK
func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("Unable to write healthcheck", "err", err)
	}
}
