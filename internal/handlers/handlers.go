package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cleartag/cleartag/internal/station"
)

// Handler serves the kiosk surface of a station
type Handler struct {
	station *station.Station
	logger  *slog.Logger
	quality int
}

// New returns a handler for st. quality is the JPEG quality of preview
// frames.
func New(st *station.Station, quality int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if quality <= 0 {
		quality = 80
	}
	return &Handler{
		station: st,
		logger:  logger.With("component", "kiosk"),
		quality: quality,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.logger.Error(message, "status", code)
	h.writeJSON(w, code, errorResponse{Error: message})
}

// wantsRedirect reports whether the request came from one of the page's
// forms rather than from a script.
func wantsRedirect(r *http.Request) bool {
	return r.FormValue("redirect") != ""
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
