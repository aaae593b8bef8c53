package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers the kiosk routes
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.HandleIndex).Methods(http.MethodGet)
	r.HandleFunc("/static/{file}", h.HandleStatic).Methods(http.MethodGet)
	r.HandleFunc("/healthcheck", h.HandleHealthcheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/capture", h.HandleCapture).Methods(http.MethodPost)
	api.HandleFunc("/panel", h.HandlePanel).Methods(http.MethodGet)
	api.HandleFunc("/panel/close", h.HandleClosePanel).Methods(http.MethodPost)
	api.HandleFunc("/camera", h.HandleCamera).Methods(http.MethodGet)
	api.HandleFunc("/camera/switch", h.HandleSwitchCamera).Methods(http.MethodPost)
	api.HandleFunc("/camera/preview", h.HandlePreview).Methods(http.MethodGet)

	return r
}
