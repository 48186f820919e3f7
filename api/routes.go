package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"splotty-labels/monitor"
	"splotty-labels/preset"
)

// maxBodyBytes bounds request bodies carrying preset documents.
const maxBodyBytes = 4 << 20

func RegisterRoutes(store *preset.Storage, monitors *monitor.Manager, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	h := &handler{store: store, monitors: monitors, log: log}

	// Presets API
	r.Get("/api/presets", h.listPresets)
	r.Get("/api/presets/{name}", h.getPreset)
	r.Put("/api/presets/{name}", h.putPreset)
	r.Get("/api/presets/{name}/issues", h.presetIssues)
	r.Post("/api/presets/{name}/preview", h.previewPreset)

	// Monitors API
	r.Get("/api/monitors", h.listMonitors)
	r.Post("/api/monitors", h.createMonitor)
	r.Delete("/api/monitors/{id}", h.killMonitor)

	// WebSocket
	r.Get("/api/monitors/{id}/ws", h.handleWS)

	return r
}

type handler struct {
	store    *preset.Storage
	monitors *monitor.Manager
	log      logrus.FieldLogger

	// Storage assumes a single writer; serialize load-modify-save here.
	mu sync.Mutex
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
