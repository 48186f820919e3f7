package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"splotty-labels/monitor"
)

func (h *handler) listMonitors(w http.ResponseWriter, r *http.Request) {
	list := h.monitors.List()
	statuses := make([]monitor.Status, 0, len(list))
	for _, mon := range list {
		statuses = append(statuses, mon.Status())
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *handler) createMonitor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset string `json:"preset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Preset == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p := h.load(w, req.Preset)
	if p == nil {
		return
	}
	if p.Device == "" {
		http.Error(w, "preset has no device", http.StatusBadRequest)
		return
	}

	mon, err := h.monitors.Create(p.Name, p.Device)
	if err != nil {
		if errors.Is(err, monitor.ErrAlreadyMonitored) {
			http.Error(w, "preset is already being monitored", http.StatusConflict)
			return
		}
		h.log.WithError(err).WithField("device", p.Device).Error("open device")
		http.Error(w, "failed to open device", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, mon.Status())
}

func (h *handler) killMonitor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.monitors.Kill(id); err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			http.Error(w, "monitor not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to stop monitor", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
