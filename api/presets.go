package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"splotty-labels/monitor"
	"splotty-labels/preset"
	"splotty-labels/tree"
)

func (h *handler) listPresets(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListPresets()
	if err != nil {
		h.log.WithError(err).Error("list presets")
		http.Error(w, "failed to list presets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// load reports errors to w and returns nil when the preset cannot be loaded.
func (h *handler) load(w http.ResponseWriter, name string) *preset.Preset {
	p, err := h.store.Load(name)
	if err != nil {
		if errors.Is(err, preset.ErrInvalidName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}
		if errors.Is(err, preset.ErrMalformedDocument) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return nil
		}
		h.log.WithError(err).WithField("preset", name).Error("load preset")
		http.Error(w, "failed to load preset", http.StatusInternalServerError)
		return nil
	}
	return p
}

func (h *handler) save(w http.ResponseWriter, p *preset.Preset) bool {
	if err := h.store.Save(p); err != nil {
		if errors.Is(err, preset.ErrInvalidName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return false
		}
		h.log.WithError(err).WithField("preset", p.Name).Error("save preset")
		http.Error(w, "failed to save preset", http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *handler) getPreset(w http.ResponseWriter, r *http.Request) {
	p := h.load(w, chi.URLParam(r, "name"))
	if p == nil {
		return
	}
	writeJSON(w, http.StatusOK, preset.ToDocument(p))
}

func (h *handler) putPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	p, err := preset.Unmarshal(name, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// The URL is the storage key.
	p.Name = name

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.save(w, p) {
		return
	}
	writeJSON(w, http.StatusOK, preset.ToDocument(p))
}

func (h *handler) presetIssues(w http.ResponseWriter, r *http.Request) {
	p := h.load(w, chi.URLParam(r, "name"))
	if p == nil {
		return
	}
	issues := tree.Validate(p)
	if issues == nil {
		issues = []tree.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

func (h *handler) previewPreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Line string `json:"line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.load(w, chi.URLParam(r, "name"))
	if p == nil {
		return
	}
	pv := monitor.Render(p, req.Line)
	p.LastPreview = &pv
	if !h.save(w, p) {
		return
	}
	writeJSON(w, http.StatusOK, pv)
}
