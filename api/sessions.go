package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"chunkloader/session"
)

func (h *handler) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return s, ok
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.manager.List()
	infos := make([]session.Info, len(sessions))
	for i, s := range sessions {
		infos[i] = s.Info()
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.manager.Create(req.Name)
	if err != nil {
		if errors.Is(err, session.ErrNameTaken) {
			http.Error(w, "session name already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, s.Info())
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Info())
}

// patchSession applies a set of field changes as one update: either all of
// them are valid and land together, or none does.
func (h *handler) patchSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	changes := make(map[string]string, len(req))
	for field, raw := range req {
		changes[field] = rawValue(raw)
	}
	if err := s.Builder().ApplyAll(changes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.Info())
}

// rawValue turns a JSON string into its contents and leaves numbers and
// booleans as their literal text.
func rawValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func (h *handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Close(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to close session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// savePreset snapshots the session's configuration. Name and notes default
// to the ones being edited.
func (h *handler) savePreset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Notes *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := s.Builder().Configuration()
	name, notes := cfg.Name, cfg.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Notes != nil {
		notes = *req.Notes
	}

	c, err := h.presets.Save(r.Context(), cfg, name, notes)
	writeCollection(w, http.StatusCreated, c, err)
}

func (h *handler) loadPreset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	p, ok := h.presets.Get(chi.URLParam(r, "presetID"))
	if !ok {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	if err := s.Builder().Load(p.Config); err != nil {
		http.Error(w, "failed to load preset", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.Info())
}
