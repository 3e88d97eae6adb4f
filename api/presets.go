package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chunkloader/preset"
)

type presetView struct {
	preset.Record
	Command string `json:"command"`
}

type presetsResponse struct {
	Presets []presetView `json:"presets"`
	Error   string       `json:"error,omitempty"`
}

func newPresetView(p preset.Preset) presetView {
	return presetView{Record: preset.ToRecord(p), Command: p.Command()}
}

func newPresetsResponse(c preset.Collection) presetsResponse {
	views := make([]presetView, len(c))
	for i, p := range c {
		views[i] = newPresetView(p)
	}
	return presetsResponse{Presets: views}
}

// writeCollection answers a mutation. A failed backend write still returns
// the in-memory list, with 507 so the client can tell the user.
func writeCollection(w http.ResponseWriter, okStatus int, c preset.Collection, err error) {
	resp := newPresetsResponse(c)
	if err != nil {
		resp.Error = "presets were not durably saved"
		writeJSON(w, http.StatusInsufficientStorage, resp)
		return
	}
	writeJSON(w, okStatus, resp)
}

func (h *handler) getPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newPresetsResponse(h.presets.List()))
}

func (h *handler) getPreset(w http.ResponseWriter, r *http.Request) {
	p, ok := h.presets.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newPresetView(p))
}

func (h *handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	// Delete silently ignores unknown IDs.
	c, err := h.presets.Delete(r.Context(), chi.URLParam(r, "id"))
	writeCollection(w, http.StatusOK, c, err)
}
