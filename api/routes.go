package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chunkloader/preset"
	"chunkloader/session"
)

func RegisterRoutes(manager *session.Manager, store *preset.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	h := &handler{manager: manager, presets: store}

	// Editing sessions
	r.Get("/api/sessions", h.listSessions)
	r.Post("/api/sessions", h.createSession)
	r.Get("/api/sessions/{id}", h.getSession)
	r.Patch("/api/sessions/{id}", h.patchSession)
	r.Delete("/api/sessions/{id}", h.closeSession)
	r.Post("/api/sessions/{id}/presets", h.savePreset)
	r.Post("/api/sessions/{id}/load/{presetID}", h.loadPreset)

	// WebSocket
	r.Get("/api/sessions/{id}/ws", h.handleWS)

	// Presets API
	r.Get("/api/presets", h.getPresets)
	r.Get("/api/presets/{id}", h.getPreset)
	r.Delete("/api/presets/{id}", h.deletePreset)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

type handler struct {
	manager *session.Manager
	presets *preset.Store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
