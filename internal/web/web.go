// Package web is the thin JSON shell over the arena engine. Page
// rendering, auth flows and image hosting live elsewhere; this surface
// only exposes the engine operations plus a token-gated admin refresh.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"pindrome/internal/arena"
)

type Handler struct {
	arena  *arena.Service
	status *arena.Broadcaster

	adminToken string
	log        zerolog.Logger
}

func NewHandler(service *arena.Service, status *arena.Broadcaster, adminToken string, log zerolog.Logger) *Handler {
	return &Handler{
		arena:      service,
		status:     status,
		adminToken: adminToken,
		log:        log.With().Str("component", "web").Logger(),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/matchup", h.requireUser(h.handleMatchup))
	r.Post("/api/vote", h.requireUser(h.handleVote))
	r.Post("/api/replace", h.requireUser(h.handleReplace))
	r.Get("/api/prefs", h.requireUser(h.handlePrefs))
	r.Put("/api/prefs", h.requireUser(h.handlePrefsSave))
	r.Get("/api/rankings", h.requireUser(h.handleRankings))
	r.Get("/api/events", arena.SSEHandler(h.status, userID))

	r.Post("/admin/cache/refresh", h.requireAdmin(h.handleCacheRefresh))

	return r
}

// userID reads the caller identity the external auth layer injects.
// Empty means unauthenticated.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (h *Handler) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			h.writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		next(w, r)
	}
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+h.adminToken {
			h.writeError(w, http.StatusForbidden, "invalid admin token")
			return
		}
		next(w, r)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn().Err(err).Msg("encode response failed")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, map[string]string{"error": msg})
}
