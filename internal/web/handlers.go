package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"pindrome/internal/arena"
	"pindrome/internal/catalog"
	"pindrome/internal/refdata"
	"pindrome/internal/store"
)

// parseFilters reads the filters query parameter, e.g. "EM,DMD". Absent or
// "All" means unrestricted.
func parseFilters(r *http.Request) (catalog.CategorySet, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("filters"))
	if raw == "" {
		return catalog.NewCategorySet(catalog.CategoryAll), true
	}
	var cats []catalog.FilterCategory
	for _, part := range strings.Split(raw, ",") {
		c, ok := catalog.ParseCategory(strings.TrimSpace(part))
		if !ok {
			return nil, false
		}
		cats = append(cats, c)
	}
	return catalog.NewCategorySet(cats...), true
}

func (h *Handler) handleMatchup(w http.ResponseWriter, r *http.Request) {
	cats, ok := parseFilters(r)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "unknown filter category")
		return
	}

	m, ok, err := h.arena.FetchMatchup(r.Context(), userID(r), cats)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]any{"available": false})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"available": true, "matchup": m})
}

type voteRequest struct {
	WinnerMachineID string `json:"winnerMachineId"`
	LoserMachineID  string `json:"loserMachineId"`
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.WinnerMachineID == "" || req.LoserMachineID == "" || req.WinnerMachineID == req.LoserMachineID {
		h.writeError(w, http.StatusBadRequest, "winner and loser must be two distinct machines")
		return
	}

	voteID, err := h.arena.Vote(r.Context(), userID(r), req.WinnerMachineID, req.LoserMachineID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	// fire-and-forget: completion or failure surfaces on /api/events
	h.writeJSON(w, http.StatusAccepted, map[string]string{"voteId": voteID})
}

type replaceRequest struct {
	ReplaceMachineID string `json:"replaceMachineId"`
	KeepMachineID    string `json:"keepMachineId"`
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	cats, ok := parseFilters(r)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "unknown filter category")
		return
	}
	var req replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.ReplaceMachineID == "" || req.KeepMachineID == "" {
		h.writeError(w, http.StatusBadRequest, "replace and keep machine ids required")
		return
	}

	rep, err := h.arena.ReplaceSide(r.Context(), userID(r), req.ReplaceMachineID, req.KeepMachineID, cats)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if rep.NeedsRefresh {
		h.writeJSON(w, http.StatusOK, map[string]any{"needsRefresh": true})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"machine": rep.Machine,
		"group":   rep.Group,
	})
}

func (h *Handler) handlePrefs(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.arena.Prefs(r.Context(), userID(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) handlePrefsSave(w http.ResponseWriter, r *http.Request) {
	var prefs store.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.arena.PutPrefs(r.Context(), userID(r), prefs); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) handleCacheRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.arena.Refresh(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// writeServiceError maps engine errors onto the API surface. Reference
// data being unavailable is the one retryable condition.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, refdata.ErrDataUnavailable):
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":     "reference data unavailable, try again",
			"retryable": true,
		})
	case errors.Is(err, arena.ErrUnknownMachine):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
