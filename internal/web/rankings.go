package web

import (
	"net/http"
	"sort"

	"pindrome/internal/rating"
)

type RankingRow struct {
	Rank       int            `json:"rank"`
	GroupID    string         `json:"groupId"`
	Name       string         `json:"name"`
	Score      int            `json:"score"`
	Categories map[string]int `json:"categories,omitempty"`
}

// handleRankings renders the user's rating table, highest score first,
// group names resolved from the reference data.
func (h *Handler) handleRankings(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	doc, err := h.arena.RatingDoc(r.Context(), uid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	record, err := rating.DecodeRecord(doc)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	groups, err := h.arena.Groups(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}

	rows := make([]RankingRow, 0, len(record))
	for groupID, entry := range record {
		name := names[groupID]
		if name == "" {
			name = groupID
		}
		rows = append(rows, RankingRow{
			GroupID:    groupID,
			Name:       name,
			Score:      entry.All,
			Categories: entry.Categories,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score == rows[j].Score {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Score > rows[j].Score
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	votes, err := h.arena.CountVotes(r.Context(), uid)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"rankings": rows,
		"votes":    votes,
	})
}
