package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Preferences is the per-user mutable selection state.
type Preferences struct {
	ExcludedGroupIDs []string `json:"excludedGroupIds"`
}

// ExcludedSet returns the exclusions as a lookup set.
func (p Preferences) ExcludedSet() map[string]bool {
	set := make(map[string]bool, len(p.ExcludedGroupIDs))
	for _, id := range p.ExcludedGroupIDs {
		set[id] = true
	}
	return set
}

// Prefs returns the user's preferences, empty when none are stored.
func (s *Store) Prefs(ctx context.Context, userID string) (Preferences, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, `
		SELECT excluded_groups FROM user_prefs WHERE user_id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("read prefs: %w", err)
	}

	var excluded []string
	if err := json.Unmarshal([]byte(raw), &excluded); err != nil {
		return Preferences{}, fmt.Errorf("decode prefs: %w", err)
	}
	return Preferences{ExcludedGroupIDs: excluded}, nil
}

// PutPrefs replaces the user's preferences.
func (s *Store) PutPrefs(ctx context.Context, userID string, prefs Preferences) error {
	excluded := prefs.ExcludedGroupIDs
	if excluded == nil {
		excluded = []string{}
	}
	raw, err := json.Marshal(excluded)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_prefs (user_id, excluded_groups)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			excluded_groups = excluded.excluded_groups,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, userID, string(raw))
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// ExcludeGroup adds one group to the user's exclusions if not already
// present.
func (s *Store) ExcludeGroup(ctx context.Context, userID, groupID string) error {
	prefs, err := s.Prefs(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range prefs.ExcludedGroupIDs {
		if id == groupID {
			return nil
		}
	}
	prefs.ExcludedGroupIDs = append(prefs.ExcludedGroupIDs, groupID)
	return s.PutPrefs(ctx, userID, prefs)
}
