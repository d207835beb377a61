package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VoteEvent is one recorded outcome. Write-once.
type VoteEvent struct {
	ID            string `db:"id"`
	UserID        string `db:"user_id"`
	WinnerGroupID string `db:"winner_group_id"`
	LoserGroupID  string `db:"loser_group_id"`
	VotedAt       string `db:"voted_at"`
}

// InsertVote appends a vote event, returning its assigned id.
func (s *Store) InsertVote(ctx context.Context, userID, winnerGroupID, loserGroupID string) (string, error) {
	event := VoteEvent{
		ID:            uuid.NewString(),
		UserID:        userID,
		WinnerGroupID: winnerGroupID,
		LoserGroupID:  loserGroupID,
		VotedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO votes (id, user_id, winner_group_id, loser_group_id, voted_at)
		VALUES (:id, :user_id, :winner_group_id, :loser_group_id, :voted_at)
	`, event)
	if err != nil {
		return "", err
	}
	return event.ID, nil
}

// ListVotes returns the user's most recent vote events, newest first.
func (s *Store) ListVotes(ctx context.Context, userID string, limit int) ([]VoteEvent, error) {
	var out []VoteEvent
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, user_id, winner_group_id, loser_group_id, voted_at
		FROM votes
		WHERE user_id = ?
		ORDER BY voted_at DESC
		LIMIT ?
	`, userID, limit)
	return out, err
}

// CountVotes returns the user's total recorded outcomes.
func (s *Store) CountVotes(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM votes
		WHERE user_id = ?
	`, userID)
	return count, err
}
