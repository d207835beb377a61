package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrConflict reports that a conditional rating write kept colliding with
// concurrent writers until the retry budget ran out.
var ErrConflict = errors.New("rating write conflict")

// rmwMaxAttempts bounds the transparent retries of a conditional write.
const rmwMaxAttempts = 5

// RatingDoc returns the user's raw rating document. Users with no record
// yet read as an empty document.
func (s *Store) RatingDoc(ctx context.Context, userID string) ([]byte, error) {
	var doc string
	err := s.db.GetContext(ctx, &doc, `SELECT doc FROM user_ratings WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rating doc: %w", err)
	}
	return []byte(doc), nil
}

// ReadModifyWrite applies fn to the user's rating document under optimistic
// concurrency: the write only lands if the document version is unchanged
// since the read, and the whole read-modify-write is retried on conflict,
// bounded. Exhaustion surfaces as ErrConflict.
func (s *Store) ReadModifyWrite(ctx context.Context, userID string, fn func(doc []byte) ([]byte, error)) error {
	for attempt := 0; attempt < rmwMaxAttempts; attempt++ {
		var row struct {
			Doc     string `db:"doc"`
			Version int64  `db:"version"`
		}
		exists := true
		err := s.db.GetContext(ctx, &row, `
			SELECT doc, version
			FROM user_ratings
			WHERE user_id = ?
		`, userID)
		if errors.Is(err, sql.ErrNoRows) {
			exists = false
		} else if err != nil {
			return fmt.Errorf("read rating doc: %w", err)
		}

		newDoc, err := fn([]byte(row.Doc))
		if err != nil {
			return err
		}

		var res sql.Result
		if exists {
			res, err = s.db.ExecContext(ctx, `
				UPDATE user_ratings
				SET doc = ?, version = version + 1, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
				WHERE user_id = ? AND version = ?
			`, string(newDoc), userID, row.Version)
		} else {
			res, err = s.db.ExecContext(ctx, `
				INSERT INTO user_ratings (user_id, doc)
				VALUES (?, ?)
				ON CONFLICT(user_id) DO NOTHING
			`, userID, string(newDoc))
		}
		if err != nil {
			return fmt.Errorf("write rating doc: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("write rating doc: %w", err)
		}
		if n == 1 {
			return nil
		}
		// someone else got there first; re-read and try again
	}
	return ErrConflict
}
