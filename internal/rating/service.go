package rating

import (
	"context"

	"pindrome/internal/catalog"
)

// Store is the per-user rating document store. ReadModifyWrite applies fn
// atomically: the store retries transparently on a conflicting concurrent
// write, bounded, and surfaces exhaustion as an error.
type Store interface {
	ReadModifyWrite(ctx context.Context, userID string, fn func(doc []byte) ([]byte, error)) error
}

type Service struct {
	store Store
	k     float64
}

func NewService(store Store) *Service {
	return &Service{store: store, k: DefaultK}
}

// ApplyVote updates the user's rating record for one outcome as a single
// read-modify-write: the overall scores always move, and the per-category
// scores move only when winner and loser share a known category. If the
// conditional write ultimately fails, the vote event has already been
// recorded; the rating mutation is lost, which is an accepted
// partial-success outcome.
func (s *Service) ApplyVote(ctx context.Context, userID, winnerGroupID, loserGroupID string, winnerCat, loserCat catalog.FilterCategory) error {
	return s.store.ReadModifyWrite(ctx, userID, func(doc []byte) ([]byte, error) {
		record, err := DecodeRecord(doc)
		if err != nil {
			return nil, err
		}

		winner := record.Get(winnerGroupID)
		loser := record.Get(loserGroupID)

		winner.All, loser.All = Compute(winner.All, loser.All, s.k)

		if sameCategory(winnerCat, loserCat) {
			cat := string(winnerCat)
			newW, newL := Compute(categoryScore(winner, cat), categoryScore(loser, cat), s.k)
			winner = withCategoryScore(winner, cat, newW)
			loser = withCategoryScore(loser, cat, newL)
		}

		record[winnerGroupID] = winner
		record[loserGroupID] = loser
		return EncodeRecord(record)
	})
}

func sameCategory(a, b catalog.FilterCategory) bool {
	return a != "" && b != "" && a != catalog.CategoryAll && a == b
}

func categoryScore(e Entry, cat string) int {
	if score, ok := e.Categories[cat]; ok {
		return score
	}
	return BaseScore
}

func withCategoryScore(e Entry, cat string, score int) Entry {
	if e.Categories == nil {
		e.Categories = make(map[string]int)
	}
	e.Categories[cat] = score
	return e
}
