package rating

import (
	"context"
	"testing"

	"pindrome/internal/catalog"
)

// memStore applies read-modify-write against an in-memory document,
// mimicking the store's transaction primitive without conflicts.
type memStore struct {
	docs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (s *memStore) ReadModifyWrite(_ context.Context, userID string, fn func([]byte) ([]byte, error)) error {
	newDoc, err := fn(s.docs[userID])
	if err != nil {
		return err
	}
	s.docs[userID] = newDoc
	return nil
}

func (s *memStore) record(t *testing.T, userID string) Record {
	t.Helper()
	r, err := DecodeRecord(s.docs[userID])
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return r
}

func TestApplyVoteFreshUser(t *testing.T) {
	st := newMemStore()
	svc := NewService(st)

	err := svc.ApplyVote(context.Background(), "u1", "G1", "G2", catalog.CategoryDMD, catalog.CategoryDMD)
	if err != nil {
		t.Fatalf("ApplyVote: %v", err)
	}

	r := st.record(t, "u1")
	if got := r.Get("G1").All; got != 1216 {
		t.Fatalf("winner all = %d, want 1216", got)
	}
	if got := r.Get("G2").All; got != 1184 {
		t.Fatalf("loser all = %d, want 1184", got)
	}
	if got := r.Get("G1").Categories["DMD"]; got != 1216 {
		t.Fatalf("winner DMD = %d, want 1216", got)
	}
	if got := r.Get("G2").Categories["DMD"]; got != 1184 {
		t.Fatalf("loser DMD = %d, want 1184", got)
	}
}

func TestApplyVoteCategoryRules(t *testing.T) {
	tests := []struct {
		name       string
		winnerCat  catalog.FilterCategory
		loserCat   catalog.FilterCategory
		wantSubbed bool
	}{
		{"same category", catalog.CategoryEM, catalog.CategoryEM, true},
		{"different categories", catalog.CategoryEM, catalog.CategoryDMD, false},
		{"winner category missing", "", catalog.CategoryDMD, false},
		{"loser category missing", catalog.CategoryEM, "", false},
		{"all is not a segment", catalog.CategoryAll, catalog.CategoryAll, false},
	}
	for _, tt := range tests {
		st := newMemStore()
		svc := NewService(st)
		if err := svc.ApplyVote(context.Background(), "u1", "G1", "G2", tt.winnerCat, tt.loserCat); err != nil {
			t.Fatalf("%s: ApplyVote: %v", tt.name, err)
		}

		r := st.record(t, "u1")
		if got := r.Get("G1").All; got != 1216 {
			t.Fatalf("%s: overall score must always move, got %d", tt.name, got)
		}
		subbed := len(r.Get("G1").Categories) > 0
		if subbed != tt.wantSubbed {
			t.Fatalf("%s: category sub-score written = %v, want %v", tt.name, subbed, tt.wantSubbed)
		}
	}
}

func TestApplyVoteSequence(t *testing.T) {
	st := newMemStore()
	svc := NewService(st)
	ctx := context.Background()

	// G1 beats G2 twice; the second win is worth less
	if err := svc.ApplyVote(ctx, "u1", "G1", "G2", "", ""); err != nil {
		t.Fatalf("vote 1: %v", err)
	}
	if err := svc.ApplyVote(ctx, "u1", "G1", "G2", "", ""); err != nil {
		t.Fatalf("vote 2: %v", err)
	}

	r := st.record(t, "u1")
	first, _ := Compute(BaseScore, BaseScore, DefaultK)
	second, _ := Compute(1216, 1184, DefaultK)
	if got := r.Get("G1").All; got != second {
		t.Fatalf("G1 after two wins = %d, want %d", got, second)
	}
	if second-first >= first-BaseScore {
		t.Fatalf("second win should gain less than the first (%d vs %d)", second-first, first-BaseScore)
	}
}
