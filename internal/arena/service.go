// Package arena is the engine facade consumed by the UI shell: it wires
// reference data, selection, preferences, the vote queue and the rating
// service behind the three caller-facing operations.
package arena

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pindrome/internal/catalog"
	"pindrome/internal/matchup"
	"pindrome/internal/rating"
	"pindrome/internal/refdata"
	"pindrome/internal/store"
	"pindrome/internal/votequeue"
)

// ErrUnknownMachine reports a vote or replacement referencing a machine id
// absent from the reference pool.
var ErrUnknownMachine = errors.New("unknown machine id")

type Service struct {
	data      *refdata.Client
	store     *store.Store
	ratings   *rating.Service
	queue     *votequeue.Queue
	status    *Broadcaster
	overrides catalog.Overrides
	log       zerolog.Logger
}

func New(data *refdata.Client, st *store.Store, ratings *rating.Service, queue *votequeue.Queue, status *Broadcaster, overrides catalog.Overrides, log zerolog.Logger) *Service {
	return &Service{
		data:      data,
		store:     st,
		ratings:   ratings,
		queue:     queue,
		status:    status,
		overrides: overrides,
		log:       log.With().Str("component", "arena").Logger(),
	}
}

// FetchMatchup assembles a fresh matchup under the user's exclusions and
// the requested category filters. ok is false when the eligible pool holds
// fewer than two groups; that is "nothing to show", not an error.
func (s *Service) FetchMatchup(ctx context.Context, userID string, cats catalog.CategorySet) (matchup.Matchup, bool, error) {
	pool, groups, excluded, err := s.selectionInputs(ctx, userID)
	if err != nil {
		return matchup.Matchup{}, false, err
	}
	m, ok := matchup.Select(newRand(), pool, groups, cats, excluded, s.overrides)
	return m, ok, nil
}

// Vote records the outcome winner-over-loser and hands the rating mutation
// to the per-user queue. It returns as soon as the vote is queued; the
// caller is expected to show the next matchup optimistically while
// completion or failure surfaces on the status broadcaster.
func (s *Service) Vote(ctx context.Context, userID, winnerMachineID, loserMachineID string) (string, error) {
	pool, err := s.data.Machines(ctx)
	if err != nil {
		return "", err
	}
	winner, ok := machineByID(pool, winnerMachineID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMachine, winnerMachineID)
	}
	loser, ok := machineByID(pool, loserMachineID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMachine, loserMachineID)
	}

	winnerCat, _ := catalog.EffectiveCategory(winner, pool, s.overrides)
	loserCat, _ := catalog.EffectiveCategory(loser, pool, s.overrides)
	winnerGroup, loserGroup := winner.GroupID(), loser.GroupID()

	voteID := uuid.NewString()
	s.publish(voteID, userID, VoteQueued, nil)

	done := s.queue.Enqueue(userID, func(ctx context.Context) error {
		s.publish(voteID, userID, VoteRunning, nil)
		// the vote event is durable before the rating moves; a rating
		// failure past this point is an accepted partial success
		if _, err := s.store.InsertVote(ctx, userID, winnerGroup, loserGroup); err != nil {
			return fmt.Errorf("record vote: %w", err)
		}
		if err := s.ratings.ApplyVote(ctx, userID, winnerGroup, loserGroup, winnerCat, loserCat); err != nil {
			return fmt.Errorf("apply rating: %w", err)
		}
		return nil
	})

	go func() {
		if err := <-done; err != nil {
			s.publish(voteID, userID, VoteFailed, err)
			return
		}
		s.publish(voteID, userID, VoteCompleted, nil)
	}()

	return voteID, nil
}

// ReplaceSide swaps out one side of the current matchup, keeping the other
// side in place. The replaced group is recorded in the user's exclusions
// first, so it cannot come straight back. A NeedsRefresh result tells the
// caller to rebuild the whole matchup.
func (s *Service) ReplaceSide(ctx context.Context, userID, replaceMachineID, keepMachineID string, cats catalog.CategorySet) (matchup.Replacement, error) {
	pool, err := s.data.Machines(ctx)
	if err != nil {
		return matchup.Replacement{}, err
	}
	replaced, ok := machineByID(pool, replaceMachineID)
	if !ok {
		return matchup.Replacement{}, fmt.Errorf("%w: %s", ErrUnknownMachine, replaceMachineID)
	}
	kept, ok := machineByID(pool, keepMachineID)
	if !ok {
		return matchup.Replacement{}, fmt.Errorf("%w: %s", ErrUnknownMachine, keepMachineID)
	}

	if err := s.store.ExcludeGroup(ctx, userID, replaced.GroupID()); err != nil {
		return matchup.Replacement{}, err
	}

	groups, err := s.data.Groups(ctx)
	if err != nil {
		return matchup.Replacement{}, err
	}
	prefs, err := s.store.Prefs(ctx, userID)
	if err != nil {
		return matchup.Replacement{}, err
	}

	rep := matchup.Replace(newRand(), kept.GroupID(), pool, groups, cats, prefs.ExcludedSet(), s.overrides)
	return rep, nil
}

// Refresh drops and re-fetches the cached reference documents.
func (s *Service) Refresh(ctx context.Context) error {
	return s.data.Refresh(ctx)
}

// Groups exposes the cached group list for display lookups.
func (s *Service) Groups(ctx context.Context) ([]catalog.MachineGroup, error) {
	return s.data.Groups(ctx)
}

// RatingDoc exposes the user's raw rating document.
func (s *Service) RatingDoc(ctx context.Context, userID string) ([]byte, error) {
	return s.store.RatingDoc(ctx, userID)
}

// Prefs exposes the user's stored preferences.
func (s *Service) Prefs(ctx context.Context, userID string) (store.Preferences, error) {
	return s.store.Prefs(ctx, userID)
}

// PutPrefs replaces the user's stored preferences.
func (s *Service) PutPrefs(ctx context.Context, userID string, prefs store.Preferences) error {
	return s.store.PutPrefs(ctx, userID, prefs)
}

// CountVotes exposes the user's recorded outcome count.
func (s *Service) CountVotes(ctx context.Context, userID string) (int, error) {
	return s.store.CountVotes(ctx, userID)
}

func (s *Service) selectionInputs(ctx context.Context, userID string) ([]catalog.Machine, []catalog.MachineGroup, map[string]bool, error) {
	pool, err := s.data.Machines(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	groups, err := s.data.Groups(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	prefs, err := s.store.Prefs(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	return pool, groups, prefs.ExcludedSet(), nil
}

func (s *Service) publish(voteID, userID string, state VoteState, err error) {
	status := VoteStatus{VoteID: voteID, UserID: userID, State: state, At: time.Now().UTC()}
	if err != nil {
		status.Error = err.Error()
	}
	s.status.Publish(status)
}

func machineByID(pool []catalog.Machine, id string) (catalog.Machine, bool) {
	for _, m := range pool {
		if m.ID == id {
			return m, true
		}
	}
	return catalog.Machine{}, false
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
