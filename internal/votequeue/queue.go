// Package votequeue serializes rating mutations per user. Tasks enqueued
// for the same user run strictly one at a time in submission order; tasks
// for different users run independently with no shared lock. One worker
// goroutine exists per user with a non-empty backlog and tears itself down
// when the backlog empties.
//
// Queued tasks are held in memory only: a crash drops not-yet-started
// tasks even though their vote events may already be durable. Delivery of
// the rating mutation is therefore at-most-once.
package votequeue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Task is one unit of serialized work. It runs to completion or failure;
// there is no mid-flight cancellation.
type Task func(ctx context.Context) error

type pending struct {
	task Task
	done chan error
}

type Queue struct {
	log zerolog.Logger

	mu    sync.Mutex
	users map[string][]pending
	wg    sync.WaitGroup
}

func New(log zerolog.Logger) *Queue {
	return &Queue{
		log:   log.With().Str("component", "votequeue").Logger(),
		users: make(map[string][]pending),
	}
}

// Enqueue appends a task to the user's queue and returns a channel that
// receives the task's result exactly once. A failing task resolves its own
// channel with the error and does not block later tasks in the same queue.
func (q *Queue) Enqueue(userID string, task Task) <-chan error {
	done := make(chan error, 1)

	q.mu.Lock()
	backlog, active := q.users[userID]
	q.users[userID] = append(backlog, pending{task: task, done: done})
	if !active {
		q.wg.Add(1)
		go q.drain(userID)
	}
	q.mu.Unlock()

	return done
}

// Depth reports the user's current backlog size.
func (q *Queue) Depth(userID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.users[userID])
}

// Wait blocks until every queue is drained. Enqueue during Wait is the
// caller's race to lose; intended for shutdown after intake has stopped.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) drain(userID string) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		backlog := q.users[userID]
		if len(backlog) == 0 {
			delete(q.users, userID)
			q.mu.Unlock()
			return
		}
		next := backlog[0]
		q.users[userID] = backlog[1:]
		q.mu.Unlock()

		err := next.task(context.Background())
		if err != nil {
			q.log.Error().Err(err).Str("user", userID).Msg("queued task failed")
		}
		next.done <- err
	}
}
