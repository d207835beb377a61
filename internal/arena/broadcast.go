package arena

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// VoteState is one step of a vote's background lifecycle.
type VoteState string

const (
	VoteQueued    VoteState = "queued"
	VoteRunning   VoteState = "running"
	VoteCompleted VoteState = "completed"
	VoteFailed    VoteState = "failed"
)

// VoteStatus is published on every state transition of a background vote.
// Failures are silent to the voting UI but observable here.
type VoteStatus struct {
	VoteID string    `json:"voteId"`
	UserID string    `json:"userId"`
	State  VoteState `json:"state"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan VoteStatus
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan VoteStatus)}
}

func (b *Broadcaster) Subscribe() (id int, ch <-chan VoteStatus, unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.next
	b.next++

	c := make(chan VoteStatus, 8)
	b.subs[id] = c

	return id, c, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c2, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c2)
		}
	}
}

func (b *Broadcaster) Publish(status VoteStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- status:
		default:
		}
	}
}

// SSEHandler streams vote status transitions for the requesting user.
func SSEHandler(b *Broadcaster, userFrom func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		userID := userFrom(r)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		_, ch, unsubscribe := b.Subscribe()
		defer unsubscribe()

		// initial ping
		_, _ = w.Write([]byte("event: ping\ndata: 1\n\n"))
		flusher.Flush()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case status := <-ch:
				if userID != "" && status.UserID != userID {
					continue
				}
				data, err := json.Marshal(status)
				if err != nil {
					continue
				}
				_, _ = w.Write([]byte("event: vote\ndata: "))
				_, _ = w.Write(data)
				_, _ = w.Write([]byte("\n\n"))
				flusher.Flush()
			}
		}
	}
}
