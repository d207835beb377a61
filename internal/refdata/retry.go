package refdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Policy is a reusable retry policy for outbound fetches: a bounded number
// of attempts with multiplicative backoff between them.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy matches the budget applied to all reference fetches.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, Multiplier: 2}

// Do runs fn up to MaxAttempts times, sleeping between attempts. The last
// error is returned once the budget is exhausted. Context cancellation cuts
// the wait short.
func (p Policy) Do(ctx context.Context, log zerolog.Logger, op string, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("fetch failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return err
}
