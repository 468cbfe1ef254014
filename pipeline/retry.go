package pipeline

import (
	"context"
	"time"

	"github.com/theimaginaryfoundation/reverie/pipeline/provider"
)

// RetryPolicy walks an ordered list of models, retrying rate-limited calls
// with exponential backoff before falling over to the next model. Both the
// content analyzers and the prompt composer apply the same policy, just with
// different budgets.
type RetryPolicy struct {
	// Models is tried in order; the first entry is the primary model.
	Models []string
	// MaxAttempts is the per-model call budget. 1 means no retry.
	MaxAttempts int
	// BaseBackoff is doubled after each rate-limited attempt on the same
	// model: base, 2*base, 4*base, ...
	BaseBackoff time.Duration

	// Sleep is swappable so tests can observe waits without serving them.
	Sleep func(time.Duration)
}

// Do invokes call once per attempt until it succeeds, fails with a
// non-rate-limit error (propagated immediately), or every model exhausts its
// budget, in which case ErrAllProvidersRateLimited is returned.
func (p RetryPolicy) Do(ctx context.Context, call func(ctx context.Context, model string) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for _, model := range p.Models {
		for attempt := 0; attempt < attempts; attempt++ {
			err := call(ctx, model)
			if err == nil {
				return nil
			}
			if !provider.IsRateLimit(err) {
				return err
			}
			if attempt < attempts-1 {
				sleep(p.BaseBackoff << attempt)
			}
		}
	}
	return ErrAllProvidersRateLimited
}
