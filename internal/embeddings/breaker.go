package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the breaker is open: the provider failed
// repeatedly and calls are short-circuited until the cool-down elapses.
var ErrUnavailable = errors.New("embeddings provider unavailable")

// BreakerSettings configures WithBreaker.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold uint32
	// Cooldown is the duration in open state before a trial call. Zero means 30s.
	Cooldown time.Duration
	// OnStateChange, when set, observes transitions (for logging).
	OnStateChange func(from, to string)
}

type breakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[[]float32]
}

// WithBreaker wraps p with a circuit breaker. Caller-side cancellations and
// 4xx answers do not count as provider failures.
func WithBreaker(p Provider, s BreakerSettings) Provider {
	threshold := s.FailureThreshold
	if threshold == 0 {
		threshold = 3
	}
	cooldown := s.Cooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "embeddings:" + p.ModelID(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isProviderHealthy,
	}
	if s.OnStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			s.OnStateChange(from.String(), to.String())
		}
	}
	return &breakerProvider{next: p, cb: gobreaker.NewCircuitBreaker[[]float32](settings)}
}

func (b *breakerProvider) ModelID() string { return b.next.ModelID() }
func (b *breakerProvider) Dim() int        { return b.next.Dim() }

func (b *breakerProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := b.cb.Execute(func() ([]float32, error) {
		return b.next.Embed(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, err
}

func isProviderHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != 429 {
		return true
	}
	return false
}
