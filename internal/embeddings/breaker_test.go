package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyProvider struct {
	err   error
	calls int
}

func (f *flakyProvider) ModelID() string { return "test:flaky" }
func (f *flakyProvider) Dim() int        { return 2 }

func (f *flakyProvider) Embed(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyProvider{err: errors.New("dial tcp: connection refused")}
	var transitions []string
	p := WithBreaker(inner, BreakerSettings{
		FailureThreshold: 2,
		OnStateChange:    func(from, to string) { transitions = append(transitions, from+"->"+to) },
	})

	for i := 0; i < 2; i++ {
		_, err := p.Embed(context.Background(), "q")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := p.Embed(context.Background(), "q")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, inner.calls, "open breaker must not reach the provider")
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	inner := &flakyProvider{err: &StatusError{StatusCode: 400, Body: "bad input"}}
	p := WithBreaker(inner, BreakerSettings{FailureThreshold: 1})

	for i := 0; i < 3; i++ {
		_, err := p.Embed(context.Background(), "q")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestBreaker_PassesThroughSuccess(t *testing.T) {
	p := WithBreaker(&flakyProvider{}, BreakerSettings{})
	v, err := p.Embed(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)
	assert.Equal(t, "test:flaky", p.ModelID())
	assert.Equal(t, 2, p.Dim())
}
