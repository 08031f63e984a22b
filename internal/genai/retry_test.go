package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/logger"
)

type scriptedClient struct {
	results []error
	calls   int
}

func (s *scriptedClient) Generate(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.results) && s.results[i] != nil {
		return "", s.results[i]
	}
	return "done", nil
}

func newTestRetrying(next Client, maxRetries int) (*RetryingClient, *[]time.Duration) {
	var delays []time.Duration
	r := NewRetryingClient(next, Config{
		Provider:       ProviderGemini,
		MaxRetries:     maxRetries,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
	}, logger.NewNoOpLogger())
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return r, &delays
}

func transient() error {
	return apperrors.NewModelInvocationError(ProviderGemini, errors.New("503"), true)
}

func TestRetryingClient_RecoversFromTransientFailures(t *testing.T) {
	next := &scriptedClient{results: []error{transient(), transient()}}
	r, delays := newTestRetrying(next, 3)

	text, err := r.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, 3, next.calls)
	assert.Len(t, *delays, 2)
}

func TestRetryingClient_RespectsMaxRetries(t *testing.T) {
	next := &scriptedClient{results: []error{transient(), transient(), transient(), transient()}}
	r, _ := newTestRetrying(next, 2)

	_, err := r.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 3, next.calls)
	assert.True(t, errors.Is(err, apperrors.ErrModelInvocation))
}

func TestRetryingClient_StopsOnNonRetryable(t *testing.T) {
	auth := apperrors.NewModelInvocationError(ProviderGemini, errors.New("401 unauthorized"), false)
	next := &scriptedClient{results: []error{auth}}
	r, delays := newTestRetrying(next, 5)

	_, err := r.Generate(context.Background(), "p")
	assert.Equal(t, auth, err)
	assert.Equal(t, 1, next.calls)
	assert.Empty(t, *delays)
}

func TestRetryingClient_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	next := &scriptedClient{results: []error{transient(), transient()}}
	r, _ := newTestRetrying(next, 5)
	r.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	_, err := r.Generate(ctx, "p")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestRetryingClient_BackoffBounds(t *testing.T) {
	r, _ := newTestRetrying(&scriptedClient{}, 10)

	for attempt := 0; attempt < 10; attempt++ {
		step := 100 * time.Millisecond << attempt
		if step > time.Second {
			step = time.Second
		}
		for i := 0; i < 20; i++ {
			d := r.backoff(attempt)
			assert.GreaterOrEqual(t, d, step/2)
			assert.LessOrEqual(t, d, step)
		}
	}
}
