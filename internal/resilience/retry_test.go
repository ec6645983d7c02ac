package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SuccessAfterRetry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("temporary"), 503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(context.Context) error {
		calls++
		return NewTransientError(errors.New("always fails"), 500)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStops(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(context.Context) error {
		calls++
		return errors.New("bad request")
	})
	require.EqualError(t, err, "bad request")
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCanceledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := fastConfig(5)
	cfg.InitialBackoff = 20 * time.Millisecond

	err := Do(ctx, cfg, func(context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return NewTransientError(errors.New("fail"), 500)
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_ShouldRetryOverride(t *testing.T) {
	calls := 0
	cfg := fastConfig(3)
	cfg.ShouldRetry = func(error) bool { return true }

	_ = Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return errors.New("anything")
	})
	assert.Equal(t, 3, calls)
}

func TestDo_OnRetry(t *testing.T) {
	var attempts []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, _ error) { attempts = append(attempts, attempt) }

	_ = Do(context.Background(), cfg, func(context.Context) error {
		return NewTransientError(errors.New("x"), 503)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoVal(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastConfig(3), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewTransientError(errors.New("x"), 429)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	got, err = DoVal(context.Background(), fastConfig(2), func(context.Context) (string, error) {
		return "partial", errors.New("permanent")
	})
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestFromAttempts(t *testing.T) {
	cfg := FromAttempts(5, 100)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialBackoff)

	def := FromAttempts(0, 0)
	assert.Equal(t, DefaultRetryConfig().MaxAttempts, def.MaxAttempts)
	assert.Equal(t, DefaultRetryConfig().InitialBackoff, def.InitialBackoff)
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, backoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 400*time.Millisecond, backoff(2, cfg))
	assert.Equal(t, time.Second, backoff(10, cfg))

	cfg.JitterFraction = 0.5
	for range 50 {
		d := backoff(1, cfg)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 300*time.Millisecond)
	}
}

func TestRetryLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		RetryLogger("enrich")(1, errors.New("boom"))
	})
}
