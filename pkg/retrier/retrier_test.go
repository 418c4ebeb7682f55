package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		r := New()
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		r := New(WithMaxRetries(3), WithInitialInterval(time.Millisecond))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))
		attempts := 0
		lastErr := errors.New("still broken")
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return lastErr
		})
		assert.ErrorIs(t, err, lastErr)
		assert.Equal(t, 3, attempts) // 1 initial + 2 retries
	})

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		r := New(WithMaxRetries(5), WithInitialInterval(time.Minute))
		ctx, cancel := context.WithCancel(context.Background())

		err := r.Do(ctx, func(ctx context.Context) error {
			cancel()
			return errors.New("fail")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero jitter keeps pauses deterministic", func(t *testing.T) {
		r := New(WithMaxRetries(1), WithInitialInterval(5*time.Millisecond), WithJitter(0))
		start := time.Now()
		_ = r.Do(context.Background(), func(ctx context.Context) error {
			return errors.New("fail")
		})
		assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	})
}

func TestDoWithData(t *testing.T) {
	t.Run("propagates the value", func(t *testing.T) {
		r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))
		attempts := 0
		got, err := DoWithData(r, context.Background(), func(ctx context.Context) (string, error) {
			attempts++
			if attempts < 2 {
				return "", errors.New("transient")
			}
			return "payload", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "payload", got)
	})

	t.Run("propagates the error", func(t *testing.T) {
		r := New(WithMaxRetries(1), WithInitialInterval(time.Millisecond))
		_, err := DoWithData(r, context.Background(), func(ctx context.Context) (int, error) {
			return 0, errors.New("fail")
		})
		assert.Error(t, err)
	})
}
