package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoImmediateSuccess(t *testing.T) {
	p := Policy{Interval: time.Hour, Timeout: time.Hour}

	calls := 0
	start := time.Now()
	done, err := p.Do(context.Background(), func() (bool, error) {
		calls++
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, calls)
	// 第一次检查不等待Interval
	assert.Less(t, time.Since(start), time.Second)
}

func TestDoEventualSuccess(t *testing.T) {
	p := Policy{Interval: 10 * time.Millisecond, Timeout: 2 * time.Second}

	calls := 0
	done, err := p.Do(context.Background(), func() (bool, error) {
		calls++
		return calls >= 5, nil
	})

	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 5, calls)
}

func TestDoTimeout(t *testing.T) {
	p := Policy{Interval: 10 * time.Millisecond, Timeout: 100 * time.Millisecond}

	start := time.Now()
	done, err := p.Do(context.Background(), func() (bool, error) {
		return false, nil
	})

	require.NoError(t, err)
	assert.False(t, done)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDoCancel(t *testing.T) {
	p := Policy{Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done, err := p.Do(ctx, func() (bool, error) {
		return false, nil
	})

	assert.False(t, done)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoConditionError(t *testing.T) {
	p := Policy{Interval: 10 * time.Millisecond, Timeout: time.Second}

	boom := errors.New("boom")
	calls := 0
	done, err := p.Do(context.Background(), func() (bool, error) {
		calls++
		return false, boom
	})

	assert.False(t, done)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
