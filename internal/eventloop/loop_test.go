package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunUntilIdle_PrioritizedJobsFirst(t *testing.T) {
	l := New()
	var order []string
	record := func(name string) Job {
		return func(context.Context) { order = append(order, name) }
	}

	l.Post(record("work-1"))
	l.PostPrioritized(record("render-1"))
	l.Post(func(ctx context.Context) {
		order = append(order, "work-2")
		l.Post(record("work-3"))
		l.PostPrioritized(record("render-2"))
	})

	require.NoError(t, l.RunUntilIdle(context.Background()))

	want := []string{"render-1", "work-1", "work-2", "render-2", "work-3"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("job order mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, l.Pending())
}

func TestRunUntilIdle_StopsOnCancelledContext(t *testing.T) {
	l := New()
	ran := false
	l.Post(func(context.Context) { ran = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.RunUntilIdle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
	assert.Equal(t, 1, l.Pending())
}

func TestDo_RunsOnLoopGoroutine(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- l.Run(ctx) }()

	counter := 0
	for range 10 {
		require.NoError(t, l.Do(ctx, func(context.Context) error {
			counter++
			return nil
		}))
	}
	assert.Equal(t, 10, counter)

	boom := errors.New("boom")
	err := l.Do(ctx, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	cancel()
	assert.ErrorIs(t, <-runErr, context.Canceled)
}

func TestRunUntilIdle_WaitsForHolds(t *testing.T) {
	l := New()
	var got []string

	l.Post(func(ctx context.Context) {
		release := Hold(ctx)
		go func() {
			time.Sleep(20 * time.Millisecond)
			l.Post(func(context.Context) { got = append(got, "response") })
			release()
		}()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.RunUntilIdle(ctx))
	assert.Equal(t, []string{"response"}, got)
}

func TestRunUntilIdle_HeldLoopStopsOnContext(t *testing.T) {
	l := New()
	release := l.Hold()
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.RunUntilIdle(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHold_ReleaseIsIdempotent(t *testing.T) {
	l := New()
	release := l.Hold()
	release()
	release()

	other := l.Hold()
	other()
	require.NoError(t, l.RunUntilIdle(context.Background()))
}

func TestHold_WithoutLoopIsNoop(t *testing.T) {
	release := Hold(context.Background())
	assert.NotPanics(t, release)
}
