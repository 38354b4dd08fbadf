package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
)

func TestRunner_SingleJob(t *testing.T) {
	r := NewRunner(nil)
	release := make(chan struct{})
	done := make(chan struct{})

	job, err := r.Start("test", func(ctx context.Context, _ Job) {
		defer close(done)
		<-release
	})
	require.NoError(t, err)

	cur, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, job.ID, cur.ID)
	assert.Equal(t, "test", cur.Trigger)

	_, err = r.Start("second", func(context.Context, Job) {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))

	close(release)
	<-done
	require.Eventually(t, func() bool {
		_, running := r.Current()
		return !running
	}, time.Second, 5*time.Millisecond)

	_, err = r.Start("third", func(context.Context, Job) {})
	require.NoError(t, err)
	r.Shutdown(context.Background())
}

func TestRunner_Cancel(t *testing.T) {
	r := NewRunner(nil)
	assert.False(t, r.Cancel())

	stopped := make(chan struct{})
	_, err := r.Start("cancel", func(ctx context.Context, _ Job) {
		<-ctx.Done()
		close(stopped)
	})
	require.NoError(t, err)

	assert.True(t, r.Cancel())
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("job did not observe cancellation")
	}
	r.Shutdown(context.Background())
}

func TestRunner_ShutdownRefusesNewJobs(t *testing.T) {
	r := NewRunner(nil)
	_, err := r.Start("long", func(ctx context.Context, _ Job) { <-ctx.Done() })
	require.NoError(t, err)

	r.Shutdown(context.Background())
	_, running := r.Current()
	assert.False(t, running)

	_, err = r.Start("late", func(context.Context, Job) {})
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestRunner_RecoversPanic(t *testing.T) {
	r := NewRunner(nil)
	_, err := r.Start("boom", func(context.Context, Job) { panic("boom") })
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, running := r.Current()
		return !running
	}, time.Second, 5*time.Millisecond)
	r.Shutdown(context.Background())
}
