package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
)

// Job describes one background run.
type Job struct {
	ID          uuid.UUID `json:"id"`
	Trigger     string    `json:"trigger"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RunFunc does the work of a job. It should return promptly once ctx is done.
type RunFunc func(ctx context.Context, job Job)

// Runner executes at most one job at a time in the background.
type Runner struct {
	logger *slog.Logger
	wg     sync.WaitGroup

	mu      sync.Mutex
	current *Job
	cancel  context.CancelFunc
	closed  bool
}

func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Start launches fn in its own goroutine. It fails with common.ErrConflict
// while another job is running or after Shutdown.
func (r *Runner) Start(trigger string, fn RunFunc) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Job{}, fmt.Errorf("%w: runner is shutting down", common.ErrConflict)
	}
	if r.current != nil {
		return Job{}, fmt.Errorf("%w: job %s is already running", common.ErrConflict, r.current.ID)
	}

	job := Job{ID: uuid.New(), Trigger: trigger, SubmittedAt: time.Now().UTC()}
	ctx, cancel := context.WithCancel(context.Background())
	r.current = &job
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.finish(job.ID)
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("job panicked", "job_id", job.ID, "panic", p)
			}
		}()

		start := time.Now()
		r.logger.Info("job started", "job_id", job.ID, "trigger", trigger)
		fn(ctx, job)
		r.logger.Info("job finished", "job_id", job.ID, "elapsed_ms", time.Since(start).Milliseconds(), "cancelled", ctx.Err() != nil)
	}()
	return job, nil
}

func (r *Runner) finish(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && r.current.ID == id {
		r.cancel()
		r.current = nil
		r.cancel = nil
	}
}

// Current returns the running job, if any.
func (r *Runner) Current() (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Job{}, false
	}
	return *r.current, true
}

// Cancel asks the running job to stop. It reports whether a job was running.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return false
	}
	r.logger.Info("job cancel requested", "job_id", r.current.ID)
	r.cancel()
	return true
}

// Shutdown refuses new jobs, cancels the running one and waits for it
// until ctx is done.
func (r *Runner) Shutdown(ctx context.Context) {
	r.mu.Lock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); r.wg.Wait() }()

	select {
	case <-ctx.Done():
		r.logger.Warn("shutdown interrupted by context")
	case <-done:
		r.logger.Info("runner drained, shutdown complete")
	}
}
