package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spewlabs/explainer/internal/logger"
	"github.com/spewlabs/explainer/internal/remote"
)

// DefaultMaxJobTime is the budget after which a tracked job is abandoned.
const DefaultMaxJobTime = 30 * time.Minute

// Runner is the computation a submitted job performs, typically one full
// pipeline run.
type Runner func(ctx context.Context, jctx Context) (remote.File, error)

// Handler receives exactly one terminal callback per resolved job.
// Abandoned (timed out) jobs receive no callback at all.
type Handler interface {
	OnCompleted(job Job, video remote.File)
	OnFailed(job Job, err error)
}

// Tracker manages the set of in-flight jobs. Submit starts a non-blocking
// computation; PollOnce, invoked periodically by an external scheduler,
// resolves finished and expired jobs.
//
// A mutex serializes Submit and PollOnce, so PollOnce is the only place
// jobs are resolved and removed even if multiple callers invoke it.
// Each job reaches exactly one terminal state — completed, failed, or
// silently dropped on timeout — and is removed from the store
// immediately on that transition, never to be polled again.
type Tracker struct {
	mu         sync.Mutex
	store      Store
	runner     Runner
	handler    Handler
	maxJobTime time.Duration
	log        logger.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// NewTracker creates a Tracker. maxJobTime values <= 0 fall back to
// DefaultMaxJobTime; log may be nil.
func NewTracker(store Store, runner Runner, handler Handler, maxJobTime time.Duration, log logger.Logger) *Tracker {
	if maxJobTime <= 0 {
		maxJobTime = DefaultMaxJobTime
	}
	return &Tracker{
		store:      store,
		runner:     runner,
		handler:    handler,
		maxJobTime: maxJobTime,
		log:        logger.OrNoOp(log),
		now:        time.Now,
	}
}

// SetHandler replaces the terminal-callback receiver. The tracker and
// its handler reference each other, so wiring constructs them in two
// steps; call this before the first PollOnce.
func (t *Tracker) SetHandler(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Submit starts the job's computation without blocking and tracks it
// under the externally supplied id. Submitting twice under the same id is
// undefined; avoiding duplicates is the caller's responsibility.
//
// The passed context must outlive the computation: canceling it is the
// only way to interrupt an in-flight run.
func (t *Tracker) Submit(ctx context.Context, id string, jctx Context) error {
	if id == "" {
		return fmt.Errorf("job id is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	job := Job{
		ID:          id,
		SubmittedAt: t.now(),
		Context:     jctx,
		Future: remote.Push(ctx, func(ctx context.Context) (remote.File, error) {
			return t.runner(ctx, jctx)
		}),
	}
	if err := t.store.Put(job); err != nil {
		return fmt.Errorf("track job %s: %w", id, err)
	}

	t.log.LogInfo(fmt.Sprintf("job %s submitted", id))
	return nil
}

// PollOnce iterates all tracked jobs once. For each job:
//
//   - expired budget: the job is dropped silently — removed with no
//     callback. The underlying computation is not canceled, only
//     abandoned; it may keep consuming resources.
//   - finished computation: the result or error is handed to exactly one
//     terminal callback, and the job is removed regardless of what the
//     callback does.
//   - otherwise the job stays pending for the next poll.
func (t *Tracker) PollOnce(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handler == nil {
		return fmt.Errorf("no handler set")
	}

	tracked, err := t.store.List()
	if err != nil {
		return fmt.Errorf("list tracked jobs: %w", err)
	}

	for _, job := range tracked {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		elapsed := t.now().Sub(job.SubmittedAt)
		if elapsed > t.maxJobTime {
			if err := t.store.Delete(job.ID); err != nil {
				return fmt.Errorf("drop job %s: %w", job.ID, err)
			}
			t.log.LogWarn(fmt.Sprintf("job %s abandoned after %s (budget %s)",
				job.ID, elapsed.Round(time.Second), t.maxJobTime))
			continue
		}

		if job.Future == nil || !job.Future.Done() {
			continue
		}

		// Remove before invoking the callback so a misbehaving handler
		// can never cause the job to be resolved twice.
		if err := t.store.Delete(job.ID); err != nil {
			return fmt.Errorf("remove job %s: %w", job.ID, err)
		}

		video, runErr := job.Future.Result()
		if runErr != nil {
			t.log.LogWarn(fmt.Sprintf("job %s failed: %v", job.ID, runErr))
			t.handler.OnFailed(job, runErr)
			continue
		}
		t.log.LogInfo(fmt.Sprintf("job %s completed: %s", job.ID, video.Path()))
		t.handler.OnCompleted(job, video)
	}

	return nil
}

// Pending returns the number of currently tracked jobs.
func (t *Tracker) Pending() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tracked, err := t.store.List()
	if err != nil {
		return 0, err
	}
	return len(tracked), nil
}
