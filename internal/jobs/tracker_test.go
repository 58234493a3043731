package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spewlabs/explainer/internal/remote"
)

// recordingHandler counts terminal callbacks per job id.
type recordingHandler struct {
	mu        sync.Mutex
	completed map[string]int
	failed    map[string]int
	lastErr   error
	lastVideo remote.File
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{completed: make(map[string]int), failed: make(map[string]int)}
}

func (h *recordingHandler) OnCompleted(job Job, video remote.File) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed[job.ID]++
	h.lastVideo = video
}

func (h *recordingHandler) OnFailed(job Job, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed[job.ID]++
	h.lastErr = err
}

func (h *recordingHandler) counts(id string) (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.completed[id], h.failed[id]
}

// blockingRunner completes when released, with a scripted outcome.
type blockingRunner struct {
	release chan struct{}
	file    remote.File
	err     error
}

func (r *blockingRunner) run(ctx context.Context, jctx Context) (remote.File, error) {
	if r.release != nil {
		<-r.release
	}
	return r.file, r.err
}

// waitDone polls until the job's future reports completion.
func waitDone(t *testing.T, tr *Tracker, id string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok, err := tr.store.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || (job.Future != nil && job.Future.Done()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never finished")
}

func TestTrackerCompletedJobGetsExactlyOneCallback(t *testing.T) {
	handler := newRecordingHandler()
	runner := &blockingRunner{file: remote.NewLocalFile("/tmp/final.mp4")}
	tr := NewTracker(NewMemoryStore(), runner.run, handler, time.Hour, nil)

	if err := tr.Submit(context.Background(), "m-1", Context{"topic": "entropy"}); err != nil {
		t.Fatal(err)
	}
	waitDone(t, tr, "m-1")

	if err := tr.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	// A second poll must not see the job again.
	if err := tr.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	completed, failed := handler.counts("m-1")
	if completed != 1 || failed != 0 {
		t.Errorf("callbacks = %d completed, %d failed; want exactly one completion", completed, failed)
	}
	if handler.lastVideo.Path() != "/tmp/final.mp4" {
		t.Errorf("video = %q", handler.lastVideo.Path())
	}
	if n, _ := tr.Pending(); n != 0 {
		t.Errorf("Pending = %d, want 0", n)
	}
}

func TestTrackerFailedJobGetsFailureCallback(t *testing.T) {
	handler := newRecordingHandler()
	boom := errors.New("pipeline failed")
	runner := &blockingRunner{err: boom}
	tr := NewTracker(NewMemoryStore(), runner.run, handler, time.Hour, nil)

	if err := tr.Submit(context.Background(), "m-1", nil); err != nil {
		t.Fatal(err)
	}
	waitDone(t, tr, "m-1")

	if err := tr.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	completed, failed := handler.counts("m-1")
	if completed != 0 || failed != 1 {
		t.Errorf("callbacks = %d completed, %d failed", completed, failed)
	}
	if !errors.Is(handler.lastErr, boom) {
		t.Errorf("error = %v", handler.lastErr)
	}
}

func TestTrackerPendingJobStaysTracked(t *testing.T) {
	handler := newRecordingHandler()
	runner := &blockingRunner{release: make(chan struct{}), file: remote.NewLocalFile("/tmp/f.mp4")}
	tr := NewTracker(NewMemoryStore(), runner.run, handler, time.Hour, nil)

	if err := tr.Submit(context.Background(), "m-1", nil); err != nil {
		t.Fatal(err)
	}

	if err := tr.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	completed, failed := handler.counts("m-1")
	if completed != 0 || failed != 0 {
		t.Error("pending job must get no callback")
	}
	if n, _ := tr.Pending(); n != 1 {
		t.Errorf("Pending = %d, want 1", n)
	}

	close(runner.release)
}

func TestTrackerAbandonsExpiredJobSilently(t *testing.T) {
	handler := newRecordingHandler()
	runner := &blockingRunner{release: make(chan struct{})}
	tr := NewTracker(NewMemoryStore(), runner.run, handler, 1800*time.Second, nil)

	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return submitted }

	if err := tr.Submit(context.Background(), "m-1", nil); err != nil {
		t.Fatal(err)
	}

	// One second past the budget.
	tr.now = func() time.Time { return submitted.Add(1801 * time.Second) }
	if err := tr.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	completed, failed := handler.counts("m-1")
	if completed != 0 || failed != 0 {
		t.Error("an abandoned job must receive no callback at all")
	}
	if n, _ := tr.Pending(); n != 0 {
		t.Errorf("Pending = %d, want 0: the job set must only shrink", n)
	}

	close(runner.release)
}

func TestTrackerExactlyAtBudgetIsNotExpired(t *testing.T) {
	handler := newRecordingHandler()
	runner := &blockingRunner{release: make(chan struct{})}
	tr := NewTracker(NewMemoryStore(), runner.run, handler, 1800*time.Second, nil)

	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return submitted }

	if err := tr.Submit(context.Background(), "m-1", nil); err != nil {
		t.Fatal(err)
	}

	tr.now = func() time.Time { return submitted.Add(1800 * time.Second) }
	if err := tr.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	if n, _ := tr.Pending(); n != 1 {
		t.Errorf("Pending = %d, want 1: expiry requires elapsed > budget", n)
	}

	close(runner.release)
}

func TestTrackerSubmitRequiresID(t *testing.T) {
	tr := NewTracker(NewMemoryStore(), (&blockingRunner{}).run, newRecordingHandler(), time.Hour, nil)
	if err := tr.Submit(context.Background(), "", nil); err == nil {
		t.Error("empty id should be rejected")
	}
}

func TestTrackerRestoredJobWithoutFutureExpiresByTimeout(t *testing.T) {
	handler := newRecordingHandler()
	store := NewMemoryStore()
	tr := NewTracker(store, (&blockingRunner{}).run, handler, time.Hour, nil)

	// Simulate a row restored after a restart: no future attached.
	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Put(Job{ID: "m-restored", SubmittedAt: submitted}); err != nil {
		t.Fatal(err)
	}

	// Before the budget it just stays pending.
	tr.now = func() time.Time { return submitted.Add(time.Minute) }
	if err := tr.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n, _ := tr.Pending(); n != 1 {
		t.Errorf("Pending = %d, want 1", n)
	}

	// Past the budget it is dropped without a callback.
	tr.now = func() time.Time { return submitted.Add(2 * time.Hour) }
	if err := tr.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	completed, failed := handler.counts("m-restored")
	if completed != 0 || failed != 0 {
		t.Error("restored job must resolve silently by timeout")
	}
	if n, _ := tr.Pending(); n != 0 {
		t.Errorf("Pending = %d, want 0", n)
	}
}
