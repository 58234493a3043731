// Package jobs tracks long-running generation jobs submitted from an
// external trigger source and resolves each exactly once.
//
// Job state is held behind a small Store interface so the tracker's
// polling logic is independent of the backing. Futures are process-local
// and not serializable: rows restored from a durable store carry no
// future and resolve as timed out once their budget lapses.
package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spewlabs/explainer/internal/remote"
)

// Context is the opaque caller metadata attached to a job, carried
// through to the terminal callbacks untouched.
type Context map[string]string

// Job is one tracked generation run.
type Job struct {
	// ID is the externally supplied key, e.g. the triggering mention id.
	ID string

	// SubmittedAt is when the job entered the tracked set.
	SubmittedAt time.Time

	// Context is opaque caller metadata.
	Context Context

	// Future is the handle to the pending computation. Nil for rows
	// restored from a durable store after a restart.
	Future *remote.Future[remote.File]
}

// Store is the job persistence surface. Implementations must be safe for
// concurrent use.
type Store interface {
	Put(job Job) error
	Get(id string) (Job, bool, error)
	Delete(id string) error
	List() ([]Job, error)
}

// MemoryStore is the default in-memory Store. State does not survive a
// process restart.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]Job
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job)}
}

// Put stores or replaces the job under its ID.
func (s *MemoryStore) Put(job Job) error {
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

// Get returns the job with the given id, if tracked.
func (s *MemoryStore) Get(id string) (Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok, nil
}

// Delete removes the job; deleting an unknown id is a no-op.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

// List returns all tracked jobs ordered by submission time.
func (s *MemoryStore) List() ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}
