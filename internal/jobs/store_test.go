package jobs

import (
	"path/filepath"
	"testing"
	"time"
)

// storeContract runs the behavior every Store backing must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Put(Job{ID: "m-2", SubmittedAt: base.Add(time.Minute), Context: Context{"topic": "entropy"}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(Job{ID: "m-1", SubmittedAt: base, Context: Context{"topic": "gravity"}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	job, ok, err := store.Get("m-1")
	if err != nil || !ok {
		t.Fatalf("Get(m-1) = (%v, %v)", ok, err)
	}
	if job.Context["topic"] != "gravity" {
		t.Errorf("context = %v", job.Context)
	}
	if !job.SubmittedAt.Equal(base) {
		t.Errorf("SubmittedAt = %v, want %v", job.SubmittedAt, base)
	}

	if _, ok, _ := store.Get("m-404"); ok {
		t.Error("unknown id should not be found")
	}

	jobs, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("List = %d jobs, want 2", len(jobs))
	}
	if jobs[0].ID != "m-1" || jobs[1].ID != "m-2" {
		t.Errorf("List order = %s, %s; want submission order", jobs[0].ID, jobs[1].ID)
	}

	if err := store.Delete("m-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get("m-1"); ok {
		t.Error("deleted job should be gone")
	}
	if err := store.Delete("m-1"); err != nil {
		t.Errorf("double delete should be a no-op: %v", err)
	}

	if err := store.Put(Job{ID: ""}); err == nil {
		t.Error("empty id should be rejected")
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	storeContract(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	submitted := time.Now().Truncate(time.Millisecond)
	if err := store.Put(Job{ID: "m-1", SubmittedAt: submitted, Context: Context{"topic": "entropy"}}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	job, ok, err := reopened.Get("m-1")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = (%v, %v)", ok, err)
	}
	if job.Context["topic"] != "entropy" {
		t.Errorf("context = %v", job.Context)
	}
	// Futures are process-local; a restored row has none and will be
	// resolved by timeout.
	if job.Future != nil {
		t.Error("restored job should carry no future")
	}
}
