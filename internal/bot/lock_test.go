package bot

import (
	"testing"
)

func TestInstanceLockAcquireRelease(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireInstanceLock(dir)
	if err != nil {
		t.Fatalf("AcquireInstanceLock failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
}

func TestInstanceLockCreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/work"

	lock, err := AcquireInstanceLock(dir)
	if err != nil {
		t.Fatalf("AcquireInstanceLock should create the directory: %v", err)
	}
	lock.Release()
}

func TestInstanceLockRejectsSecondHolder(t *testing.T) {
	dir := t.TempDir()

	first, err := AcquireInstanceLock(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Release()

	if _, err := AcquireInstanceLock(dir); err == nil {
		t.Error("second acquisition while held should fail fast")
	}
}

func TestInstanceLockReacquireAfterRelease(t *testing.T) {
	dir := t.TempDir()

	first, err := AcquireInstanceLock(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Release(); err != nil {
		t.Fatal(err)
	}

	second, err := AcquireInstanceLock(dir)
	if err != nil {
		t.Fatalf("lock should be acquirable after release: %v", err)
	}
	second.Release()
}
