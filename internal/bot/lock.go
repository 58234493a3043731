package bot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// InstanceLock guards against two pollers running against the same work
// directory. Two listeners would double-process mentions and double-post
// replies, so acquisition is non-blocking: a second instance fails fast.
type InstanceLock struct {
	flock *flock.Flock
	path  string
}

// AcquireInstanceLock takes an exclusive lock on a lock file inside dir.
// It returns an error if another process already holds the lock.
func AcquireInstanceLock(dir string) (*InstanceLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "bot.lock")
	fl := flock.New(path)

	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("another bot instance holds the lock at %s", path)
	}

	return &InstanceLock{flock: fl, path: path}, nil
}

// Release gives up the lock. The lock file itself is left in place.
func (il *InstanceLock) Release() error {
	if err := il.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", il.path, err)
	}
	return nil
}
