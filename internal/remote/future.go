package remote

import (
	"context"
	"sync"
)

// Future is the handle to a pushed computation. Done reports completion
// without blocking; Result blocks until the computation finishes and then
// returns its value or error. Both are safe for concurrent use and Result
// may be called any number of times.
type Future[T any] struct {
	done chan struct{}

	mu    sync.Mutex
	value T
	err   error
}

// Push starts fn in its own goroutine and returns a Future for its result.
// The computation owns the passed context; cancellation of that context is
// the only way to interrupt it. A panic inside fn is not recovered: a stage
// that panics is a programming error, not a stage failure.
func Push[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		value, err := fn(ctx)
		f.mu.Lock()
		f.value = value
		f.err = err
		f.mu.Unlock()
		close(f.done)
	}()
	return f
}

// Done reports whether the computation has finished, without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result blocks until the computation finishes, then returns its value or
// error.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}
