package mrcz

import (
	"context"
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/robert-malhotra/go-mrcz/internal/executor"
)

// Handle is the pending result of an asynchronous read or write.
// The first completion is kept; Result can be called any number of times
// from any goroutine and returns the same value and error.
type Handle[T any] struct {
	done     chan struct{}
	once     sync.Once
	canceled atomic.Bool
	val      T
	err      error
}

func newHandle[T any]() *Handle[T] {
	return &Handle[T]{done: make(chan struct{})}
}

func (h *Handle[T]) complete(v T, err error) {
	h.once.Do(func() {
		if h.canceled.Load() {
			var zero T
			v, err = zero, ErrCanceled
		}
		h.val, h.err = v, err
		close(h.done)
	})
}

// Result blocks until the operation finishes and returns its outcome.
func (h *Handle[T]) Result() (T, error) {
	<-h.done
	return h.val, h.err
}

// Wait is Result bounded by ctx. A ctx expiry does not cancel the operation.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the result is available.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Cancel abandons the operation. A queued operation never starts; one that
// is already running finishes, but Result reports ErrCanceled. Cancel has
// no effect once the result is available.
func (h *Handle[T]) Cancel() {
	h.canceled.Store(true)
}

// Result is the outcome of AsyncReadFile.
type Result struct {
	Array  *Array
	Header *Header
}

var async struct {
	mu      sync.Mutex
	pool    *executor.Pool
	workers int
}

var asyncMetrics = executor.NewMetrics("async")

// SetAsyncWorkers sets how many asynchronous operations run at once.
// n <= 0 restores the default of one per CPU.
func SetAsyncWorkers(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	async.mu.Lock()
	defer async.mu.Unlock()
	async.workers = n
	if async.pool != nil {
		async.pool.Resize(n)
	}
}

// RegisterMetrics registers the async pool collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return asyncMetrics.Register(reg)
}

func asyncPool() *executor.Pool {
	async.mu.Lock()
	defer async.mu.Unlock()
	if async.pool == nil {
		n := async.workers
		if n <= 0 {
			n = runtime.NumCPU()
		}
		async.pool = executor.NewPool(n, asyncMetrics)
	}
	return async.pool
}

func submit[T any](fn func() (T, error)) *Handle[T] {
	h := newHandle[T]()
	queued := asyncPool().Execute(func() error {
		var v T
		if h.canceled.Load() {
			h.complete(v, ErrCanceled)
			return ErrCanceled
		}
		err := executor.Safe(func() error {
			var err error
			v, err = fn()
			return err
		})
		h.complete(v, err)
		return err
	})
	if !queued {
		var zero T
		h.complete(zero, ErrCanceled)
	}
	return h
}

// AsyncWriteFile starts WriteFile on the background pool. The caller must
// not modify arr.Data until the handle completes.
func AsyncWriteFile(path string, arr *Array, opts ...WriteOption) *Handle[struct{}] {
	return submit(func() (struct{}, error) {
		return struct{}{}, WriteFile(path, arr, opts...)
	})
}

// AsyncReadFile starts ReadFile on the background pool.
func AsyncReadFile(path string, opts ...ReadOption) *Handle[*Result] {
	return submit(func() (*Result, error) {
		arr, h, err := ReadFile(path, opts...)
		if err != nil {
			return nil, err
		}
		return &Result{Array: arr, Header: h}, nil
	})
}
