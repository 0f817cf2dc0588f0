// Package executor runs background tasks on a resizable set of workers fed
// by an unbounded queue. Submitting never blocks.
package executor

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

// ErrPanic wraps a value recovered from a panicking task.
var ErrPanic = errors.New("task panicked")

// Task is one unit of work. A non-nil error marks the task as failed in
// the pool metrics.
type Task func() error

// Pool executes tasks in submission order on up to Parallel workers.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Task
	parallel int
	workers  int
	closed   bool

	running atomic.Int32
	metrics *Metrics
}

// NewPool starts a pool with parallel workers. parallel < 1 is treated as 1.
// m may be nil.
func NewPool(parallel int, m *Metrics) *Pool {
	p := &Pool{metrics: m}
	p.cond = sync.NewCond(&p.mu)
	p.Resize(parallel)
	return p
}

// Execute queues t. It returns false once the pool is closed.
func (p *Pool) Execute(t Task) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.queue = append(p.queue, t)
	depth := len(p.queue)
	p.mu.Unlock()

	p.cond.Signal()
	p.metrics.submitted(depth)
	return true
}

// Resize changes the number of workers. Surplus workers exit after
// finishing their current task.
func (p *Pool) Resize(parallel int) {
	if parallel < 1 {
		parallel = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.parallel = parallel
	for p.workers < p.parallel {
		p.workers++
		go p.run()
	}
	p.metrics.setWorkers(p.parallel)
	// Wake idle workers so the surplus can exit.
	p.cond.Broadcast()
}

// Parallel returns the configured number of workers.
func (p *Pool) Parallel() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parallel
}

// Pending returns the number of queued tasks not yet started.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Running returns the number of tasks currently executing.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// Close stops accepting tasks. Queued tasks still run.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

func (p *Pool) next() (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 {
		if p.closed || p.workers > p.parallel {
			p.workers--
			return nil, false
		}
		p.cond.Wait()
	}
	if p.workers > p.parallel {
		p.workers--
		p.cond.Signal()
		return nil, false
	}

	t := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	p.metrics.dequeued(len(p.queue))
	return t, true
}

func (p *Pool) run() {
	for {
		t, ok := p.next()
		if !ok {
			return
		}
		p.running.Inc()
		err := Safe(t)
		p.running.Dec()
		p.metrics.finished(err)
	}
}

// Safe runs t and converts a panic into an error wrapping ErrPanic.
func Safe(t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return t()
}
