// Package async provides the bounded worker pool that runs detached
// background work outside the request-response cycle.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrQueueFull is returned by Submit when the pool is saturated.
	ErrQueueFull = errors.New("async: queue full")
	// ErrClosed is returned by Submit after the pool has been shut down.
	ErrClosed = errors.New("async: pool closed")
)

// Task is a unit of background work. The supplied context is never
// cancelled by the pool; tasks carry their own per-call timeouts.
type Task func(ctx context.Context)

// Pool is a fixed-size worker pool with a bounded queue. Submit never
// blocks: when the queue is full it fails fast so the caller can log and
// move on instead of stalling a request.
type Pool struct {
	log  *slog.Logger
	jobs chan Task
	wg   sync.WaitGroup

	mu     sync.RWMutex // guards closed against the queue close in Shutdown
	closed bool
}

// NewPool starts workers goroutines consuming a queue of the given depth.
func NewPool(workers, queue int, log *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	p := &Pool{
		log:  log,
		jobs: make(chan Task, queue),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues a task without blocking. It returns ErrQueueFull when
// the queue is saturated and ErrClosed after shutdown has begun.
func (p *Pool) Submit(fn Task) error {
	if fn == nil {
		return errors.New("async: nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	// The send is non-blocking and happens under the read lock, so it can
	// never race the queue close in Shutdown.
	select {
	case p.jobs <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueDepth reports the number of tasks waiting for a worker.
func (p *Pool) QueueDepth() int { return len(p.jobs) }

// Shutdown stops accepting new tasks and waits for queued and in-flight
// tasks to finish, or until ctx expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-finished:
		return nil
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.jobs {
		p.run(fn)
	}
}

// run executes one task, containing panics so a bad task cannot take the
// worker down with it.
func (p *Pool) run(fn Task) {
	defer func() {
		if r := recover(); r != nil && p.log != nil {
			p.log.Error("background task panicked", "panic", r)
		}
	}()
	fn(context.Background())
}
