package goroutine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// DefaultPoolSize is used when NewPool receives a non-positive size.
const DefaultPoolSize = 16

var (
	// ErrPoolClosed is returned by Submit after Close.
	ErrPoolClosed = errors.New("goroutine: pool closed")
	// ErrPanic wraps a value recovered from a submitted function.
	ErrPanic = errors.New("goroutine: task panicked")
)

// Pool runs blocking functions on a bounded set of goroutines.
//
// Submit waits for a free slot under the caller's context. Once a function
// starts it runs to completion under a context that is never canceled by
// the caller, and its error is delivered on a buffered channel.
type Pool struct {
	sem      *semaphore.Weighted
	size     int64
	wg       sync.WaitGroup
	mu       sync.RWMutex // orders wg.Add against Close
	closed   *atomic.Bool
	inflight *atomic.Int64
}

// NewPool creates a Pool with size concurrent slots.
func NewPool(size int) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}

	return &Pool{
		sem:      semaphore.NewWeighted(int64(size)),
		size:     int64(size),
		closed:   atomic.NewBool(false),
		inflight: atomic.NewInt64(0),
	}
}

// Submit schedules fn and returns the channel its result arrives on.
//
// The channel receives exactly one value and is then closed. An error is
// returned instead when the pool is closed or ctx ends before a slot frees.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context) error) (<-chan error, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("goroutine: acquire worker: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		p.sem.Release(1)
		return nil, ErrPoolClosed
	}

	done := make(chan error, 1)
	runCtx := context.WithoutCancel(ctx)

	p.inflight.Inc()
	p.wg.Go(func() {
		defer close(done)
		defer p.sem.Release(1)
		defer p.inflight.Dec()

		done <- p.run(runCtx, fn)
	})

	return done, nil
}

func (p *Pool) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			logPanic(ctx, "panic occurred in pool task", rvr)
			err = fmt.Errorf("%w: %v", ErrPanic, rvr)
		}
	}()

	return fn(ctx)
}

// Inflight reports how many functions are executing.
func (p *Pool) Inflight() int64 {
	return p.inflight.Load()
}

// Size reports the slot count.
func (p *Pool) Size() int64 {
	return p.size
}

// Close stops accepting work. Running functions are not interrupted. Once
// Close returns, every accepted function is visible to Wait.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed.Store(true)
	p.mu.Unlock()
	return nil
}

// Wait blocks until every running function has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
