package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/mailbite/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrManagerFull is collected when a job cannot start because every slot is taken.
var ErrManagerFull = errors.New("goroutine: manager at capacity")

// Manager runs named jobs in goroutines with a concurrency limit.
//
// Errors returned by jobs are collected and reported by Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
	running *atomic.Int64
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		sema:    make(chan struct{}, maxGoroutine),
		running: atomic.NewInt64(0),
	}
}

// Go starts job under name if a slot is free.
//
// A closed or full manager skips the job and logs a warning.
func (g *Manager) Go(pCtx context.Context, name string, job func(ctx context.Context) error) {
	if g == nil {
		return
	}

	g.stateMu.RLock()
	if g.closed {
		g.stateMu.RUnlock()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping job", "job", name)
		return
	}

	select {
	case g.sema <- struct{}{}:
		g.running.Inc()
		g.wg.Go(func() {
			g.stateMu.RUnlock()
			defer func() {
				<-g.sema
				g.running.Dec()

				if rvr := recover(); rvr != nil {
					logPanic(pCtx, "panic occurred in background job", rvr, "job", name)
					g.collect(fmt.Errorf("job %s: panic: %v", name, rvr))
				}
			}()

			if err := pCtx.Err(); err != nil {
				slog.WarnContext(pCtx, "background job canceled before start", "job", name, "because", err)
				return
			}

			if err := job(pCtx); err != nil {
				g.collect(fmt.Errorf("job %s: %w", name, err))
			}
		})

	default:
		g.stateMu.RUnlock()
		slog.WarnContext(pCtx, "maximum goroutine limit reached, job not started", "job", name)
		g.collect(fmt.Errorf("job %s: %w", name, ErrManagerFull))
	}
}

// Running reports how many jobs are executing.
func (g *Manager) Running() int64 {
	if g == nil {
		return 0
	}
	return g.running.Load()
}

// Wait closes the manager, blocks until every job returns and joins their errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Manager) collect(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

func logPanic(ctx context.Context, msg string, rvr any, args ...any) {
	stack := debug.Stack()
	args = append(args, "panic", fmt.Sprint(rvr))
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		args = append(args, "stack", paths)
	} else {
		args = append(args, "stack", string(stack))
	}
	slog.ErrorContext(ctx, msg, args...)
}
