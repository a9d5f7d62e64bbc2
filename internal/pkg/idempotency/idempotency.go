// Package idempotency records the outcome of keyed operations in Redis so a
// redelivered command runs at most once within the state TTL.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrAlreadyInProgress means another worker holds the key.
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	// ErrAlreadyCompleted means the operation finished successfully before.
	ErrAlreadyCompleted = errors.New("idempotency: operation already completed")
	// ErrAlreadyFailed means the operation ran and failed before.
	ErrAlreadyFailed = errors.New("idempotency: operation already failed")
	// ErrInvalidState means the stored value is not a known state.
	ErrInvalidState = errors.New("idempotency: invalid state")
)

// State is the stored outcome of a keyed operation.
type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

func (s State) String() string {
	return string(s)
}

// err maps an existing state onto the error Exec reports for it.
func (s State) err() error {
	switch s {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	case StateNone:
		return nil
	default:
		return ErrInvalidState
	}
}

// IsDuplicate reports whether err means the key was already seen.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrAlreadyInProgress) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrAlreadyFailed)
}

// Idempotency runs fn once per key.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	// DefaultPrefix namespaces keys in a shared Redis.
	DefaultPrefix       = "mailbite:idempotency:"
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

// Option tunes a single Exec call.
type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress marker survives a crash.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long the final outcome is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

// StateTracker implements Idempotency on Redis.
type StateTracker struct {
	client redis.UniversalClient
	prefix string
}

// New builds a tracker. An empty prefix uses DefaultPrefix.
func New(client redis.UniversalClient, prefix string) *StateTracker {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &StateTracker{client: client, prefix: prefix}
}

// Acquire claims key, or reports the state it is already in.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	for range 2 {
		acquired, err := s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
		if err != nil {
			return StateNone, fmt.Errorf("idempotency: setnx %s: %w", key, err)
		}
		if acquired {
			return StateNone, nil
		}

		current, err := s.client.Get(ctx, fk).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return StateNone, fmt.Errorf("idempotency: get %s: %w", key, err)
		}

		state := State(current)
		if state.err() == nil || errors.Is(state.err(), ErrInvalidState) {
			return StateNone, ErrInvalidState
		}
		return state, nil
	}

	return StateNone, ErrInvalidState
}

// Exec runs fn if key is unseen and records its outcome. A seen key returns
// the matching ErrAlready* without calling fn.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	eo := execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(&eo)
	}
	if eo.lockDuration <= 0 {
		eo.lockDuration = defaultLockDuration
	}
	if eo.stateTTL <= 0 {
		eo.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, eo.lockDuration)
	if err != nil {
		return err
	}
	if err := state.err(); err != nil {
		return err
	}

	final := StateCompleted
	fnErr := fn(ctx)
	if fnErr != nil {
		final = StateFailed
	}

	if err := s.client.Set(context.WithoutCancel(ctx), s.prefix+key, final.String(), eo.stateTTL).Err(); err != nil {
		return errors.Join(fnErr, fmt.Errorf("idempotency: mark %s %s: %w", key, final, err))
	}
	return fnErr
}

// Noop runs every call. It stands in when no cache is configured.
type Noop struct{}

// Exec calls fn.
func (Noop) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...Option) error {
	return fn(ctx)
}
