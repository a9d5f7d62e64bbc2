package goroutine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_CollectsErrors(t *testing.T) {
	t.Parallel()

	m := NewManager(4)
	sentinel := errors.New("consumer stopped")

	m.Go(context.Background(), "ok", func(context.Context) error { return nil })
	m.Go(context.Background(), "bad", func(context.Context) error { return sentinel })
	m.Go(context.Background(), "panics", func(context.Context) error { panic("kaboom") })

	err := m.Wait()
	require.ErrorIs(t, err, sentinel)
	require.Contains(t, err.Error(), "job bad")
	require.Contains(t, err.Error(), "job panics: panic: kaboom")
	require.Zero(t, m.Running())
}

func TestManager_FullAndClosed(t *testing.T) {
	t.Parallel()

	m := NewManager(1)
	release := make(chan struct{})

	m.Go(context.Background(), "blocker", func(context.Context) error {
		<-release
		return nil
	})
	m.Go(context.Background(), "overflow", func(context.Context) error { return nil })

	close(release)
	err := m.Wait()
	require.ErrorIs(t, err, ErrManagerFull)

	m.Go(context.Background(), "late", func(context.Context) error { return errors.New("never runs") })
	require.ErrorIs(t, m.Wait(), ErrManagerFull)
}

func TestManager_CanceledBeforeStart(t *testing.T) {
	t.Parallel()

	m := NewManager(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m.Go(ctx, "skipped", func(context.Context) error { return errors.New("should not run") })
	require.NoError(t, m.Wait())
}

func TestManager_Nil(t *testing.T) {
	t.Parallel()

	var m *Manager
	m.Go(context.Background(), "x", func(context.Context) error { return nil })
	require.NoError(t, m.Wait())
	require.Zero(t, m.Running())
}
