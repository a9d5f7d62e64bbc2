package goroutine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_SubmitResult(t *testing.T) {
	t.Parallel()

	p := NewPool(2)
	sentinel := errors.New("smtp down")

	done, err := p.Submit(context.Background(), func(context.Context) error { return sentinel })
	require.NoError(t, err)
	require.ErrorIs(t, <-done, sentinel)

	done, err = p.Submit(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, <-done)

	_, open := <-done
	require.False(t, open)
}

func TestPool_CallerCancelDoesNotAbortTask(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})

	done, err := p.Submit(ctx, func(runCtx context.Context) error {
		close(started)
		<-release
		return runCtx.Err()
	})
	require.NoError(t, err)

	<-started
	cancel()
	close(release)

	require.NoError(t, <-done)
}

func TestPool_AcquireHonoursContext(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	release := make(chan struct{})

	_, err := p.Submit(context.Background(), func(context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = p.Submit(ctx, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	p.Wait()
	require.Zero(t, p.Inflight())
}

func TestPool_PanicRecovered(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	done, err := p.Submit(context.Background(), func(context.Context) error { panic("boom") })
	require.NoError(t, err)

	err = <-done
	require.ErrorIs(t, err, ErrPanic)
	require.Contains(t, err.Error(), "boom")
}

func TestPool_CloseRejectsAndDrains(t *testing.T) {
	t.Parallel()

	p := NewPool(0)
	require.Equal(t, int64(DefaultPoolSize), p.Size())

	release := make(chan struct{})
	done, err := p.Submit(context.Background(), func(context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), p.Inflight())

	require.NoError(t, p.Close())
	_, err = p.Submit(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrPoolClosed)

	close(release)
	p.Wait()
	require.NoError(t, <-done)
}

func TestPool_CloseWaitRacesSubmit(t *testing.T) {
	t.Parallel()

	for range 50 {
		p := NewPool(4)

		var accepted, finished atomic.Int64
		var submitters sync.WaitGroup
		for range 8 {
			submitters.Go(func() {
				done, err := p.Submit(context.Background(), func(context.Context) error {
					finished.Add(1)
					return nil
				})
				if err != nil {
					require.ErrorIs(t, err, ErrPoolClosed)
					return
				}
				accepted.Add(1)
				<-done
			})
		}

		require.NoError(t, p.Close())
		p.Wait()
		submitters.Wait()
		require.Equal(t, accepted.Load(), finished.Load())
	}
}
