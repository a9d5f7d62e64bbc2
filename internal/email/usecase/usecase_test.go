package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/mailbite/internal/pkg/mail"
	"github.com/shandysiswandi/mailbite/internal/pkg/validator"
)

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, name string, tc *entity.TemplateContext) (entity.RenderedMessage, error) {
	args := m.Called(ctx, name, tc)
	return args.Get(0).(entity.RenderedMessage), args.Error(1)
}

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Send(ctx context.Context, env entity.Envelope) error {
	return m.Called(ctx, env).Error(0)
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type observation struct {
	channel string
	kind    string
}

type fakeMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeMetrics) Observe(channel, kind string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{channel: channel, kind: kind})
}

type fixture struct {
	uc        *Usecase
	renderer  *mockRenderer
	transport *mockTransport
	metrics   *fakeMetrics
	pool      *goroutine.Pool
}

func testConfig() Config {
	return Config{From: "noreply@mailbite.dev", TemplateName: "verification-code", ValidityMinutes: 10}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	f := &fixture{
		renderer:  &mockRenderer{},
		transport: &mockTransport{},
		metrics:   &fakeMetrics{},
		pool:      goroutine.NewPool(4),
	}

	f.uc, err = New(Dependency{
		Config:    testConfig(),
		Validator: v,
		Renderer:  f.renderer,
		Transport: f.transport,
		Pool:      f.pool,
		UID:       &seqID{},
		Metrics:   f.metrics,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = f.pool.Close()
		f.pool.Wait()
	})
	return f
}

func connectionFailure() error {
	return entity.NewError(entity.KindTransportConnection, "", fmt.Errorf("%w: smtp: connection refused", mail.ErrDelivery))
}

func TestNew_ValidatesConfig(t *testing.T) {
	t.Parallel()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	dep := Dependency{
		Config:    Config{From: "noreply@mailbite.dev", ValidityMinutes: 10},
		Validator: v,
		Renderer:  &mockRenderer{},
		Transport: &mockTransport{},
		Pool:      goroutine.NewPool(1),
		UID:       &seqID{},
	}

	_, err = New(dep)
	require.ErrorContains(t, err, "Template name cannot be empty")

	dep.Config = testConfig()
	dep.UID = nil
	_, err = New(dep)
	require.ErrorIs(t, err, errMissingDependency)
}

func TestDispatchPlain(t *testing.T) {
	t.Parallel()

	t.Run("empty recipient never reaches transport", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		res := f.uc.DispatchPlain(context.Background(), entity.PlainEmailRequest{To: "", Subject: "hi", Content: "x"})

		assert.False(t, res.Succeeded)
		assert.Equal(t, entity.KindValidation, res.Kind)
		assert.Equal(t, "Recipient cannot be empty", res.Detail)
		f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		assert.Equal(t, []observation{{ChannelPlain, "validation"}}, f.metrics.obs)
	})

	t.Run("missing subject and content send empty strings", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.transport.On("Send", mock.Anything, entity.Envelope{
			To:      "a@b.com",
			Subject: "",
			Message: entity.RenderedMessage{IsHTML: false, Body: ""},
		}).Return(nil).Once()

		res := f.uc.DispatchPlain(context.Background(), entity.PlainEmailRequest{To: "a@b.com"})

		assert.True(t, res.Succeeded)
		assert.Equal(t, entity.KindNone, res.Kind)
		assert.NotZero(t, res.ID)
		f.transport.AssertExpectations(t)
		assert.Equal(t, []observation{{ChannelPlain, "none"}}, f.metrics.obs)
	})

	t.Run("connection failure is folded", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.transport.On("Send", mock.Anything, mock.Anything).Return(connectionFailure()).Once()

		res := f.uc.DispatchPlain(context.Background(), entity.PlainEmailRequest{To: "a@b.com", Content: "hello"})

		assert.False(t, res.Succeeded)
		assert.Equal(t, entity.KindTransportConnection, res.Kind)
		assert.Contains(t, res.Detail, "connection refused")
	})

	t.Run("unclassified transport error is unexpected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.transport.On("Send", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

		res := f.uc.DispatchPlain(context.Background(), entity.PlainEmailRequest{To: "a@b.com"})
		assert.Equal(t, entity.KindUnexpected, res.Kind)
	})

	t.Run("panicking transport is unexpected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.transport.On("Send", mock.Anything, mock.Anything).Panic("driver bug").Once()

		res := f.uc.DispatchPlain(context.Background(), entity.PlainEmailRequest{To: "a@b.com"})
		assert.False(t, res.Succeeded)
		assert.Equal(t, entity.KindUnexpected, res.Kind)
		assert.Contains(t, res.Detail, "driver bug")
	})
}

func TestDispatchTemplated(t *testing.T) {
	t.Parallel()

	t.Run("empty verification code never reaches renderer", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		res := f.uc.DispatchTemplated(context.Background(), entity.TemplatedEmailRequest{To: "a@b.com"}, "")

		assert.Equal(t, entity.KindValidation, res.Kind)
		assert.Equal(t, "Verification code cannot be empty", res.Detail)
		f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
		f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("recipient is checked before verification code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		res := f.uc.DispatchTemplated(context.Background(), entity.TemplatedEmailRequest{}, "")
		assert.Equal(t, "Recipient cannot be empty", res.Detail)
	})

	t.Run("username defaults to recipient", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		var bound *entity.TemplateContext
		f.renderer.On("Render", mock.Anything, "verification-code", mock.Anything).
			Run(func(args mock.Arguments) { bound = args.Get(2).(*entity.TemplateContext) }).
			Return(entity.RenderedMessage{IsHTML: true, Body: "<p>ok</p>"}, nil).Once()
		f.transport.On("Send", mock.Anything, entity.Envelope{
			To:      "a@b.com",
			Message: entity.RenderedMessage{IsHTML: true, Body: "<p>ok</p>"},
		}).Return(nil).Once()

		res := f.uc.DispatchTemplated(context.Background(), entity.TemplatedEmailRequest{To: "a@b.com", VerificationCode: "123456"}, "")

		require.True(t, res.Succeeded)
		require.NotNil(t, bound)
		assert.Equal(t, []string{
			entity.VarUsername, entity.VarVerificationCode, entity.VarValidityPeriod, entity.VarSubject,
		}, bound.Keys())
		username, _ := bound.Get(entity.VarUsername)
		assert.Equal(t, "a@b.com", username)
		validity, _ := bound.Get(entity.VarValidityPeriod)
		assert.Equal(t, 10, validity)
		f.transport.AssertExpectations(t)
		assert.Equal(t, []observation{{ChannelTemplated, "none"}}, f.metrics.obs)
	})

	t.Run("explicit template and username", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		f.renderer.On("Render", mock.Anything, "welcome", mock.MatchedBy(func(tc *entity.TemplateContext) bool {
			v, _ := tc.Get(entity.VarUsername)
			s, _ := tc.Get(entity.VarSubject)
			return v == "alice" && s == "Your code"
		})).Return(entity.RenderedMessage{IsHTML: true, Body: "x"}, nil).Once()
		f.transport.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		res := f.uc.DispatchTemplated(context.Background(), entity.TemplatedEmailRequest{
			To: "a@b.com", Username: "alice", VerificationCode: "1", Subject: "Your code",
		}, "welcome")
		assert.True(t, res.Succeeded)
		f.renderer.AssertExpectations(t)
	})

	t.Run("render failure skips transport", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).
			Return(entity.RenderedMessage{}, errors.New("template: not found")).Once()

		res := f.uc.DispatchTemplated(context.Background(), entity.TemplatedEmailRequest{To: "a@b.com", VerificationCode: "1"}, "missing")

		assert.Equal(t, entity.KindTemplateRender, res.Kind)
		f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("transport format failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).
			Return(entity.RenderedMessage{IsHTML: true, Body: "x"}, nil).Once()
		f.transport.On("Send", mock.Anything, mock.Anything).
			Return(entity.NewError(entity.KindTransportFormat, "", mail.ErrMalformedMessage)).Once()

		res := f.uc.DispatchTemplated(context.Background(), entity.TemplatedEmailRequest{To: "bad", VerificationCode: "1"}, "")
		assert.Equal(t, entity.KindTransportFormat, res.Kind)
	})
}

func TestDispatch_CallerGivesUp(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	release := make(chan struct{})
	sent := make(chan struct{})
	f.transport.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-release
		assert.NoError(t, args.Get(0).(context.Context).Err())
		close(sent)
	}).Return(nil).Once()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := f.uc.DispatchPlain(ctx, entity.PlainEmailRequest{To: "a@b.com"})
	assert.False(t, res.Succeeded)
	assert.Equal(t, entity.KindUnexpected, res.Kind)

	close(release)
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("send did not finish after the caller gave up")
	}
}

// inlinePool runs fn before returning, so its result is already waiting.
type inlinePool struct{}

func (inlinePool) Submit(ctx context.Context, fn func(ctx context.Context) error) (<-chan error, error) {
	done := make(chan error, 1)
	done <- fn(context.WithoutCancel(ctx))
	close(done)
	return done, nil
}

func TestDispatch_FinishedSendWinsOverCancel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.uc.pool = inlinePool{}

	for range 20 {
		ctx, cancel := context.WithCancel(context.Background())
		f.transport.On("Send", mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(nil).Once()

		res := f.uc.DispatchPlain(ctx, entity.PlainEmailRequest{To: "a@b.com"})
		require.True(t, res.Succeeded, res.Detail)
		require.Error(t, ctx.Err())
	}
}

func TestDispatch_PoolClosed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	require.NoError(t, f.pool.Close())

	res := f.uc.DispatchPlain(context.Background(), entity.PlainEmailRequest{To: "a@b.com"})
	assert.Equal(t, entity.KindUnexpected, res.Kind)
	assert.Contains(t, res.Detail, goroutine.ErrPoolClosed.Error())
	f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatch_ConcurrentIsolation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	const n = 8
	f.transport.On("Send", mock.Anything, mock.MatchedBy(func(env entity.Envelope) bool {
		return env.To == "fail@b.com"
	})).Return(connectionFailure())
	f.transport.On("Send", mock.Anything, mock.Anything).Return(nil)

	results := make([]entity.DispatchResult, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			to := fmt.Sprintf("user%d@b.com", i)
			if i == 3 {
				to = "fail@b.com"
			}
			results[i] = f.uc.DispatchPlain(context.Background(), entity.PlainEmailRequest{To: to})
		})
	}
	wg.Wait()

	ids := map[int64]struct{}{}
	for i, res := range results {
		ids[res.ID] = struct{}{}
		if i == 3 {
			assert.Equal(t, entity.KindTransportConnection, res.Kind)
			continue
		}
		assert.True(t, res.Succeeded, "request %d", i)
	}
	assert.Len(t, ids, n)
}

func TestPreview(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.renderer.On("Render", mock.Anything, "verification-code", mock.Anything).
		Return(entity.RenderedMessage{IsHTML: true, Body: "<p>123</p>"}, nil).Once()

	msg, err := f.uc.Preview(context.Background(), entity.TemplatedEmailRequest{To: "a@b.com", VerificationCode: "123"}, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>123</p>", msg.Body)

	_, err = f.uc.Preview(context.Background(), entity.TemplatedEmailRequest{To: "a@b.com"}, "")
	assert.Equal(t, entity.KindValidation, entity.KindOf(err))
	f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
