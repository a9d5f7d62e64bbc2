package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/mailbite/internal/email/entity"
	"github.com/shandysiswandi/mailbite/internal/pkg/mail"
)

type mockMail struct {
	mock.Mock
}

func (m *mockMail) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMail) Close() error {
	return nil
}

func TestTransport_SendBodies(t *testing.T) {
	t.Parallel()

	client := &mockMail{}
	client.On("Send", mock.Anything, mail.Message{
		From: "noreply@mailbite.dev", To: "a@b.com", Subject: "", TextBody: "",
	}).Return(nil).Once()
	client.On("Send", mock.Anything, mail.Message{
		From: "noreply@mailbite.dev", To: "a@b.com", Subject: "Code", HTMLBody: "<p>1</p>",
	}).Return(nil).Once()

	tr := New(client, "noreply@mailbite.dev", nil)
	ctx := context.Background()

	require.NoError(t, tr.Send(ctx, entity.Envelope{To: "a@b.com"}))
	require.NoError(t, tr.Send(ctx, entity.Envelope{
		To: "a@b.com", Subject: "Code", Message: entity.RenderedMessage{IsHTML: true, Body: "<p>1</p>"},
	}))
	client.AssertExpectations(t)
}

func TestTransport_MalformedNeverReachesDriver(t *testing.T) {
	t.Parallel()

	client := &mockMail{}
	tr := New(client, "noreply@mailbite.dev", nil)

	err := tr.Send(context.Background(), entity.Envelope{To: "not an address"})
	require.Error(t, err)
	assert.Equal(t, entity.KindTransportFormat, entity.KindOf(err))
	assert.ErrorIs(t, err, mail.ErrMalformedMessage)
	client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestTransport_DriverFailure(t *testing.T) {
	t.Parallel()

	client := &mockMail{}
	client.On("Send", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: smtp: %w", mail.ErrDelivery, errors.New("connection refused"))).Once()

	err := New(client, "noreply@mailbite.dev", nil).Send(context.Background(), entity.Envelope{To: "a@b.com"})
	require.Error(t, err)
	assert.Equal(t, entity.KindTransportConnection, entity.KindOf(err))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want entity.ErrorKind
	}{
		{name: "nil", err: nil, want: entity.KindNone},
		{name: "malformed", err: fmt.Errorf("x: %w", mail.ErrMalformedMessage), want: entity.KindTransportFormat},
		{name: "delivery", err: mail.ErrDelivery, want: entity.KindTransportConnection},
		{name: "net op", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, want: entity.KindTransportConnection},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "smtp.invalid"}, want: entity.KindTransportConnection},
		{name: "smtp reply", err: &textproto.Error{Code: 535, Msg: "auth failed"}, want: entity.KindTransportConnection},
		{name: "other", err: errors.New("boom"), want: entity.KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
