package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	nsq "github.com/nsqio/go-nsq"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestDeliver_AlwaysAcks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler Handler
		wantErr string
	}{
		{"success", func(context.Context, Message) error { return nil }, ""},
		{"handler error", func(context.Context, Message) error { return errors.New("smtp down") }, "smtp down"},
		{"handler panic", func(context.Context, Message) error { panic("boom") }, "panic in test handler: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			acked := 0
			err := deliver(context.Background(), "test", Message{Source: "email"}, tt.handler, func() error {
				acked++
				return nil
			})

			require.Equal(t, 1, acked)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDeliver_AckFailure(t *testing.T) {
	t.Parallel()

	ackErr := errors.New("conn reset")
	err := deliver(context.Background(), "test", Message{}, func(context.Context, Message) error { return nil },
		func() error { return ackErr })
	require.ErrorIs(t, err, ackErr)
}

func TestConsumeOptions(t *testing.T) {
	t.Parallel()

	co := newConsumeOptions(nil)
	require.Equal(t, 1, co.concurrency)

	co = newConsumeOptions(
		WithConcurrency(4),
		WithGroup("g"),
		WithChannel("c"),
		WithQueueGroup("q"),
		WithSubscription("s"),
		WithMaxInFlight(10),
	)
	require.Equal(t, consumeOptions{
		concurrency:  4,
		group:        "g",
		channel:      "c",
		queueGroup:   "q",
		subscription: "s",
		maxInFlight:  10,
	}, co)

	co = newConsumeOptions(WithName("mailbite-email"), WithGroup("override"))
	require.Equal(t, "override", co.group)
	require.Equal(t, "mailbite-email", co.channel)
	require.Equal(t, "mailbite-email", co.queueGroup)
	require.Equal(t, "mailbite-email", co.subscription)
}

func TestMessageConversion(t *testing.T) {
	t.Parallel()

	nm := nats.NewMsg("email.commands")
	nm.Data = []byte(`{}`)
	nm.Header.Set("cID", "abc")
	got := natsToMessage(nm)
	require.Equal(t, "email.commands", got.Source)
	require.Equal(t, "abc", got.Header("cID"))

	km := kafkaToMessage(kafka.Message{
		Topic:     "email",
		Partition: 2,
		Offset:    7,
		Value:     []byte(`{}`),
		Headers:   []kafka.Header{{Key: "cID", Value: []byte("k1")}, {Key: "cID", Value: []byte("k2")}},
		Time:      time.Unix(10, 0),
	})
	require.Equal(t, "email/2/7", km.ID)
	require.Equal(t, "k1", km.Header("cID"))
	require.Equal(t, time.Unix(10, 0), km.Timestamp)

	id := nsq.MessageID{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}
	sm := nsqToMessage("email", nsq.NewMessage(id, []byte("x")))
	require.Equal(t, "0123456789abcdef", sm.ID)
	require.Equal(t, "email", sm.Source)
	require.Empty(t, sm.Header("cID"))
}

func TestConstructorsValidate(t *testing.T) {
	t.Parallel()

	_, err := NewNATS(NATSConfig{})
	require.ErrorIs(t, err, ErrNATSURLRequired)

	_, err = NewKafka(KafkaConfig{})
	require.ErrorIs(t, err, ErrKafkaBrokersRequired)

	_, err = NewNSQ(NSQConfig{})
	require.ErrorIs(t, err, ErrNSQAddrsRequired)

	_, err = NewPubSub(context.Background(), PubSubConfig{})
	require.ErrorIs(t, err, ErrPubSubProjectIDRequired)

	_, err = NewFromDriver(context.Background(), "carrier-pigeon", FactoryOptions{})
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestConsumeValidation(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, Message) error { return nil }

	k, err := NewKafka(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	require.ErrorIs(t, k.Consume(context.Background(), "", noop), ErrKafkaTopicRequired)
	require.ErrorIs(t, k.Consume(context.Background(), "email", nil), ErrHandlerRequired)
	require.ErrorIs(t, k.Consume(context.Background(), "email", noop), ErrKafkaGroupRequired)
	require.NoError(t, k.Close())

	n, err := NewFromDriver(context.Background(), "NSQ", FactoryOptions{NSQ: NSQConfig{NSQDAddrs: []string{"localhost:4150"}}})
	require.NoError(t, err)
	require.ErrorIs(t, n.Consume(context.Background(), "", noop), ErrNSQTopicRequired)
	require.ErrorIs(t, n.Consume(context.Background(), "email", noop), ErrNSQChannelRequired)
	require.NoError(t, n.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, k.Consume(ctx, "email", noop), context.Canceled)
}
