package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var (
	// ErrNSQTopicRequired is returned when the topic is empty.
	ErrNSQTopicRequired = errors.New("messaging: nsq topic is required")
	// ErrNSQChannelRequired is returned when no channel option is given.
	ErrNSQChannelRequired = errors.New("messaging: nsq channel is required")
	// ErrNSQAddrsRequired is returned when neither nsqd nor lookupd addresses are set.
	ErrNSQAddrsRequired = errors.New("messaging: nsq nsqd/lookupd addresses are required")
)

// NSQConfig configures the NSQ implementation.
type NSQConfig struct {
	// NSQDAddrs are direct nsqd TCP addresses.
	NSQDAddrs []string
	// LookupdAddrs are nsqlookupd HTTP addresses. They win over NSQDAddrs.
	LookupdAddrs []string
	// Config tunes the consumer. Nil uses nsq.NewConfig.
	Config *nsq.Config
}

// NSQ is a Consumer backed by go-nsq.
type NSQ struct {
	nsqdAddrs    []string
	lookupdAddrs []string
	config       *nsq.Config

	mu        sync.Mutex
	consumers []*nsq.Consumer
	closed    bool
}

// NewNSQ validates cfg. Connections are opened per Consume call.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if len(cfg.NSQDAddrs) == 0 && len(cfg.LookupdAddrs) == 0 {
		return nil, ErrNSQAddrsRequired
	}

	ccfg := cfg.Config
	if ccfg == nil {
		ccfg = nsq.NewConfig()
	}

	return &NSQ{
		nsqdAddrs:    append([]string{}, cfg.NSQDAddrs...),
		lookupdAddrs: append([]string{}, cfg.LookupdAddrs...),
		config:       ccfg,
	}, nil
}

// Close stops every consumer and waits for them to finish.
func (n *NSQ) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	consumers := n.consumers
	n.consumers = nil
	n.mu.Unlock()

	for _, c := range consumers {
		stopNSQConsumer(c)
	}
	return nil
}

// Consume reads topic on the configured channel until ctx is done.
func (n *NSQ) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrNSQTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	if co.channel == "" {
		return ErrNSQChannelRequired
	}

	ccfg := *n.config
	ccfg.MaxInFlight = max(co.maxInFlight, co.concurrency, ccfg.MaxInFlight)

	consumer, err := nsq.NewConsumer(source, co.channel, &ccfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)

	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()
		//nolint:errcheck // logged by deliver
		_ = deliver(ctx, "nsq", nsqToMessage(source, m), handler, func() error {
			m.Finish()
			return nil
		})
		return nil
	}), co.concurrency)

	if err := n.track(consumer); err != nil {
		stopNSQConsumer(consumer)
		return err
	}

	if len(n.lookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.lookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.nsqdAddrs)
	}
	if err != nil {
		stopNSQConsumer(consumer)
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		stopNSQConsumer(consumer)
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

func (n *NSQ) track(c *nsq.Consumer) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return io.ErrClosedPipe
	}
	n.consumers = append(n.consumers, c)
	return nil
}

func nsqToMessage(topic string, m *nsq.Message) Message {
	return Message{
		ID:        string(m.ID[:]),
		Source:    topic,
		Body:      m.Body,
		Timestamp: time.Unix(0, m.Timestamp),
	}
}

func stopNSQConsumer(c *nsq.Consumer) {
	c.Stop()
	<-c.StopChan
}
