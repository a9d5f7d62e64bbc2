package messaging

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

const (
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries per-broker settings for the email command consumer.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

type constructor func(context.Context, FactoryOptions) (Consumer, error)

var constructors = map[string]constructor{
	DriverNSQ:   func(_ context.Context, o FactoryOptions) (Consumer, error) { return NewNSQ(o.NSQ) },
	DriverKafka: func(_ context.Context, o FactoryOptions) (Consumer, error) { return NewKafka(o.Kafka) },
	DriverNATS:  func(_ context.Context, o FactoryOptions) (Consumer, error) { return NewNATS(o.NATS) },
	DriverGooglePubSub: func(ctx context.Context, o FactoryOptions) (Consumer, error) {
		return NewPubSub(ctx, o.PubSub)
	},
}

// Drivers lists the accepted broker names, sorted.
func Drivers() []string {
	names := lo.Keys(constructors)
	slices.Sort(names)
	return names
}

// NewFromDriver builds the consumer for driver.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Consumer, error) {
	build, ok := constructors[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}
	return build(ctx, opts)
}
