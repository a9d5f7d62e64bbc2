package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/mailbite/internal/pkg/config"
	"github.com/shandysiswandi/mailbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/mailbite/internal/pkg/idempotency"
	"github.com/shandysiswandi/mailbite/internal/pkg/instrument"
	"github.com/shandysiswandi/mailbite/internal/pkg/messaging"
	"github.com/shandysiswandi/mailbite/internal/pkg/uid"
)

const defaultConsumerName = "mailbite-email"

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	consumer messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	idem idempotency.Idempotency,
	ins instrument.Instrumentation,
) {
	if consumer == nil || !cfg.GetBool("modules.email.consumer.enabled") {
		return
	}

	topic := cfg.GetString("modules.email.consumer.topic")
	name := cfg.GetString("modules.email.consumer.name")
	if name == "" {
		name = defaultConsumerName
	}

	handler := &MQHandler{uc: uc, uuid: uuid, idem: idem, ins: ins}

	routine.Go(ctx, name, func(pCtx context.Context) error {
		slog.InfoContext(ctx, "Running job for handling consumer", "consumer", name, "topic", topic)
		return consumer.Consume(pCtx,
			topic,
			handler.Dispatch,
			messaging.WithName(name),
			messaging.WithConcurrency(cfg.GetInt("modules.email.consumer.concurrency")),
			messaging.WithMaxInFlight(cfg.GetInt("modules.email.consumer.max_in_flight")),
		)
	})
}
