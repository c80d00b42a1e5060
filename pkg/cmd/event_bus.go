package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/vislzr/pkg/channels/gochannel"
	"github.com/dukex/vislzr/pkg/channels/kafka"
	"github.com/dukex/vislzr/pkg/eventbus"
)

const serviceName = "vislzr"

// NewEventBus creates the event bus for provider ("gochannel" or "kafka").
// brokers is only read by kafka.
// nolint:ireturn // callers depend on the interface
func NewEventBus(provider, brokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "gochannel":
		pub, sub := gochannel.CreateChannel(wmLogger)

		return eventbus.NewWatermillEventBus(logger, pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, kafka.ParseBrokers(brokers), serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(logger, pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
