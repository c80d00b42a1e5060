package kafka_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/vislzr/pkg/channels/kafka"
	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestCreateChannel_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), brokers, "vislzr-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(logger, pub, sub)

	t.Cleanup(func() {
		assert.NoError(t, bus.Close())
	})

	received := make(chan *events.GraphChanged, 16)

	require.NoError(t, bus.Handle(events.GraphChangedEvent, func(_ context.Context, event any) error {
		select {
		case received <- event.(*events.GraphChanged):
		default:
		}

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	// The consumer group joins asynchronously, so keep publishing until one
	// message makes it through.
	var got *events.GraphChanged

	require.Eventually(t, func() bool {
		if err := bus.Publish(ctx, "p1", events.NewNodeChanged("p1", events.ReasonNodeAdded, "n1")); err != nil {
			return false
		}

		select {
		case got = <-received:
			return true
		case <-time.After(time.Second):
			return false
		}
	}, 2*time.Minute, 100*time.Millisecond)

	assert.Equal(t, "p1", got.ProjectID)
	assert.Equal(t, events.ReasonNodeAdded, got.Reason)
}
