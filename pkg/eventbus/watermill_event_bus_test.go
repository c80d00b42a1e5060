package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/vislzr/pkg/channels/gochannel"
	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	pub, sub := gochannel.CreateChannel(watermill.NewSlogLogger(logger))

	bus := eventbus.NewWatermillEventBus(logger, pub, sub)

	t.Cleanup(func() {
		assert.NoError(t, bus.Close())
	})

	return bus
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for event")
	}

	var zero T

	return zero
}

func TestWatermillEventBus_DeliversDecodedEvents(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)

	changed := make(chan *events.GraphChanged, 1)
	executed := make(chan *events.ActionExecuted, 1)

	require.NoError(t, bus.Handle(events.GraphChangedEvent, func(_ context.Context, event any) error {
		changed <- event.(*events.GraphChanged)

		return nil
	}))
	require.NoError(t, bus.Handle(events.ActionExecutedEvent, func(_ context.Context, event any) error {
		executed <- event.(*events.ActionExecuted)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "p1", events.NewNodeChanged("p1", events.ReasonNodeAdded, "n1")))

	got := receive(t, changed)
	assert.Equal(t, events.ReasonNodeAdded, got.Reason)
	assert.Equal(t, "n1", got.NodeID)
	assert.Equal(t, "p1", got.ProjectID)

	result := models.ExecutionResult{Status: models.ExecutionStatusSuccess, ActionID: "mark-complete", NodeID: "n1", Result: map[string]any{}}
	require.NoError(t, bus.Publish(ctx, "p1", events.NewActionExecuted("p1", result)))

	gotExecuted := receive(t, executed)
	assert.Equal(t, "mark-complete", gotExecuted.Result.ActionID)
}

func TestWatermillEventBus_FansOutToEveryHandler(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)

	calls := make(chan string, 2)

	for _, name := range []string{"first", "second"} {
		require.NoError(t, bus.Handle(events.GraphChangedEvent, func(_ context.Context, _ any) error {
			calls <- name

			return nil
		}))
	}

	require.NoError(t, bus.Subscribe(ctx))
	require.NoError(t, bus.Publish(ctx, "p1", events.NewGraphReplaced("p1")))

	assert.ElementsMatch(t, []string{"first", "second"}, []string{receive(t, calls), receive(t, calls)})
}

func TestWatermillEventBus_RedeliversOnHandlerError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)

	attempts := make(chan int, 4)
	count := 0

	require.NoError(t, bus.Handle(events.GraphChangedEvent, func(_ context.Context, _ any) error {
		count++
		attempts <- count

		if count == 1 {
			return errors.New("temporary")
		}

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))
	require.NoError(t, bus.Publish(ctx, "p1", events.NewGraphReplaced("p1")))

	assert.Equal(t, 1, receive(t, attempts))
	assert.Equal(t, 2, receive(t, attempts))
}

func TestWatermillEventBus_Handle_RejectsNil(t *testing.T) {
	t.Parallel()

	assert.Error(t, newBus(t).Handle(events.GraphChangedEvent, nil))
}

func TestWatermillEventBus_PublishSetsMetadata(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	pub, sub := gochannel.CreateChannel(watermill.NewSlogLogger(logger))

	raw, err := sub.Subscribe(ctx, events.Topic)
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(logger, pub, sub)
	defer func() { _ = bus.Close() }()

	require.NoError(t, bus.Publish(ctx, "project-7", events.NewGraphReplaced("project-7")))

	var msg *message.Message

	select {
	case msg = <-raw:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for message")
	}

	msg.Ack()
	assert.Equal(t, "project-7", msg.Metadata.Get(events.EventMetadataKey))
	assert.Equal(t, string(events.GraphChangedEvent), msg.Metadata.Get(events.EventTypeMetadataKey))
}
