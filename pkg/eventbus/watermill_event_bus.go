package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/vislzr/pkg/events"
)

type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger

	mu            sync.RWMutex
	subscriptions map[events.EventType][]EventHandler
}

func NewWatermillEventBus(logger *slog.Logger, pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		logger:        logger.With("module", "eventbus"),
		subscriptions: make(map[events.EventType][]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.GetType(), err)
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))
	msg.SetContext(ctx)

	err = eb.publisher.Publish(events.Topic, msg)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.GetType(), err)
	}

	return nil
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.Topic, err)
	}

	go func() {
		for msg := range messages {
			eb.dispatch(ctx, msg)
		}
	}()

	return nil
}

func (eb *WatermillEventBus) dispatch(ctx context.Context, msg *message.Message) {
	eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

	eb.mu.RLock()
	handlers := eb.subscriptions[eventType]
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		msg.Ack()

		return
	}

	event, err := decode(eventType, msg.Payload)
	if err != nil {
		// Redelivery cannot fix a payload we do not understand.
		eb.logger.WarnContext(ctx, "Dropping undecodable event", "event_type", eventType, "message_id", msg.UUID, "error", err)
		msg.Ack()

		return
	}

	for _, handler := range handlers {
		err := handler(ctx, event)
		if err != nil {
			eb.logger.ErrorContext(ctx, "Event handler failed", "event_type", eventType, "message_id", msg.UUID, "error", err)
			msg.Nack()

			return
		}
	}

	msg.Ack()
}

func decode(eventType events.EventType, payload []byte) (any, error) {
	var event any

	switch eventType {
	case events.GraphChangedEvent:
		event = &events.GraphChanged{}
	case events.ActionExecutedEvent:
		event = &events.ActionExecuted{}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	err := json.Unmarshal(payload, event)
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	if handler == nil {
		return errors.New("event handler is nil")
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscriptions[eventType] = append(eb.subscriptions[eventType], handler)

	return nil
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	return eb.subscriber.Close()
}
