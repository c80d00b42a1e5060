// Package eventbus carries graph change notifications between the API and its listeners.
package eventbus

import (
	"context"

	"github.com/dukex/vislzr/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	// Publish sends event keyed by key. Events with the same key keep their order.
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	// Handle adds handler for eventType. Call it before Subscribe.
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event, e.g. *events.GraphChanged.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
