package mocks

import (
	"context"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/stretchr/testify/mock"
)

// MockEventBus is a mock implementation of eventbus.EventBus interface.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	args := m.Called(eventType, handler)

	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}

func (m *MockEventBus) GenerateID() string {
	args := m.Called()

	return args.String(0)
}

// GraphChanged matches a GraphChanged event for projectID with the given reason.
func GraphChanged(projectID string, reason events.Reason) any {
	return mock.MatchedBy(func(e eventbus.Event) bool {
		changed, ok := e.(events.GraphChanged)

		return ok && changed.ProjectID == projectID && changed.Reason == reason
	})
}

// ActionExecuted matches an ActionExecuted event carrying status.
func ActionExecuted(projectID string, status string) any {
	return mock.MatchedBy(func(e eventbus.Event) bool {
		executed, ok := e.(events.ActionExecuted)

		return ok && executed.ProjectID == projectID && string(executed.Result.Status) == status
	})
}
