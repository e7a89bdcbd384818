// Package mocks provides testify mocks for the engine's collaborator
// interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/flowbotio/flowbot/pkg/events"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

// MockFlowLoader is a mock implementation of protocol.FlowLoader.
type MockFlowLoader struct {
	mock.Mock
}

func (m *MockFlowLoader) LoadFlow(ctx context.Context, agentID string) (*models.BotFlow, error) {
	args := m.Called(ctx, agentID)

	flow, _ := args.Get(0).(*models.BotFlow)

	return flow, args.Error(1)
}

// MockLifecycle is a mock implementation of protocol.Lifecycle.
type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) StartExecution(ctx context.Context, start protocol.StartExecution) (string, error) {
	args := m.Called(ctx, start)

	return args.String(0), args.Error(1)
}

func (m *MockLifecycle) LogNode(ctx context.Context, executionID string, entry models.NodeLogEntry) error {
	args := m.Called(ctx, executionID, entry)

	return args.Error(0)
}

func (m *MockLifecycle) CompleteExecution(ctx context.Context, executionID string, success bool, output any, errMsg string) error {
	args := m.Called(ctx, executionID, success, output, errMsg)

	return args.Error(0)
}

func (m *MockLifecycle) ExecutionStatus(ctx context.Context, executionID, organizationID string) (*models.Execution, error) {
	args := m.Called(ctx, executionID, organizationID)

	execution, _ := args.Get(0).(*models.Execution)

	return execution, args.Error(1)
}

// MockPublisher is a mock implementation of protocol.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event events.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()

	return args.Error(0)
}
