// Package persistence defines the storage contract shared by the engine's
// flow and execution stores.
package persistence

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

// Persistence is the full storage surface a backend must provide. The engine
// itself depends only on the narrower protocol interfaces; the API service
// and tooling use the rest.
type Persistence interface {
	protocol.FlowLoader
	protocol.Lifecycle

	SaveFlow(ctx context.Context, agentID string, flow *models.BotFlow) error
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
