// Package trigger implements the entry-point node executors. At execution
// time a trigger only shapes the initial payload; listening for webhooks,
// schedules and provider events is the dispatch collaborator's job.
package trigger

import (
	"context"
	"strings"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Trigger echoes the initial input enriched with trigger metadata.
type Trigger struct{}

func New() *Trigger {
	return &Trigger{}
}

func (t *Trigger) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	return map[string]any{
		"trigger":     strings.TrimPrefix(node.Type, models.TriggerPrefix),
		"payload":     input,
		"received_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}
