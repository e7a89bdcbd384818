package protocol

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/events"
)

// Publisher pushes execution lifecycle events to the activity feed and other
// downstream consumers. Publish errors must be surfaced to the caller; the
// engine logs them instead of discarding the rejection.
type Publisher interface {
	Publish(ctx context.Context, key string, event events.Event) error
	Close() error
}
