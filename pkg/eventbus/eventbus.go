// Package eventbus publishes execution lifecycle events over watermill. The
// in-process gochannel transport serves single-binary deployments and tests;
// Kafka serves multi-service deployments.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/flowbotio/flowbot/pkg/events"
)

// EventBus implements protocol.Publisher over a watermill publisher.
type EventBus struct {
	publisher message.Publisher
}

func New(publisher message.Publisher) *EventBus {
	return &EventBus{publisher: publisher}
}

// NewGoChannel builds an in-process bus. Events published before any
// subscriber attaches are dropped by the transport.
func NewGoChannel(logger *slog.Logger) *EventBus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))

	return New(pubSub)
}

// Publish encodes the event as JSON and publishes it on the executions
// topic. The key and event type travel as message metadata.
func (b *EventBus) Publish(_ context.Context, key string, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.GetType(), err)
	}

	msg := message.NewMessage(watermill.NewULID(), payload)
	msg.Metadata.Set(events.EventKeyMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	if err := b.publisher.Publish(events.Topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.GetType(), err)
	}

	return nil
}

func (b *EventBus) Close() error {
	return b.publisher.Close()
}
