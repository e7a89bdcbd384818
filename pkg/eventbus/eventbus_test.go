package eventbus_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbotio/flowbot/pkg/eventbus"
	"github.com/flowbotio/flowbot/pkg/events"
)

func TestPublishCarriesMetadataAndPayload(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(slog.New(slog.DiscardHandler)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, events.Topic)
	require.NoError(t, err)

	bus := eventbus.New(pubSub)
	defer func() {
		require.NoError(t, bus.Close())
	}()

	event := events.ExecutionStarted{
		BaseEvent: events.BaseEvent{
			ID:             "evt-1",
			Type:           events.ExecutionStartedEvent,
			Timestamp:      time.Now().UTC(),
			AgentID:        "agent-1",
			OrganizationID: "org-1",
			ExecutionID:    "exec-1",
		},
		TriggeredBy: "webhook",
	}

	require.NoError(t, bus.Publish(ctx, "agent-1", event))

	select {
	case msg := <-messages:
		assert.Equal(t, "agent-1", msg.Metadata.Get(events.EventKeyMetadataKey))
		assert.Equal(t, string(events.ExecutionStartedEvent), msg.Metadata.Get(events.EventTypeMetadataKey))

		var decoded events.ExecutionStarted
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, "exec-1", decoded.ExecutionID)
		assert.Equal(t, "webhook", decoded.TriggeredBy)

		msg.Ack()
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}
