package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowbotio/flowbot/pkg/eventbus"
)

// NewEventBus builds an event bus from a provider string: "gochannel" for
// in-process delivery or "kafka://broker1,broker2".
func NewEventBus(logger *slog.Logger, provider string) (*eventbus.EventBus, error) {
	switch {
	case provider == "" || provider == "gochannel":
		return eventbus.NewGoChannel(logger), nil
	case strings.HasPrefix(provider, "kafka://"):
		brokers := strings.Split(strings.TrimPrefix(provider, "kafka://"), ",")

		return eventbus.NewKafka(logger, brokers)
	default:
		return nil, fmt.Errorf("unsupported event bus provider %q", provider)
	}
}
