package logic

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type delayConfig struct {
	Duration string  `mapstructure:"duration"`
	Seconds  float64 `mapstructure:"seconds"`
}

// Delay pauses the branch for a configured duration, honoring cancellation.
type Delay struct{}

func NewDelay() *Delay {
	return &Delay{}
}

func (d *Delay) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config delayConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	wait := time.Duration(config.Seconds * float64(time.Second))

	if config.Duration != "" {
		parsed, err := time.ParseDuration(config.Duration)
		if err != nil {
			return nil, err
		}

		wait = parsed
	}

	if wait <= 0 {
		return input, nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return input, nil
	}
}
