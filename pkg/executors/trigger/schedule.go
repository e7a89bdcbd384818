package trigger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/robfig/cron/v3"

	"github.com/flowbotio/flowbot/pkg/models"
)

type scheduleConfig struct {
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// Schedule validates its cron expression and reports the next planned run
// alongside the payload. A broken expression fails the execution up front
// instead of surfacing later in the dispatcher.
type Schedule struct {
	parser cron.Parser
}

func NewSchedule() *Schedule {
	return &Schedule{
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

func (s *Schedule) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config scheduleConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Cron == "" {
		return nil, errors.New("missing required field 'cron'")
	}

	schedule, err := s.parser.Parse(config.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", config.Cron, err)
	}

	location := time.UTC

	if config.Timezone != "" {
		location, err = time.LoadLocation(config.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", config.Timezone, err)
		}
	}

	now := time.Now().In(location)

	return map[string]any{
		"trigger":     strings.TrimPrefix(node.Type, models.TriggerPrefix),
		"payload":     input,
		"cron":        config.Cron,
		"next_run":    schedule.Next(now).Format(time.RFC3339),
		"received_at": now.UTC().Format(time.RFC3339),
	}, nil
}
