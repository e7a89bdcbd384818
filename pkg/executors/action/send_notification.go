package action

import (
	"context"
	"errors"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type sendNotificationConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Channel  string `mapstructure:"channel"`
	Message  string `mapstructure:"message"`
}

// SendNotification pushes a message onto the notification collaborator.
type SendNotification struct {
	client *resty.Client
}

func NewSendNotification(client *resty.Client) *SendNotification {
	return &SendNotification{client: client}
}

func (s *SendNotification) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config sendNotificationConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Endpoint == "" {
		return nil, errors.New("missing required field 'endpoint'")
	}

	return postEffect(ctx, s.client, config.Endpoint, map[string]any{
		"channel":         config.Channel,
		"message":         config.Message,
		"data":            input,
		"organization_id": execCtx.OrganizationID,
		"user_id":         execCtx.UserID,
	})
}
