package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type sendEmailConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	To       string `mapstructure:"to"`
	Subject  string `mapstructure:"subject"`
	Template string `mapstructure:"template"`
}

// SendEmail hands an email request to the delivery collaborator. Rendering
// and delivery are the collaborator's responsibility.
type SendEmail struct {
	client *resty.Client
}

func NewSendEmail(client *resty.Client) *SendEmail {
	return &SendEmail{client: client}
}

func (s *SendEmail) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config sendEmailConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Endpoint == "" || config.To == "" {
		return nil, errors.New("missing required fields 'endpoint' and 'to'")
	}

	return postEffect(ctx, s.client, config.Endpoint, map[string]any{
		"to":              config.To,
		"subject":         config.Subject,
		"template":        config.Template,
		"data":            input,
		"organization_id": execCtx.OrganizationID,
	})
}

// postEffect delivers a side-effect payload to a collaborator endpoint and
// normalizes the response.
func postEffect(ctx context.Context, client *resty.Client, endpoint string, payload map[string]any) (any, error) {
	response, err := client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}

	if response.IsError() {
		return nil, fmt.Errorf("request to %s returned status %d", endpoint, response.StatusCode())
	}

	return map[string]any{
		"status_code": response.StatusCode(),
		"result":      decodeBody(response),
	}, nil
}
