package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type aiResponseConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Model       string  `mapstructure:"model"`
	Prompt      string  `mapstructure:"prompt"`
	Temperature float64 `mapstructure:"temperature"`
	APIKey      string  `mapstructure:"api_key"`
}

// AIResponse sends a chat-completion request to a configured LLM endpoint.
// The prompt is the configured template; the node input rides along as
// context for the assistant.
type AIResponse struct {
	client *resty.Client
}

func NewAIResponse(client *resty.Client) *AIResponse {
	return &AIResponse{client: client}
}

func (a *AIResponse) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config aiResponseConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Endpoint == "" || config.Model == "" {
		return nil, errors.New("missing required fields 'endpoint' and 'model'")
	}

	payload := map[string]any{
		"model":       config.Model,
		"temperature": config.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": config.Prompt},
			{"role": "user", "content": fmt.Sprintf("%v", input)},
		},
	}

	request := a.client.R().
		SetContext(ctx).
		SetBody(payload)

	if config.APIKey != "" {
		request.SetAuthToken(config.APIKey)
	}

	response, err := request.Post(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("ai completion request failed: %w", err)
	}

	if response.IsError() {
		return nil, fmt.Errorf("ai completion request returned status %d", response.StatusCode())
	}

	return map[string]any{
		"model":    config.Model,
		"response": decodeBody(response),
	}, nil
}
