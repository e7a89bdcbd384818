// Package action implements the side-effecting node executors. Side effects
// are not idempotent and are never retried by the engine; any retry policy
// lives inside the executor's own HTTP client.
package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

const defaultTimeout = 30 * time.Second

type apiCallConfig struct {
	URL            string            `mapstructure:"url"`
	Method         string            `mapstructure:"method"`
	Headers        map[string]string `mapstructure:"headers"`
	Query          map[string]string `mapstructure:"query"`
	Body           map[string]any    `mapstructure:"body"`
	TimeoutSeconds float64           `mapstructure:"timeout_seconds"`
	MaxRetries     int               `mapstructure:"max_retries"`
}

// APICall performs an HTTP request against an arbitrary endpoint. When no
// body is configured, a non-GET request sends the node input.
type APICall struct {
	client *resty.Client
}

func NewAPICall(client *resty.Client) *APICall {
	return &APICall{client: client}
}

func (a *APICall) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config apiCallConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.URL == "" {
		return nil, errors.New("missing required field 'url'")
	}

	if config.Method == "" {
		config.Method = "GET"
	}

	timeout := defaultTimeout
	if config.TimeoutSeconds > 0 {
		timeout = time.Duration(config.TimeoutSeconds * float64(time.Second))
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request := a.client.R().
		SetContext(callCtx).
		SetHeaders(config.Headers).
		SetQueryParams(config.Query)

	var body any

	switch {
	case config.Body != nil:
		body = config.Body
	case config.Method != "GET":
		body = input
	}

	if body != nil {
		request.SetBody(body)
	}

	// Transport-level retries stay inside the executor; the engine never
	// retries side effects.
	var response *resty.Response

	var err error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		response, err = request.Execute(config.Method, config.URL)
		if err == nil {
			break
		}

		if callCtx.Err() != nil {
			break
		}
	}

	if err != nil {
		return nil, fmt.Errorf("api call to %s failed: %w", config.URL, err)
	}

	return map[string]any{
		"status_code": response.StatusCode(),
		"body":        decodeBody(response),
		"is_error":    response.IsError(),
	}, nil
}
