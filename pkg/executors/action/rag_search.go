package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type ragSearchConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Collection string `mapstructure:"collection"`
	Query      string `mapstructure:"query"`
	TopK       int    `mapstructure:"top_k"`
}

// RAGSearch queries the retrieval collaborator for documents related to the
// node input. Retrieval quality is the collaborator's concern.
type RAGSearch struct {
	client *resty.Client
}

func NewRAGSearch(client *resty.Client) *RAGSearch {
	return &RAGSearch{client: client}
}

func (r *RAGSearch) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config ragSearchConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Endpoint == "" || config.Collection == "" {
		return nil, errors.New("missing required fields 'endpoint' and 'collection'")
	}

	query := config.Query
	if query == "" {
		query = fmt.Sprintf("%v", input)
	}

	topK := config.TopK
	if topK <= 0 {
		topK = 5
	}

	response, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"collection":      config.Collection,
			"query":           query,
			"top_k":           topK,
			"organization_id": execCtx.OrganizationID,
		}).
		Post(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("rag search failed: %w", err)
	}

	if response.IsError() {
		return nil, fmt.Errorf("rag search returned status %d", response.StatusCode())
	}

	return decodeBody(response), nil
}
