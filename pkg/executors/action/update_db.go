package action

import (
	"context"
	"errors"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type updateDBConfig struct {
	Endpoint string         `mapstructure:"endpoint"`
	Table    string         `mapstructure:"table"`
	Match    map[string]any `mapstructure:"match"`
	Values   map[string]any `mapstructure:"values"`
}

// UpdateDB sends a record update to the hosted database collaborator. The
// engine never talks to the tenant database directly.
type UpdateDB struct {
	client *resty.Client
}

func NewUpdateDB(client *resty.Client) *UpdateDB {
	return &UpdateDB{client: client}
}

func (u *UpdateDB) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config updateDBConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Endpoint == "" || config.Table == "" {
		return nil, errors.New("missing required fields 'endpoint' and 'table'")
	}

	values := config.Values
	if values == nil {
		if asMap, ok := input.(map[string]any); ok {
			values = asMap
		}
	}

	return postEffect(ctx, u.client, config.Endpoint, map[string]any{
		"table":           config.Table,
		"match":           config.Match,
		"values":          values,
		"organization_id": execCtx.OrganizationID,
	})
}
