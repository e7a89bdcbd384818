package action

import (
	"context"
	"errors"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type createTaskConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Title    string `mapstructure:"title"`
	Board    string `mapstructure:"board"`
	Assignee string `mapstructure:"assignee"`
}

// CreateTask files a task with the task-board collaborator.
type CreateTask struct {
	client *resty.Client
}

func NewCreateTask(client *resty.Client) *CreateTask {
	return &CreateTask{client: client}
}

func (c *CreateTask) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config createTaskConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Endpoint == "" || config.Title == "" {
		return nil, errors.New("missing required fields 'endpoint' and 'title'")
	}

	return postEffect(ctx, c.client, config.Endpoint, map[string]any{
		"title":           config.Title,
		"board":           config.Board,
		"assignee":        config.Assignee,
		"data":            input,
		"organization_id": execCtx.OrganizationID,
		"created_by":      execCtx.UserID,
	})
}
