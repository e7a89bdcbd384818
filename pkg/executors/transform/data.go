// Package transform implements the pure data-reshaping node executors.
package transform

import (
	"context"
	"errors"

	"github.com/Jeffail/gabs/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type dataConfig struct {
	Mappings map[string]string `mapstructure:"mappings"`
}

// Data reshapes its input into a new object. Each mapping entry copies the
// value at a dot-separated source path of the input to a target path of the
// output; a missing source path yields null at the target.
type Data struct{}

func NewData() *Data {
	return &Data{}
}

func (d *Data) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config dataConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if len(config.Mappings) == 0 {
		return nil, errors.New("missing required field 'mappings'")
	}

	source := gabs.Wrap(input)
	output := gabs.New()

	for targetPath, sourcePath := range config.Mappings {
		value := source.Path(sourcePath)

		var data any
		if value != nil {
			data = value.Data()
		}

		if _, err := output.SetP(data, targetPath); err != nil {
			return nil, err
		}
	}

	return output.Data(), nil
}
