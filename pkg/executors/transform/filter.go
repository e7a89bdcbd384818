package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/expression"
	"github.com/flowbotio/flowbot/pkg/models"
)

type filterConfig struct {
	Expression string `mapstructure:"expression"`
}

// Filter keeps the elements of a slice input for which the configured
// predicate is truthy. The predicate sees each element as "item" alongside
// its index.
type Filter struct {
	eval *expression.Evaluator
}

func NewFilter(eval *expression.Evaluator) *Filter {
	return &Filter{eval: eval}
}

func (f *Filter) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config filterConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Expression == "" {
		return nil, errors.New("missing required field 'expression'")
	}

	items, ok := input.([]any)
	if !ok {
		return nil, fmt.Errorf("transform_filter expects a list input, got %T", input)
	}

	kept := make([]any, 0, len(items))

	for i, item := range items {
		env := expression.Env(input, execCtx)
		env["item"] = item
		env["index"] = i

		result, err := f.eval.Eval(config.Expression, env)
		if err != nil {
			return nil, err
		}

		if expression.Truthy(result) {
			kept = append(kept, item)
		}
	}

	return kept, nil
}
