// Package logic implements the control-flow node executors. Condition,
// switch and parallel only produce routing values; the branching itself is
// interpreted by the engine.
package logic

import (
	"context"
	"errors"

	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/expression"
	"github.com/flowbotio/flowbot/pkg/models"
)

type conditionConfig struct {
	Expression string `mapstructure:"expression"`
}

// Condition evaluates a boolean expression over the execution state. The
// engine routes on the resulting true/false output.
type Condition struct {
	eval *expression.Evaluator
}

func NewCondition(eval *expression.Evaluator) *Condition {
	return &Condition{eval: eval}
}

func (c *Condition) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config conditionConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Expression == "" {
		return nil, errors.New("missing required field 'expression'")
	}

	result, err := c.eval.Eval(config.Expression, expression.Env(input, execCtx))
	if err != nil {
		return nil, err
	}

	return expression.Truthy(result), nil
}
