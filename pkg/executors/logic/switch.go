package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/expression"
	"github.com/flowbotio/flowbot/pkg/models"
)

type switchConfig struct {
	Expression string `mapstructure:"expression"`
}

// Switch evaluates an expression and outputs {case: <value>} for the engine
// to match against outgoing edge selectors.
type Switch struct {
	eval *expression.Evaluator
}

func NewSwitch(eval *expression.Evaluator) *Switch {
	return &Switch{eval: eval}
}

func (s *Switch) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config switchConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Expression == "" {
		return nil, errors.New("missing required field 'expression'")
	}

	result, err := s.eval.Eval(config.Expression, expression.Env(input, execCtx))
	if err != nil {
		return nil, err
	}

	return map[string]any{"case": fmt.Sprintf("%v", result)}, nil
}
