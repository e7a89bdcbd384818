package logic

import (
	"context"
	"errors"

	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/expression"
	"github.com/flowbotio/flowbot/pkg/models"
)

const maxLoopIterations = 1000

type loopConfig struct {
	Iterations int    `mapstructure:"iterations"`
	Expression string `mapstructure:"expression"`
}

// Loop runs a bounded number of iterations by unrolling inside the executor.
// Iteration never happens through graph revisitation; a revisited node is a
// no-op for the interpreter.
type Loop struct {
	eval *expression.Evaluator
}

func NewLoop(eval *expression.Evaluator) *Loop {
	return &Loop{eval: eval}
}

func (l *Loop) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config loopConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Iterations < 1 {
		return nil, errors.New("'iterations' must be at least 1")
	}

	if config.Iterations > maxLoopIterations {
		return nil, errors.New("'iterations' exceeds the allowed maximum")
	}

	outputs := make([]any, 0, config.Iterations)

	for i := range config.Iterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if config.Expression == "" {
			outputs = append(outputs, input)

			continue
		}

		env := expression.Env(input, execCtx)
		env["iteration"] = i

		result, err := l.eval.Eval(config.Expression, env)
		if err != nil {
			return nil, err
		}

		outputs = append(outputs, result)
	}

	return outputs, nil
}
