// Package expression evaluates configuration expressions against execution
// state. Logic and transform executors share it.
package expression

import (
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Evaluator compiles and runs expr-lang expressions.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Eval runs an expression against the given environment. Missing variables
// evaluate to nil instead of failing compilation, because node inputs are
// shaped by whatever the previous node produced.
func (e *Evaluator) Eval(expression string, env map[string]any) (any, error) {
	program, err := expr.Compile(expression, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", expression, err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression %q: %w", expression, err)
	}

	return result, nil
}

// Env builds the standard evaluation environment for a node: the incoming
// input, the execution variables and the outputs of previously executed
// nodes keyed by node id.
func Env(input any, execCtx *models.ExecutionContext) map[string]any {
	return map[string]any{
		"input":     input,
		"variables": execCtx.Variables,
		"nodes":     execCtx.NodeOutputs(),
	}
}

// Truthy converts an arbitrary evaluation result to a boolean.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}

		return v != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case nil:
		return false
	default:
		return false
	}
}
