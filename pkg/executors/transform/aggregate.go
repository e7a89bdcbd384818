package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/flowbotio/flowbot/pkg/models"
)

type aggregateConfig struct {
	Operation string `mapstructure:"operation"`
	Field     string `mapstructure:"field"`
}

// Aggregate reduces a slice input to a single value. Numeric operations read
// the configured field from map elements, or the element itself when no
// field is set.
type Aggregate struct{}

func NewAggregate() *Aggregate {
	return &Aggregate{}
}

func (a *Aggregate) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	var config aggregateConfig
	if err := mapstructure.Decode(node.Config(), &config); err != nil {
		return nil, err
	}

	if config.Operation == "" {
		return nil, errors.New("missing required field 'operation'")
	}

	items, ok := input.([]any)
	if !ok {
		return nil, fmt.Errorf("transform_aggregate expects a list input, got %T", input)
	}

	switch config.Operation {
	case "count":
		return len(items), nil
	case "first":
		if len(items) == 0 {
			return nil, nil
		}

		return items[0], nil
	case "last":
		if len(items) == 0 {
			return nil, nil
		}

		return items[len(items)-1], nil
	case "sum", "avg", "min", "max":
		return a.numeric(config, items)
	default:
		return nil, fmt.Errorf("unsupported aggregate operation %q", config.Operation)
	}
}

func (a *Aggregate) numeric(config aggregateConfig, items []any) (any, error) {
	values := make([]float64, 0, len(items))

	for i, item := range items {
		value := item
		if config.Field != "" {
			element, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not an object, cannot read field %q", i, config.Field)
			}

			value = element[config.Field]
		}

		number, err := toFloat(value)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		values = append(values, number)
	}

	if len(values) == 0 {
		return nil, nil
	}

	switch config.Operation {
	case "sum":
		return sum(values), nil
	case "avg":
		return sum(values) / float64(len(values)), nil
	case "min":
		result := values[0]
		for _, v := range values[1:] {
			if v < result {
				result = v
			}
		}

		return result, nil
	default: // max
		result := values[0]
		for _, v := range values[1:] {
			if v > result {
				result = v
			}
		}

		return result, nil
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}

	return total
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", value, value)
	}
}
