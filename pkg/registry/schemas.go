package registry

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/flowbotio/flowbot/pkg/models"
)

// configSchemas holds the JSON schema for each built-in node type's config.
// Types without an entry accept any configuration.
var configSchemas = map[string]map[string]any{
	models.NodeTypeTriggerSchedule: {
		"type":     "object",
		"required": []any{"cron"},
		"properties": map[string]any{
			"cron":     map[string]any{"type": "string"},
			"timezone": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeActionAPICall: {
		"type":     "object",
		"required": []any{"url"},
		"properties": map[string]any{
			"url":             map[string]any{"type": "string"},
			"method":          map[string]any{"type": "string", "enum": []any{"GET", "POST", "PUT", "PATCH", "DELETE"}},
			"headers":         map[string]any{"type": "object"},
			"query":           map[string]any{"type": "object"},
			"body":            map[string]any{"type": "object"},
			"timeout_seconds": map[string]any{"type": "number", "minimum": 0},
			"max_retries":     map[string]any{"type": "number", "minimum": 0, "maximum": 10},
		},
	},
	models.NodeTypeActionAIResponse: {
		"type":     "object",
		"required": []any{"endpoint", "model"},
		"properties": map[string]any{
			"endpoint":    map[string]any{"type": "string"},
			"model":       map[string]any{"type": "string"},
			"prompt":      map[string]any{"type": "string"},
			"temperature": map[string]any{"type": "number"},
		},
	},
	models.NodeTypeActionRAGSearch: {
		"type":     "object",
		"required": []any{"endpoint", "collection"},
		"properties": map[string]any{
			"endpoint":   map[string]any{"type": "string"},
			"collection": map[string]any{"type": "string"},
			"query":      map[string]any{"type": "string"},
			"top_k":      map[string]any{"type": "number", "minimum": 1},
		},
	},
	models.NodeTypeLogicCondition: {
		"type":     "object",
		"required": []any{"expression"},
		"properties": map[string]any{
			"expression": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeLogicSwitch: {
		"type":     "object",
		"required": []any{"expression"},
		"properties": map[string]any{
			"expression": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeLogicLoop: {
		"type":     "object",
		"required": []any{"iterations"},
		"properties": map[string]any{
			"iterations": map[string]any{"type": "number", "minimum": 1, "maximum": 1000},
			"expression": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeLogicDelay: {
		"type": "object",
		"properties": map[string]any{
			"duration": map[string]any{"type": "string"},
			"seconds":  map[string]any{"type": "number", "minimum": 0},
		},
	},
	models.NodeTypeTransformData: {
		"type":     "object",
		"required": []any{"mappings"},
		"properties": map[string]any{
			"mappings": map[string]any{"type": "object"},
		},
	},
	models.NodeTypeTransformFilter: {
		"type":     "object",
		"required": []any{"expression"},
		"properties": map[string]any{
			"expression": map[string]any{"type": "string"},
		},
	},
	models.NodeTypeTransformAggregate: {
		"type":     "object",
		"required": []any{"operation"},
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": []any{"count", "sum", "avg", "min", "max", "first", "last"},
			},
			"field": map[string]any{"type": "string"},
		},
	},
}

// ValidateConfig checks a node's config against the JSON schema of its type.
// Unknown types and types without a schema pass; the flow-validation surface
// reports unregistered types separately.
func (r *Registry) ValidateConfig(node *models.BotNode) error {
	schema, ok := configSchemas[node.Type]
	if !ok {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(node.Config()),
	)
	if err != nil {
		return fmt.Errorf("failed to validate config of node %s: %w", node.ID, err)
	}

	if !result.Valid() {
		return fmt.Errorf("invalid config for node %s: %s", node.ID, result.Errors()[0].String())
	}

	return nil
}
