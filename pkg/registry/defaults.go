package registry

import (
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/flowbotio/flowbot/pkg/executors/action"
	"github.com/flowbotio/flowbot/pkg/executors/logic"
	"github.com/flowbotio/flowbot/pkg/executors/transform"
	"github.com/flowbotio/flowbot/pkg/executors/trigger"
	"github.com/flowbotio/flowbot/pkg/expression"
	"github.com/flowbotio/flowbot/pkg/models"
)

// NewWithDefaults builds a registry with every built-in executor bound.
func NewWithDefaults(logger *slog.Logger) *Registry {
	registry := New(logger)
	RegisterDefaults(registry)

	return registry
}

// RegisterDefaults binds the built-in executor set. Executors share one HTTP
// client and one expression evaluator.
func RegisterDefaults(r *Registry) {
	client := resty.New()
	eval := expression.NewEvaluator()

	echo := trigger.New()
	r.Register(models.NodeTypeTriggerWebhook, echo)
	r.Register(models.NodeTypeTriggerEvent, echo)
	r.Register(models.NodeTypeTriggerEmail, echo)
	r.Register(models.NodeTypeTriggerForm, echo)
	r.Register(models.NodeTypeTriggerSchedule, trigger.NewSchedule())

	r.Register(models.NodeTypeActionAIResponse, action.NewAIResponse(client))
	r.Register(models.NodeTypeActionAPICall, action.NewAPICall(client))
	r.Register(models.NodeTypeActionSendEmail, action.NewSendEmail(client))
	r.Register(models.NodeTypeActionSendNotification, action.NewSendNotification(client))
	r.Register(models.NodeTypeActionCreateTask, action.NewCreateTask(client))
	r.Register(models.NodeTypeActionUpdateDB, action.NewUpdateDB(client))
	r.Register(models.NodeTypeActionRAGSearch, action.NewRAGSearch(client))

	r.Register(models.NodeTypeLogicCondition, logic.NewCondition(eval))
	r.Register(models.NodeTypeLogicSwitch, logic.NewSwitch(eval))
	r.Register(models.NodeTypeLogicLoop, logic.NewLoop(eval))
	r.Register(models.NodeTypeLogicDelay, logic.NewDelay())
	r.Register(models.NodeTypeLogicParallel, logic.NewParallel())
	r.Register(models.NodeTypeLogicMerge, logic.NewMerge())

	r.Register(models.NodeTypeTransformData, transform.NewData())
	r.Register(models.NodeTypeTransformFilter, transform.NewFilter(eval))
	r.Register(models.NodeTypeTransformAggregate, transform.NewAggregate())
}
