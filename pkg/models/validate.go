package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one structural problem found in a flow.
type ValidationError struct {
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
	Detail string `json:"detail"`
}

func (e ValidationError) Error() string {
	return e.Detail
}

// ValidateFlow checks a flow for the structural errors the engine would
// otherwise only hit at runtime: duplicate node ids, dangling edges, missing
// trigger, ambiguous condition branches and extra outgoing edges on plain
// nodes. Field-level constraints use validator struct tags.
func ValidateFlow(validate *validator.Validate, flow *BotFlow) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool, len(flow.Nodes))

	for _, node := range flow.Nodes {
		if err := validate.Struct(node); err != nil {
			errs = append(errs, ValidationError{NodeID: node.ID, Detail: err.Error()})
		}

		if seen[node.ID] {
			errs = append(errs, ValidationError{NodeID: node.ID, Detail: fmt.Sprintf("duplicate node id %q", node.ID)})
		}

		seen[node.ID] = true
	}

	for _, edge := range flow.Edges {
		if err := validate.Struct(edge); err != nil {
			errs = append(errs, ValidationError{EdgeID: edge.ID, Detail: err.Error()})
		}

		if !seen[edge.Source] {
			errs = append(errs, ValidationError{EdgeID: edge.ID, Detail: fmt.Sprintf("edge %q references unknown source node %q", edge.ID, edge.Source)})
		}

		if !seen[edge.Target] {
			errs = append(errs, ValidationError{EdgeID: edge.ID, Detail: fmt.Sprintf("edge %q references unknown target node %q", edge.ID, edge.Target)})
		}
	}

	if flow.FirstTrigger() == nil {
		errs = append(errs, ValidationError{Detail: "flow has no trigger node"})
	}

	errs = append(errs, validateBranching(flow)...)

	return errs
}

// validateBranching rejects condition nodes whose outgoing edges would force
// the engine into its positional fallback, and flags extra outgoing edges on
// node types the engine follows only edge-first.
func validateBranching(flow *BotFlow) []ValidationError {
	var errs []ValidationError

	outgoing := flow.OutgoingEdges()

	for _, node := range flow.Nodes {
		edges := outgoing[node.ID]

		switch node.Type {
		case NodeTypeLogicCondition:
			if len(edges) < 2 {
				continue
			}

			tags := make(map[string]int, len(edges))
			for _, edge := range edges {
				tags[edge.Selector()]++
			}

			if tags[EdgeTagTrue] != 1 || tags[EdgeTagFalse] != 1 {
				errs = append(errs, ValidationError{
					NodeID: node.ID,
					Detail: fmt.Sprintf("condition node %q needs exactly one %q and one %q edge", node.ID, EdgeTagTrue, EdgeTagFalse),
				})
			}
		case NodeTypeLogicSwitch, NodeTypeLogicParallel:
			// Any number of outgoing edges is valid.
		default:
			if len(edges) > 1 {
				errs = append(errs, ValidationError{
					NodeID: node.ID,
					Detail: fmt.Sprintf("node %q has %d outgoing edges but only the first is followed", node.ID, len(edges)),
				})
			}
		}
	}

	return errs
}
