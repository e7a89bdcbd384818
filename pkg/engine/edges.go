package engine

import (
	"fmt"

	"github.com/flowbotio/flowbot/pkg/models"
)

// branchEdge picks the outgoing edge for a routing node's output.
//
// Boolean outputs select by the "true"/"false" edge tags. When no edge
// carries either tag, the first edge is the true branch and the second the
// false branch. Case outputs select the edge whose tag equals the case
// value, falling back to the "default" tag, then to the first edge.
//
// A nil return means the selected branch has no edge and the run ends there.
func branchEdge(output any, edges []*models.BotEdge) *models.BotEdge {
	if len(edges) == 0 {
		return nil
	}

	switch v := output.(type) {
	case bool:
		return boolEdge(v, edges)
	case map[string]any:
		if caseValue, ok := v["case"]; ok {
			return caseEdge(fmt.Sprintf("%v", caseValue), edges)
		}
	}

	return edges[0]
}

func boolEdge(value bool, edges []*models.BotEdge) *models.BotEdge {
	want := models.EdgeTagFalse
	if value {
		want = models.EdgeTagTrue
	}

	tagged := false

	for _, edge := range edges {
		selector := edge.Selector()
		if selector == models.EdgeTagTrue || selector == models.EdgeTagFalse {
			tagged = true
		}

		if selector == want {
			return edge
		}
	}

	if tagged {
		return nil
	}

	if value {
		return edges[0]
	}

	if len(edges) > 1 {
		return edges[1]
	}

	return nil
}

func caseEdge(caseValue string, edges []*models.BotEdge) *models.BotEdge {
	var fallback *models.BotEdge

	for _, edge := range edges {
		switch edge.Selector() {
		case caseValue:
			return edge
		case models.EdgeTagDefault:
			if fallback == nil {
				fallback = edge
			}
		}
	}

	if fallback != nil {
		return fallback
	}

	return edges[0]
}
