package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flowbotio/flowbot/pkg/events"
	"github.com/flowbotio/flowbot/pkg/models"
)

// run is the traversal state of a single execution. A fresh run is built per
// Execute call and discarded when the walk finishes.
type run struct {
	engine   *Engine
	logger   *slog.Logger
	flow     *models.BotFlow
	outgoing map[string][]*models.BotEdge
	execCtx  *models.ExecutionContext

	executed atomic.Int64
}

func (r *run) nodesExecuted() int {
	return int(r.executed.Load())
}

// runNode executes one node and recurses along its outgoing edges. The
// visited set belongs to the current branch; parallel fan-out hands each
// branch its own copy so sibling branches do not suppress each other's
// nodes. Revisiting a node ends the branch quietly instead of looping.
func (r *run) runNode(ctx context.Context, node *models.BotNode, input any, visited map[string]bool) models.NodeResult {
	if err := ctx.Err(); err != nil {
		return models.NodeResult{Success: false, Error: "execution cancelled: " + err.Error()}
	}

	if visited[node.ID] {
		return models.NodeResult{Success: true, Output: input}
	}

	visited[node.ID] = true

	nodeStarted := time.Now()
	result := r.dispatch(ctx, node, input)
	r.executed.Add(1)

	r.logNode(ctx, node, result)
	r.engine.metrics.ObserveNode(node.Type, result.Success)
	r.engine.publish(ctx, r.logger, r.execCtx.AgentID, events.NodeCompleted{
		BaseEvent: events.BaseEvent{
			ID:             r.execCtx.ExecutionID + ":" + node.ID,
			Type:           events.NodeCompletedEvent,
			Timestamp:      time.Now().UTC(),
			AgentID:        r.execCtx.AgentID,
			OrganizationID: r.execCtx.OrganizationID,
			ExecutionID:    r.execCtx.ExecutionID,
		},
		NodeID:     node.ID,
		NodeType:   node.Type,
		Success:    result.Success,
		Error:      result.Error,
		DurationMs: time.Since(nodeStarted).Milliseconds(),
	})

	if !result.Success {
		return result
	}

	r.execCtx.SetNodeOutput(node.ID, result.Output)

	edges := r.outgoing[node.ID]
	if len(edges) == 0 {
		return result
	}

	switch node.Type {
	case models.NodeTypeLogicCondition, models.NodeTypeLogicSwitch:
		edge := branchEdge(result.Output, edges)
		if edge == nil {
			return result
		}

		return r.follow(ctx, edge, result.Output, visited)
	case models.NodeTypeLogicParallel:
		return r.fanOut(ctx, edges, result.Output, visited)
	default:
		return r.follow(ctx, edges[0], result.Output, visited)
	}
}

// dispatch bounds a single executor call with the engine's node timeout.
// The timeout covers one node only; the traversal keeps the caller's ctx.
func (r *run) dispatch(ctx context.Context, node *models.BotNode, input any) models.NodeResult {
	if r.engine.nodeTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.engine.nodeTimeout)
		defer cancel()
	}

	return r.engine.registry.Dispatch(ctx, node, input, r.execCtx)
}

func (r *run) follow(ctx context.Context, edge *models.BotEdge, input any, visited map[string]bool) models.NodeResult {
	next := r.flow.NodeByID(edge.Target)
	if next == nil {
		return models.NodeResult{Success: false, Error: "Node " + edge.Target + " not found"}
	}

	return r.runNode(ctx, next, input, visited)
}

// fanOut runs every outgoing edge concurrently and aggregates branch outputs
// in edge order. The first failure in edge order becomes the fan-out result.
func (r *run) fanOut(ctx context.Context, edges []*models.BotEdge, input any, visited map[string]bool) models.NodeResult {
	results := make([]models.NodeResult, len(edges))

	var wg sync.WaitGroup
	for i, edge := range edges {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i] = r.follow(ctx, edge, input, cloneVisited(visited))
		}()
	}

	wg.Wait()

	outputs := make([]any, 0, len(edges))

	for _, branch := range results {
		if !branch.Success {
			return branch
		}

		outputs = append(outputs, branch.Output)
	}

	return models.NodeResult{Success: true, Output: outputs}
}

func (r *run) logNode(ctx context.Context, node *models.BotNode, result models.NodeResult) {
	status := models.NodeLogStatusSuccess
	if !result.Success {
		status = models.NodeLogStatusFailed
	}

	entry := models.NodeLogEntry{
		NodeID:   node.ID,
		Status:   status,
		Output:   result.Output,
		Error:    result.Error,
		LoggedAt: time.Now().UTC(),
	}

	if err := r.engine.lifecycle.LogNode(ctx, r.execCtx.ExecutionID, entry); err != nil {
		r.logger.ErrorContext(ctx, "Failed to record node log entry", "node_id", node.ID, "error", err)
		r.engine.metrics.NodeLogFailure()
	}
}

func cloneVisited(visited map[string]bool) map[string]bool {
	clone := make(map[string]bool, len(visited))
	for id := range visited {
		clone[id] = true
	}

	return clone
}
