package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/chatflow/pkg/domain"
)

// outcome is what executing a single node produces.
type outcome struct {
	response string
	set      map[string]any
	actions  []domain.Action

	// conditionMet is only set by condition nodes.
	conditionMet *bool
}

// executeNode runs one node against the variables accumulated so far.
// vars must be treated as read-only; writes are returned in outcome.set.
func (e *Engine) executeNode(ctx context.Context, logger *slog.Logger, flow *domain.Flow, node *domain.Node, input string, vars map[string]any) outcome {
	logger.Debug("executing node", "node_id", node.ID, "type", node.Type)

	switch node.Type {
	case domain.NodeTypeMessage, domain.NodeTypeQuestion:
		return outcome{response: Interpolate(node.Data.Content, vars)}

	case domain.NodeTypeCondition:
		met := EvaluateConditions(node.Data.Conditions, vars, input)
		response := domain.MsgConditionNotMet
		if met {
			response = domain.MsgConditionMet
		}
		return outcome{response: response, conditionMet: &met}

	case domain.NodeTypeAction:
		return outcome{
			response: domain.MsgActionExecuted,
			actions:  domain.CloneActions(node.Data.Actions),
		}

	case domain.NodeTypeAPICall:
		return e.callAPI(ctx, logger, flow, node, vars)

	case domain.NodeTypeInput:
		if node.Data.Variable == "" {
			return outcome{response: Interpolate(node.Data.Content, vars)}
		}
		scope := domain.CloneVariables(vars)
		scope[node.Data.Variable] = input
		return outcome{
			response: Interpolate(node.Data.Content, scope),
			set:      map[string]any{node.Data.Variable: input},
		}

	case domain.NodeTypeHandover:
		// Handover has no interpreter behavior yet; it answers like an unknown type.
		logger.Warn("handover node is not supported by the interpreter", "node_id", node.ID)
		return outcome{response: domain.MsgNodeError}

	default:
		logger.Warn("unknown node type", "node_id", node.ID, "type", node.Type)
		return outcome{response: domain.MsgNodeError}
	}
}
