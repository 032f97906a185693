package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

const (
	// DefaultMaxSteps bounds a single turn. Validated flows are acyclic, so it only
	// matters for flows executed without validation.
	DefaultMaxSteps = 1000

	// DefaultAPITimeout bounds the outbound request of an api_call node.
	DefaultAPITimeout = 10 * time.Second
)

// Engine is the flow interpreter. It holds no per-turn state and is safe for concurrent use.
type Engine struct {
	fetcher    ports.Fetcher
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	maxSteps   int
	apiTimeout time.Duration
	branching  bool
}

// EngineOption configures the runtime Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps sets the maximum number of nodes visited in one turn.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithAPITimeout sets the deadline applied to every api_call request.
func WithAPITimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.apiTimeout = d
		}
	}
}

// WithBranching lets condition nodes choose among their outgoing connections.
// Disabled by default: traversal follows the first connection of every node.
func WithBranching(enabled bool) EngineOption {
	return func(e *Engine) {
		e.branching = enabled
	}
}

// NewEngine creates a new interpreter. fetcher may be nil, in which case every
// api_call node fails.
func NewEngine(fetcher ports.Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:    fetcher,
		logger:     logging.NewNop(),
		maxSteps:   DefaultMaxSteps,
		apiTimeout: DefaultAPITimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// turn accumulates the side effects of a traversal. Only the last node's
// response is projected into the result.
type turn struct {
	variables map[string]any
	actions   []domain.Action
}

func (t *turn) apply(out outcome) {
	for k, v := range out.set {
		t.variables[k] = v
	}
	t.actions = append(t.actions, out.actions...)
}

func (t *turn) result(response string) domain.TurnResult {
	return domain.TurnResult{
		Response:  response,
		Variables: t.variables,
		Actions:   t.actions,
	}
}

// Execute runs one conversation turn: it walks the flow from the start node,
// folding every visited node's variable writes and actions into the result,
// and returns the response of the last node visited.
// It never fails; node-level problems are reported through the response text.
func (e *Engine) Execute(ctx context.Context, flow *domain.Flow, input string, vars map[string]any) domain.TurnResult {
	acc := &turn{
		variables: domain.CloneVariables(vars),
		actions:   []domain.Action{},
	}

	if flow == nil {
		e.logger.Error("cannot execute nil flow")
		return acc.result(domain.MsgProcessingError)
	}

	logger := e.logger.With("flow_id", flow.ID, "bot_id", flow.BotID, "version", flow.Version)

	start, ok := flow.Node(domain.StartNodeID)
	if !ok {
		logger.Error("flow has no start node")
		return acc.result(domain.MsgProcessingError)
	}

	var last outcome
	steps := 0
	for current := start; current != nil; current = e.advance(logger, flow, current, last) {
		if steps >= e.maxSteps {
			logger.Warn("turn halted: step limit reached", "limit", e.maxSteps, "node_id", current.ID)
			break
		}
		steps++

		e.emitNodeEnter(ctx, flow, current)
		last = e.executeNode(ctx, logger, flow, current, input, acc.variables)
		acc.apply(last)
		e.emitNodeLeave(ctx, flow, current, last.response)
	}

	logger.Debug("turn completed", "steps", steps, "actions", len(acc.actions))
	return acc.result(last.response)
}

// advance resolves the node visited after current, or nil when traversal halts.
func (e *Engine) advance(logger *slog.Logger, flow *domain.Flow, current *domain.Node, last outcome) *domain.Node {
	var conn *domain.Connection
	if e.branching && current.Type == domain.NodeTypeCondition && last.conditionMet != nil {
		conn = selectBranch(flow.Outgoing(current.ID), *last.conditionMet)
	} else if c, ok := flow.Next(current.ID); ok {
		conn = c
	}
	if conn == nil {
		return nil
	}

	next, ok := flow.Node(conn.Target)
	if !ok {
		logger.Debug("connection target not found, halting", "connection_id", conn.ID, "target", conn.Target)
		return nil
	}
	return next
}

func (e *Engine) emitNodeEnter(ctx context.Context, flow *domain.Flow, node *domain.Node) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter, FlowID: flow.ID},
		NodeID:    node.ID,
		NodeType:  node.Type,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, flow *domain.Flow, node *domain.Node, response string) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeLeave, FlowID: flow.ID},
		NodeID:    node.ID,
		NodeType:  node.Type,
		Response:  response,
	})
}
