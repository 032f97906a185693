package chatflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/internal/runtime"
	"github.com/aretw0/chatflow/internal/validator"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/adapters/resty"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/registry"
	"github.com/aretw0/chatflow/pkg/session"
)

// Engine is the high-level entry point for the chatflow library.
// It binds the interpreter to flow storage and conversation storage.
type Engine struct {
	runtime    *runtime.Engine
	flows      ports.FlowStore
	sessions   *session.Manager
	dispatcher ports.ActionDispatcher

	convStore   ports.ConversationStore
	locker      ports.DistributedLocker
	fetcher     ports.Fetcher
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
	apiTimeout  time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithFlowStore sets where flow versions are persisted (default: in memory).
func WithFlowStore(store ports.FlowStore) Option {
	return func(e *Engine) {
		e.flows = store
	}
}

// WithConversationStore sets where conversation context is persisted (default: in memory).
func WithConversationStore(store ports.ConversationStore) Option {
	return func(e *Engine) {
		e.convStore = store
	}
}

// WithLocker enables distributed locking of conversations across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithFetcher replaces the HTTP client used by api_call nodes.
func WithFetcher(f ports.Fetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithActionDispatcher performs the actions produced by Converse after the turn is saved.
// Without a dispatcher actions are only returned to the caller.
func WithActionDispatcher(d ports.ActionDispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps bounds the nodes visited in one turn.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxSteps(n))
	}
}

// WithBranching lets condition nodes choose their outgoing connection by outcome.
func WithBranching(enabled bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithBranching(enabled))
	}
}

// WithAPITimeout bounds each api_call request.
func WithAPITimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.apiTimeout = d
	}
}

// New initializes a new Engine. Unset dependencies default to in-memory stores
// and a resty fetcher.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{apiTimeout: runtime.DefaultAPITimeout}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.apiTimeout <= 0 {
		return nil, fmt.Errorf("api timeout must be positive, got %s", eng.apiTimeout)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.flows == nil {
		eng.flows = memory.NewFlowStore()
	}
	if eng.convStore == nil {
		eng.convStore = memory.NewConversationStore()
	}
	if eng.fetcher == nil {
		eng.fetcher = resty.New(resty.WithTimeout(eng.apiTimeout))
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.convStore, sessionOpts...)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithAPITimeout(eng.apiTimeout),
	}
	eng.runtime = runtime.NewEngine(eng.fetcher, append(runtimeOpts, eng.runtimeOpts...)...)

	return eng, nil
}

// Validate checks the structure of a candidate flow.
func (e *Engine) Validate(nodes []domain.Node, connections []domain.Connection) domain.ValidationResult {
	return validator.Validate(nodes, connections)
}

// Execute runs one turn against flow without touching storage.
func (e *Engine) Execute(ctx context.Context, flow *domain.Flow, input string, vars map[string]any) domain.TurnResult {
	return e.runtime.Execute(ctx, flow, input, vars)
}

// Provision seeds a bot with the default two-node flow as version 1.
// Returns domain.ErrFlowExists if the bot already has flows.
func (e *Engine) Provision(ctx context.Context, botID string) (*domain.Flow, error) {
	if botID == "" {
		return nil, fmt.Errorf("bot id is required")
	}
	if _, err := e.flows.Latest(ctx, botID); err == nil {
		return nil, fmt.Errorf("%w: bot %s", domain.ErrFlowExists, botID)
	} else if !errors.Is(err, domain.ErrFlowNotFound) {
		return nil, err
	}

	flow, err := e.flows.Create(ctx, domain.DefaultFlow(botID))
	if err != nil {
		return nil, err
	}
	e.logger.Info("bot provisioned", "bot_id", botID, "flow_id", flow.ID)
	return flow, nil
}

// GetFlow returns the latest version of a bot's flow.
func (e *Engine) GetFlow(ctx context.Context, botID string) (*domain.Flow, error) {
	return e.flows.Latest(ctx, botID)
}

// Versions returns every version of a bot's flow, ascending.
func (e *Engine) Versions(ctx context.Context, botID string) ([]*domain.Flow, error) {
	return e.flows.Versions(ctx, botID)
}

// UpdateFlow stores an edit as a new, inactive version. The edit is saved even when
// it has validation errors (drafts may be incomplete); the findings are returned
// so the author can fix them before activating.
func (e *Engine) UpdateFlow(ctx context.Context, botID string, update domain.FlowUpdate) (*domain.Flow, domain.ValidationResult, error) {
	if _, err := e.flows.Latest(ctx, botID); err != nil {
		return nil, domain.ValidationResult{}, err
	}

	result := e.Validate(update.Nodes, update.Connections)
	flow, err := e.flows.Create(ctx, &domain.Flow{
		BotID:       botID,
		Nodes:       update.Nodes,
		Connections: update.Connections,
		Variables:   update.Variables,
	})
	if err != nil {
		return nil, result, err
	}

	e.logger.Info("flow updated",
		"bot_id", botID,
		"version", flow.Version,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
	)
	return flow, result, nil
}

// Activate makes the latest version live. It fails with *domain.InvalidFlowError
// when the version has validation errors; warnings do not block.
func (e *Engine) Activate(ctx context.Context, botID string) (*domain.Flow, error) {
	latest, err := e.flows.Latest(ctx, botID)
	if err != nil {
		return nil, err
	}

	result := e.Validate(latest.Nodes, latest.Connections)
	if !result.Valid {
		return nil, &domain.InvalidFlowError{BotID: botID, Result: result}
	}

	flow, err := e.flows.SetActive(ctx, botID, true)
	if err != nil {
		return nil, err
	}
	e.logger.Info("flow activated", "bot_id", botID, "version", flow.Version)
	return flow, nil
}

// Deactivate takes the bot offline: no version stays active, including an older
// live version behind a newer draft.
func (e *Engine) Deactivate(ctx context.Context, botID string) (*domain.Flow, error) {
	flow, err := e.flows.SetActive(ctx, botID, false)
	if err != nil {
		return nil, err
	}
	e.logger.Info("flow deactivated", "bot_id", botID, "version", flow.Version)
	return flow, nil
}

// Converse runs one turn of a persisted conversation against the bot's active flow.
// The conversation is created on first use and seeded with the flow's variable defaults.
// Turns of the same conversation are serialized.
func (e *Engine) Converse(ctx context.Context, botID, conversationID, input string) (domain.TurnResult, error) {
	var result domain.TurnResult
	_, err := e.sessions.Update(ctx, conversationID, botID, func(ctx context.Context, conv *domain.Conversation) error {
		flow, err := e.flows.Active(ctx, botID)
		if err != nil {
			return err
		}

		vars := flow.DefaultVariables()
		for k, v := range conv.Variables {
			vars[k] = v
		}

		result = e.runtime.Execute(ctx, flow, input, vars)
		applySetVariables(result.Variables, result.Actions)

		conv.History = append(conv.History, domain.Turn{
			Input:       input,
			Response:    result.Response,
			FlowVersion: flow.Version,
			Actions:     result.Actions,
			Changes:     domain.VariableDelta(conv.Variables, result.Variables),
			At:          time.Now().UTC(),
		})
		conv.Variables = result.Variables
		return nil
	})
	if err != nil {
		return domain.TurnResult{}, err
	}

	e.dispatch(ctx, botID, conversationID, result.Actions)
	return result, nil
}

// applySetVariables performs set_variable actions, the only ones the engine owns.
func applySetVariables(vars map[string]any, actions []domain.Action) {
	for _, a := range actions {
		if a.Type != domain.ActionSetVariable {
			continue
		}
		payload, err := domain.DecodeAction(a)
		if err != nil {
			continue
		}
		if p := payload.(domain.SetVariablePayload); p.Name != "" {
			vars[p.Name] = p.Value
		}
	}
}

func (e *Engine) dispatch(ctx context.Context, botID, conversationID string, actions []domain.Action) {
	if e.dispatcher == nil {
		return
	}
	for _, a := range actions {
		if a.Type == domain.ActionSetVariable {
			continue
		}
		if err := e.dispatcher.Dispatch(ctx, a); err != nil {
			level := slog.LevelWarn
			if errors.Is(err, registry.ErrNoHandler) {
				level = slog.LevelDebug
			}
			e.logger.Log(ctx, level, "action dispatch failed",
				"bot_id", botID,
				"conversation_id", conversationID,
				"action", a.Type,
				"err", err,
			)
		}
	}
}

// Conversation returns the persisted state of a conversation.
func (e *Engine) Conversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	return e.sessions.Load(ctx, conversationID)
}

// Flows returns the flow store backing the engine.
func (e *Engine) Flows() ports.FlowStore {
	return e.flows
}

var _ ports.FlowService = (*Engine)(nil)
