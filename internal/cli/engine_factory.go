package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/config"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/adapters/postgres"
	"github.com/aretw0/chatflow/pkg/adapters/redis"
	"github.com/aretw0/chatflow/pkg/adapters/resty"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/metrics"
	"github.com/aretw0/chatflow/pkg/observability"
	"github.com/aretw0/chatflow/pkg/persistence/middleware"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/ratelimit"
	"github.com/aretw0/chatflow/pkg/registry"
	backend "github.com/redis/go-redis/v9"
)

// Runtime is an engine wired from configuration, plus what the server needs around it.
type Runtime struct {
	Engine  *chatflow.Engine
	Limiter ports.RateLimiter

	closers []func()
}

// Close releases storage connections.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// BuildRuntime initializes an engine with the storage driver, hooks and action handlers
// selected by cfg. m may be nil to skip metrics.
//
// The redis driver keeps everything in Redis. The postgres driver keeps flows in
// Postgres and conversations, locks and rate limits in Redis.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*Runtime, error) {
	rt := &Runtime{}
	fetcher := resty.New(resty.WithTimeout(cfg.API.Timeout), resty.WithDebug(cfg.Log.Level == "debug"))

	actions := registry.NewRegistry()
	actions.Register(domain.ActionWebhook, fetcher.Webhook)

	hooks := observability.LoggingHooks(logger)
	if m != nil {
		hooks = hooks.Merge(m.Hooks())
	}

	engineOpts := []chatflow.Option{
		chatflow.WithLogger(logger),
		chatflow.WithLifecycleHooks(hooks),
		chatflow.WithFetcher(fetcher),
		chatflow.WithActionDispatcher(actions),
		chatflow.WithAPITimeout(cfg.API.Timeout),
		chatflow.WithMaxSteps(cfg.Engine.MaxSteps),
		chatflow.WithBranching(cfg.Engine.Branching),
	}

	var convStore ports.ConversationStore
	var client *backend.Client

	switch cfg.Storage.Driver {
	case config.DriverRedis, config.DriverPostgres:
		client = redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		rt.closers = append(rt.closers, func() { client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}

		convStore = redis.NewConversationStore(client,
			redis.WithPrefix(cfg.Redis.Prefix+"conversation:"),
			redis.WithTTL(cfg.Redis.TTL),
		)
		engineOpts = append(engineOpts, chatflow.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)))
		rt.Limiter = redis.NewRateLimiter(client, cfg.Redis.Prefix+"ratelimit:", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	default:
		rt.Limiter = ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	switch cfg.Storage.Driver {
	case config.DriverRedis:
		engineOpts = append(engineOpts, chatflow.WithFlowStore(redis.NewFlowStore(client, cfg.Redis.Prefix+"flow:")))
	case config.DriverPostgres:
		flows, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, flows.Close)
		engineOpts = append(engineOpts, chatflow.WithFlowStore(flows))
	}

	if cfg.Conversation.EncryptionKey != "" {
		if convStore == nil {
			convStore = memory.NewConversationStore()
		}
		encrypted, err := encryptStore(convStore, cfg.Conversation.EncryptionKey)
		if err != nil {
			rt.Close()
			return nil, err
		}
		convStore = encrypted
	}
	if convStore != nil {
		engineOpts = append(engineOpts, chatflow.WithConversationStore(convStore))
	}

	engine, err := chatflow.New(engineOpts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	rt.Engine = engine

	logger.Debug("runtime initialized",
		"storage", cfg.Storage.Driver,
		"encrypted", cfg.Conversation.EncryptionKey != "",
		"max_steps", cfg.Engine.MaxSteps,
		"branching", cfg.Engine.Branching,
	)
	return rt, nil
}

func encryptStore(store ports.ConversationStore, encodedKey string) (ports.ConversationStore, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation.encryption_key: %w", err)
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		return nil, fmt.Errorf("invalid conversation.encryption_key: %w", err)
	}
	return middleware.Chain(store, mw), nil
}
