package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// DefaultFlowPrefix namespaces flow keys.
const DefaultFlowPrefix = "chatflow:flow:"

// maxTxRetries bounds optimistic transaction retries under contention.
const maxTxRetries = 20

// FlowStore implements ports.FlowStore using Redis.
//
// Layout per bot:
//
//	<prefix><botID>:versions  HASH  version -> flow JSON
//	<prefix><botID>:active    STRING active version number
//
// Writes run inside WATCH/MULTI so concurrent editors never share a version number.
type FlowStore struct {
	client *backend.Client
	prefix string
}

// NewFlowStore creates a flow store on an existing client.
func NewFlowStore(client *backend.Client, prefix string) *FlowStore {
	if prefix == "" {
		prefix = DefaultFlowPrefix
	}
	return &FlowStore{client: client, prefix: prefix}
}

func (s *FlowStore) versionsKey(botID string) string {
	return s.prefix + botID + ":versions"
}

func (s *FlowStore) activeKey(botID string) string {
	return s.prefix + botID + ":active"
}

// Create appends flow as the next version of its bot.
func (s *FlowStore) Create(ctx context.Context, flow *domain.Flow) (*domain.Flow, error) {
	if flow == nil || flow.BotID == "" {
		return nil, fmt.Errorf("flow must have a bot id")
	}

	stored := *flow
	stored.ID = uuid.NewString()
	stored.IsActive = false
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	key := s.versionsKey(flow.BotID)
	err := s.withRetry(ctx, func(tx *backend.Tx) error {
		n, err := tx.HLen(ctx, key).Result()
		if err != nil {
			return err
		}
		stored.Version = int(n) + 1

		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal flow: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.HSet(ctx, key, strconv.Itoa(stored.Version), data)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create flow: %w", err)
	}
	return &stored, nil
}

// Latest returns the highest version of the bot's flow.
func (s *FlowStore) Latest(ctx context.Context, botID string) (*domain.Flow, error) {
	n, err := s.client.HLen(ctx, s.versionsKey(botID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count flow versions: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: bot %s", domain.ErrFlowNotFound, botID)
	}
	return s.load(ctx, s.client, botID, int(n))
}

// Active returns the active version of the bot's flow.
func (s *FlowStore) Active(ctx context.Context, botID string) (*domain.Flow, error) {
	version, err := s.client.Get(ctx, s.activeKey(botID)).Int()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: bot %s", domain.ErrNoActiveFlow, botID)
		}
		return nil, fmt.Errorf("failed to read active version: %w", err)
	}
	return s.load(ctx, s.client, botID, version)
}

// SetActive toggles the latest version. The active pointer holds a single version,
// so activating one implicitly deactivates the others and deactivating drops the pointer.
func (s *FlowStore) SetActive(ctx context.Context, botID string, active bool) (*domain.Flow, error) {
	vKey, aKey := s.versionsKey(botID), s.activeKey(botID)

	var result *domain.Flow
	err := s.withRetry(ctx, func(tx *backend.Tx) error {
		n, err := tx.HLen(ctx, vKey).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: bot %s", domain.ErrFlowNotFound, botID)
		}
		latest, err := s.load(ctx, tx, botID, int(n))
		if err != nil {
			return err
		}
		latest.IsActive = active
		latest.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(latest)
		if err != nil {
			return fmt.Errorf("failed to marshal flow: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.HSet(ctx, vKey, strconv.Itoa(latest.Version), data)
			if active {
				pipe.Set(ctx, aKey, latest.Version, 0)
			} else {
				pipe.Del(ctx, aKey)
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = latest
		return nil
	}, vKey, aKey)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Versions returns every version of the bot's flow, ascending.
func (s *FlowStore) Versions(ctx context.Context, botID string) ([]*domain.Flow, error) {
	raw, err := s.client.HGetAll(ctx, s.versionsKey(botID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list flow versions: %w", err)
	}
	active, err := s.client.Get(ctx, s.activeKey(botID)).Int()
	if err != nil && !errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("failed to read active version: %w", err)
	}

	out := make([]*domain.Flow, 0, len(raw))
	for _, data := range raw {
		var flow domain.Flow
		if err := json.Unmarshal([]byte(data), &flow); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
		}
		flow.IsActive = flow.Version == active
		out = append(out, &flow)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// reader is the read surface shared by *backend.Client and *backend.Tx.
type reader interface {
	Get(ctx context.Context, key string) *backend.StringCmd
	HGet(ctx context.Context, key, field string) *backend.StringCmd
}

// load reads one version and derives IsActive from the active pointer.
func (s *FlowStore) load(ctx context.Context, c reader, botID string, version int) (*domain.Flow, error) {
	data, err := c.HGet(ctx, s.versionsKey(botID), strconv.Itoa(version)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: bot %s version %d", domain.ErrFlowNotFound, botID, version)
		}
		return nil, fmt.Errorf("failed to read flow: %w", err)
	}
	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}

	active, err := c.Get(ctx, s.activeKey(botID)).Int()
	if err != nil && !errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("failed to read active version: %w", err)
	}
	flow.IsActive = flow.Version == active
	return &flow, nil
}

func (s *FlowStore) withRetry(ctx context.Context, fn func(*backend.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, backend.TxFailedErr) {
			return err
		}
	}
	return backend.TxFailedErr
}
