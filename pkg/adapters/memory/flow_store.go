package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/google/uuid"
)

// FlowStore implements ports.FlowStore in memory.
// Versions are kept serialized, like the persistent adapters, so every read is an independent copy.
type FlowStore struct {
	mu    sync.RWMutex
	flows map[string][][]byte // botID -> versions ascending
	now   func() time.Time
}

// NewFlowStore creates an empty in-memory flow store.
func NewFlowStore() *FlowStore {
	return &FlowStore{
		flows: make(map[string][][]byte),
		now:   time.Now,
	}
}

// Create appends flow as the next version of its bot.
func (s *FlowStore) Create(ctx context.Context, flow *domain.Flow) (*domain.Flow, error) {
	if flow == nil || flow.BotID == "" {
		return nil, fmt.Errorf("flow must have a bot id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *flow
	stored.ID = uuid.NewString()
	stored.Version = len(s.flows[flow.BotID]) + 1
	stored.IsActive = false
	stored.CreatedAt = s.now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow: %w", err)
	}
	s.flows[flow.BotID] = append(s.flows[flow.BotID], data)
	return decode(data)
}

// Latest returns the highest version of the bot's flow.
func (s *FlowStore) Latest(ctx context.Context, botID string) (*domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.flows[botID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: bot %s", domain.ErrFlowNotFound, botID)
	}
	return decode(versions[len(versions)-1])
}

// Active returns the highest active version of the bot's flow.
func (s *FlowStore) Active(ctx context.Context, botID string) (*domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.flows[botID]
	for i := len(versions) - 1; i >= 0; i-- {
		flow, err := decode(versions[i])
		if err != nil {
			return nil, err
		}
		if flow.IsActive {
			return flow, nil
		}
	}
	return nil, fmt.Errorf("%w: bot %s", domain.ErrNoActiveFlow, botID)
}

// SetActive toggles the latest version. Both directions clear the flag on every
// other version, so deactivation takes the bot offline even when an older version was live.
func (s *FlowStore) SetActive(ctx context.Context, botID string, active bool) (*domain.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.flows[botID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: bot %s", domain.ErrFlowNotFound, botID)
	}

	now := s.now().UTC()
	latest := len(versions) - 1
	var result *domain.Flow
	for i := range versions {
		flow, err := decode(versions[i])
		if err != nil {
			return nil, err
		}

		want := i == latest && active
		if want != flow.IsActive || i == latest {
			flow.IsActive = want
			flow.UpdatedAt = now
			data, err := json.Marshal(flow)
			if err != nil {
				return nil, fmt.Errorf("failed to encode flow: %w", err)
			}
			versions[i] = data
		}
		if i == latest {
			result = flow
		}
	}
	return result, nil
}

// Versions returns every version of the bot's flow, ascending.
func (s *FlowStore) Versions(ctx context.Context, botID string) ([]*domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw := s.flows[botID]
	out := make([]*domain.Flow, 0, len(raw))
	for _, data := range raw {
		flow, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, flow)
	}
	return out, nil
}

func decode(data []byte) (*domain.Flow, error) {
	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to decode flow: %w", err)
	}
	return &flow, nil
}
