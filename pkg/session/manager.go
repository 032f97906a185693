package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

// DefaultLockTTL is the lease of a distributed conversation lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates conversation access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ConversationStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active locks by conversation ID

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Manager over the given conversation store.
func NewManager(store ports.ConversationStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves an existing conversation.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		conv, err = m.store.Load(ctx, id)
		return err
	})
	return conv, err
}

// LoadOrStart loads a conversation, creating and persisting an empty one for botID if absent.
func (m *Manager) LoadOrStart(ctx context.Context, id, botID string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var (
			created bool
			err     error
		)
		conv, created, err = m.loadOrNew(ctx, id, botID)
		if err != nil || !created {
			return err
		}
		if err := m.store.Save(ctx, conv); err != nil {
			return fmt.Errorf("failed to initialize conversation: %w", err)
		}
		return nil
	})
	return conv, err
}

// Update runs fn on the conversation (created for botID if absent) and persists
// the result, all under the conversation lock. If fn fails nothing is saved.
func (m *Manager) Update(ctx context.Context, id, botID string, fn func(ctx context.Context, conv *domain.Conversation) error) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		conv, _, err = m.loadOrNew(ctx, id, botID)
		if err != nil {
			return err
		}
		if conv.BotID != botID {
			return fmt.Errorf("%w: conversation %s belongs to bot %s", domain.ErrConversationMismatch, id, conv.BotID)
		}
		if err := fn(ctx, conv); err != nil {
			return err
		}
		conv.UpdatedAt = time.Now().UTC()
		return m.store.Save(ctx, conv)
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (m *Manager) loadOrNew(ctx context.Context, id, botID string) (conv *domain.Conversation, created bool, err error) {
	conv, err = m.store.Load(ctx, id)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, false, fmt.Errorf("failed to check conversation existence: %w", err)
	}
	return domain.NewConversation(id, botID), true, nil
}

// Save persists the conversation.
func (m *Manager) Save(ctx context.Context, conv *domain.Conversation) error {
	return m.WithLock(ctx, conv.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, conv)
	})
}

// Delete removes the conversation from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying conversation store.
func (m *Manager) Store() ports.ConversationStore {
	return m.store
}

// WithLock executes fn while holding the lock for the conversation.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
