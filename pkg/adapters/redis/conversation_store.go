package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultConversationPrefix namespaces conversation keys.
const DefaultConversationPrefix = "chatflow:conversation:"

// farFuture is the index score of conversations stored without a TTL (2100-01-01).
const farFuture = 4102444800

// ConversationStore implements ports.ConversationStore using Redis.
// Each conversation is a JSON string; a ZSET index scored by expiry backs List.
type ConversationStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a ConversationStore.
type Option func(*ConversationStore)

// WithTTL sets the expiration for conversations. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *ConversationStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for conversations.
func WithPrefix(prefix string) Option {
	return func(s *ConversationStore) {
		s.prefix = prefix
	}
}

// NewClient opens a go-redis client for the given address.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// NewConversationStore creates a conversation store on an existing client.
func NewConversationStore(client *backend.Client, opts ...Option) *ConversationStore {
	store := &ConversationStore{
		client: client,
		prefix: DefaultConversationPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *ConversationStore) key(conversationID string) string {
	return s.prefix + conversationID
}

func (s *ConversationStore) indexKey() string {
	return s.prefix + "index"
}

// Save persists the conversation and refreshes its index entry.
func (s *ConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(conv.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: conv.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the conversation.
func (s *ConversationStore) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	val, err := s.client.Get(ctx, s.key(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(val, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	if conv.Variables == nil {
		conv.Variables = make(map[string]any)
	}
	return &conv, nil
}

// Delete removes the conversation and its index entry.
func (s *ConversationStore) Delete(ctx context.Context, conversationID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(conversationID))
	pipe.ZRem(ctx, s.indexKey(), conversationID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns live conversation IDs. Expired entries are pruned from the index lazily.
func (s *ConversationStore) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired conversations: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return ids, nil
}
