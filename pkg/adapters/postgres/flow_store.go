// Package postgres stores flow versions in PostgreSQL through pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the flows table. Nodes, connections and variables are JSONB documents.
const Schema = `
CREATE TABLE IF NOT EXISTS flows (
	id          UUID PRIMARY KEY,
	bot_id      TEXT        NOT NULL,
	version     INTEGER     NOT NULL,
	is_active   BOOLEAN     NOT NULL DEFAULT FALSE,
	nodes       JSONB       NOT NULL DEFAULT '[]',
	connections JSONB       NOT NULL DEFAULT '[]',
	variables   JSONB       NOT NULL DEFAULT '[]',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (bot_id, version)
);
CREATE INDEX IF NOT EXISTS flows_bot_active_idx ON flows (bot_id) WHERE is_active;
`

const selectColumns = `id, bot_id, version, is_active, nodes, connections, variables, created_at, updated_at`

// FlowStore implements ports.FlowStore on a pgx connection pool.
type FlowStore struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*FlowStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	store := New(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *FlowStore {
	return &FlowStore{pool: pool}
}

// Migrate creates the flows table if needed.
func (s *FlowStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate flows schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *FlowStore) Close() {
	s.pool.Close()
}

// Create appends flow as the next version of its bot.
// A transaction-scoped advisory lock on the bot id serializes concurrent editors.
func (s *FlowStore) Create(ctx context.Context, flow *domain.Flow) (*domain.Flow, error) {
	if flow == nil || flow.BotID == "" {
		return nil, fmt.Errorf("flow must have a bot id")
	}

	nodes, connections, variables, err := encodeDocument(flow)
	if err != nil {
		return nil, err
	}

	var stored *domain.Flow
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, flow.BotID); err != nil {
			return err
		}

		var next int
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(version), 0) + 1
			FROM flows
			WHERE bot_id = $1
		`, flow.BotID).Scan(&next); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO flows (id, bot_id, version, is_active, nodes, connections, variables, created_at, updated_at)
			VALUES ($1, $2, $3, FALSE, $4, $5, $6, $7, $7)
			RETURNING `+selectColumns,
			uuid.NewString(), flow.BotID, next, nodes, connections, variables, time.Now().UTC())
		stored, err = scanFlow(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create flow: %w", err)
	}
	return stored, nil
}

// Latest returns the highest version of the bot's flow.
func (s *FlowStore) Latest(ctx context.Context, botID string) (*domain.Flow, error) {
	flow, err := scanFlow(s.pool.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM flows
		WHERE bot_id = $1
		ORDER BY version DESC
		LIMIT 1
	`, botID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: bot %s", domain.ErrFlowNotFound, botID)
	}
	return flow, err
}

// Active returns the highest active version of the bot's flow.
func (s *FlowStore) Active(ctx context.Context, botID string) (*domain.Flow, error) {
	flow, err := scanFlow(s.pool.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM flows
		WHERE bot_id = $1 AND is_active
		ORDER BY version DESC
		LIMIT 1
	`, botID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: bot %s", domain.ErrNoActiveFlow, botID)
	}
	return flow, err
}

// SetActive toggles the latest version. Both directions clear the flag on every other version.
func (s *FlowStore) SetActive(ctx context.Context, botID string, active bool) (*domain.Flow, error) {
	var result *domain.Flow
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, botID); err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(ctx, `
			UPDATE flows
			SET is_active = FALSE, updated_at = $2
			WHERE bot_id = $1 AND is_active
		`, botID, now); err != nil {
			return err
		}

		flow, err := scanFlow(tx.QueryRow(ctx, `
			UPDATE flows
			SET is_active = $2, updated_at = $3
			WHERE id = (SELECT id FROM flows WHERE bot_id = $1 ORDER BY version DESC LIMIT 1)
			RETURNING `+selectColumns,
			botID, active, now))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: bot %s", domain.ErrFlowNotFound, botID)
		}
		result = flow
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Versions returns every version of the bot's flow, ascending.
func (s *FlowStore) Versions(ctx context.Context, botID string) ([]*domain.Flow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+selectColumns+`
		FROM flows
		WHERE bot_id = $1
		ORDER BY version ASC
	`, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flow versions: %w", err)
	}
	defer rows.Close()

	out := []*domain.Flow{}
	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, flow)
	}
	return out, rows.Err()
}

func encodeDocument(flow *domain.Flow) (nodes, connections, variables []byte, err error) {
	if nodes, err = json.Marshal(nonNil(flow.Nodes)); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode nodes: %w", err)
	}
	if connections, err = json.Marshal(nonNil(flow.Connections)); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode connections: %w", err)
	}
	if variables, err = json.Marshal(nonNil(flow.Variables)); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode variables: %w", err)
	}
	return nodes, connections, variables, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func scanFlow(row pgx.Row) (*domain.Flow, error) {
	var (
		flow                          domain.Flow
		nodes, connections, variables []byte
	)
	err := row.Scan(&flow.ID, &flow.BotID, &flow.Version, &flow.IsActive,
		&nodes, &connections, &variables, &flow.CreatedAt, &flow.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(nodes, &flow.Nodes); err != nil {
		return nil, fmt.Errorf("failed to decode nodes: %w", err)
	}
	if err := json.Unmarshal(connections, &flow.Connections); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %w", err)
	}
	if err := json.Unmarshal(variables, &flow.Variables); err != nil {
		return nil, fmt.Errorf("failed to decode variables: %w", err)
	}
	return &flow, nil
}
