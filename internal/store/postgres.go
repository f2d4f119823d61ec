package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores watch flags in a shared database table. Use this driver
// when the bot and another tool need to see the same subscriptions; note
// that the alert dedup set stays process-local either way.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies the connection, and ensures the table.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS watch_groups (
			group_id   BIGINT PRIMARY KEY,
			enabled    BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure watch_groups table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Enable(ctx context.Context, groupID int64) error {
	return s.set(ctx, groupID, true)
}

func (s *Postgres) Disable(ctx context.Context, groupID int64) error {
	return s.set(ctx, groupID, false)
}

func (s *Postgres) set(ctx context.Context, groupID int64, enabled bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO watch_groups (group_id, enabled)
		VALUES ($1, $2)
		ON CONFLICT (group_id)
		DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()`,
		groupID, enabled)
	if err != nil {
		return fmt.Errorf("set watch flag: %w", err)
	}
	return nil
}

func (s *Postgres) Enabled(ctx context.Context, groupID int64) (bool, error) {
	var enabled bool
	err := s.pool.QueryRow(ctx,
		`SELECT enabled FROM watch_groups WHERE group_id = $1`, groupID).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("read watch flag: %w", err)
	}
	return enabled, nil
}

func (s *Postgres) ListEnabled(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT group_id FROM watch_groups WHERE enabled ORDER BY group_id`)
	if err != nil {
		return nil, fmt.Errorf("list enabled groups: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
