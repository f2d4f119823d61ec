// Package store persists the per-group contest-watch flag.
//
// Three drivers: memory (default; flags are lost on restart), bolt (single
// file, single process), and postgres (shared database). Absent groups are
// disabled.
package store

import (
	"context"
	"fmt"
)

// Store tracks which groups opted into contest-watch broadcasts. Enable and
// Disable are idempotent.
type Store interface {
	Enable(ctx context.Context, groupID int64) error
	Disable(ctx context.Context, groupID int64) error
	Enabled(ctx context.Context, groupID int64) (bool, error)
	ListEnabled(ctx context.Context) ([]int64, error)
	Close() error
}

// Open selects a driver by name. The dsn is a file path for bolt and a
// connection URL for postgres; memory ignores it.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "bolt":
		if dsn == "" {
			dsn = "acm-bot.db"
		}
		return OpenBolt(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres store requires DATABASE_URL")
		}
		return OpenPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
