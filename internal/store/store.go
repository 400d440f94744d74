// Package store defines the persistence port of the ledger and the keys of
// the two independent persisted records: the primary snapshot and the theme
// preference flag.
package store

import (
	"context"

	"receber/internal/core"
)

// Key names carried over from the original browser data so existing exports
// and backups keep their identity.
const (
	DataKey  = "contas-a-receber-data-v1"
	ThemeKey = "contas-a-receber-dark"
)

// Store persists the full snapshot write-through after every mutation and
// the standalone theme flag, which has its own lifecycle.
//
// Load returns (nil, nil) when nothing is stored yet; implementations also
// treat unreadable content as absence (the caller falls back to an empty
// ledger) rather than failing startup.
type Store interface {
	Load(ctx context.Context) (*core.Snapshot, error)
	Save(ctx context.Context, snap *core.Snapshot) error

	LoadTheme(ctx context.Context) (bool, error)
	SaveTheme(ctx context.Context, dark bool) error

	Close() error
}
