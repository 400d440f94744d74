// Package backend selects and wires a persistence backend from
// configuration, the one place that knows about every store implementation.
package backend

import (
	"fmt"
	"log/slog"

	"receber/internal/storage"
	"receber/internal/store"
	"receber/internal/store/jsonfile"
	"receber/internal/store/memory"
)

type Type string

const (
	JSONFile Type = "jsonfile"
	SQLite   Type = "sqlite"
	Memory   Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case JSONFile, SQLite, Memory:
		return true
	default:
		return false
	}
}

type Config struct {
	Type         Type
	DataDir      string // jsonfile
	SQLiteDBPath string // sqlite
}

// Result bundles the store with its cleanup.
type Result struct {
	Store   store.Store
	Cleanup func() error
}

// Open builds the configured store.
func Open(cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Type {
	case JSONFile:
		st, err := jsonfile.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize jsonfile store: %w", err)
		}
		logger.Info("Initialized jsonfile backend", "dir", cfg.DataDir)
		return &Result{Store: st, Cleanup: st.Close}, nil
	case SQLite:
		repo, err := storage.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil
	case Memory:
		st := memory.New()
		logger.Info("Initialized memory backend")
		return &Result{Store: st, Cleanup: st.Close}, nil
	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}
}
