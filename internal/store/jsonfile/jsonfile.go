// Package jsonfile persists the ledger the way the original app used browser
// local storage: one JSON document per key, stored as files in a data
// directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"receber/internal/core"
	"receber/internal/store"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Load reads the primary record. A missing or unparsable file is treated as
// an empty store, not an error.
func (s *Store) Load(ctx context.Context) (*core.Snapshot, error) {
	raw, err := os.ReadFile(s.path(store.DataKey))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		slog.WarnContext(ctx, "Snapshot file unreadable, starting empty",
			"path", s.path(store.DataKey), "error", err)
		return nil, nil
	}
	return &snap, nil
}

func (s *Store) Save(ctx context.Context, snap *core.Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.writeKey(store.DataKey, raw)
}

func (s *Store) LoadTheme(ctx context.Context) (bool, error) {
	raw, err := os.ReadFile(s.path(store.ThemeKey))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read theme: %w", err)
	}
	var dark bool
	if err := json.Unmarshal(raw, &dark); err != nil {
		return false, nil
	}
	return dark, nil
}

func (s *Store) SaveTheme(ctx context.Context, dark bool) error {
	raw, err := json.Marshal(dark)
	if err != nil {
		return err
	}
	return s.writeKey(store.ThemeKey, raw)
}

func (s *Store) Close() error { return nil }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// writeKey writes via a temp file and rename so a crash mid-write never
// leaves a truncated record behind.
func (s *Store) writeKey(key string, raw []byte) error {
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}
