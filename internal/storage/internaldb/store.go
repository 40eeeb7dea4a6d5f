// Package internaldb implements InternalStore using BadgerHold.
// It holds system-level key-value configuration (API keys, schema
// version, runtime settings).
package internaldb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/interfaces"
	"github.com/riskoslabs/riskos/internal/models"
)

// Store implements interfaces.InternalStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new InternalStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create internal db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open internal db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("InternalDB opened")
	return &Store{db: db, logger: logger}, nil
}

// GetSystemKV returns the value for a system key, or "" when the key has
// never been set. Absence is not an error: callers fall back to env or
// config defaults.
func (s *Store) GetSystemKV(_ context.Context, key string) (string, error) {
	var kv models.SystemKeyValue
	if err := s.db.Get(key, &kv); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get system kv '%s': %w", key, err)
	}
	return kv.Value, nil
}

// SetSystemKV stores a system key-value pair, bumping its version.
func (s *Store) SetSystemKV(_ context.Context, key, value string) error {
	version := 1
	var existing models.SystemKeyValue
	if err := s.db.Get(key, &existing); err == nil {
		version = existing.Version + 1
	}

	kv := &models.SystemKeyValue{
		Key:      key,
		Value:    value,
		Version:  version,
		DateTime: time.Now(),
	}
	if err := s.db.Upsert(key, kv); err != nil {
		return fmt.Errorf("failed to set system kv '%s': %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("version", version).Msg("System KV saved")
	return nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Store implements InternalStore
var _ interfaces.InternalStore = (*Store)(nil)
