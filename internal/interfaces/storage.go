// Package interfaces defines service contracts for Riskos
package interfaces

import (
	"context"

	"github.com/riskoslabs/riskos/internal/models"
)

// StorageManager coordinates the storage areas.
type StorageManager interface {
	InternalStore() InternalStore
	HistoryStore() HistoryStore
	Close() error
}

// InternalStore manages system-level key-value configuration.
type InternalStore interface {
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
	Close() error
}

// HistoryStore persists calculation history keyed by owner.
// Implementations must allow concurrent appends from different owners
// without interference and serialize appends/clears for the same owner
// so the bounded-length invariant holds.
type HistoryStore interface {
	// Append stores the entry and prunes the owner's history to the
	// configured cap, oldest first.
	Append(ctx context.Context, entry *models.HistoryEntry) error

	// List returns all entries for the owner, newest first.
	List(ctx context.Context, ownerID string) ([]*models.HistoryEntry, error)

	// Clear removes every entry for the owner. Other owners' entries are
	// unaffected.
	Clear(ctx context.Context, ownerID string) error

	Close() error
}
