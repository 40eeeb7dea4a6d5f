// Package historydb provides the BadgerHold-backed calculation history
// store. History is owner-scoped: every query and mutation is keyed by
// owner, and the per-owner entry count is capped with oldest-first
// eviction at append time.
package historydb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/interfaces"
	"github.com/riskoslabs/riskos/internal/models"
)

// DefaultMaxEntries is the per-owner history cap when none is configured.
const DefaultMaxEntries = 50

// Store is a BadgerHold-backed HistoryStore.
type Store struct {
	db         *badgerhold.Store
	logger     *common.Logger
	maxEntries int

	// ownerLocks serializes append/clear per owner so the cap invariant
	// holds under concurrent writes. Different owners never contend.
	mu         sync.Mutex
	ownerLocks map[string]*sync.Mutex
}

// NewStore opens the history database at the given directory path.
func NewStore(logger *common.Logger, path string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	logger.Debug().Str("path", path).Int("max_entries", maxEntries).Msg("History store opened")

	return &Store{
		db:         db,
		logger:     logger,
		maxEntries: maxEntries,
		ownerLocks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.ownerLocks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.ownerLocks[ownerID] = lock
	}
	return lock
}

func recordKey(ownerID, entryID string) string {
	return ownerID + "\x00" + entryID
}

// Append stores the entry for its owner and prunes the owner's history
// to the configured cap, evicting oldest entries first.
func (s *Store) Append(_ context.Context, entry *models.HistoryEntry) error {
	if entry == nil {
		return fmt.Errorf("history entry is nil")
	}
	if entry.Owner == "" {
		return fmt.Errorf("history entry has no owner")
	}
	if entry.ID == "" {
		return fmt.Errorf("history entry has no id")
	}
	if entry.CalculatedAt.IsZero() {
		entry.CalculatedAt = time.Now()
	}

	snapshot, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	lock := s.ownerLock(entry.Owner)
	lock.Lock()
	defer lock.Unlock()

	record := models.HistoryRecord{
		Owner:        entry.Owner,
		EntryID:      entry.ID,
		Snapshot:     string(snapshot),
		CalculatedAt: entry.CalculatedAt,
	}
	if err := s.db.Upsert(recordKey(entry.Owner, entry.ID), &record); err != nil {
		return fmt.Errorf("failed to save history entry '%s': %w", entry.ID, err)
	}
	s.logger.Debug().Str("owner", entry.Owner).Str("id", entry.ID).Msg("History entry saved")

	return s.pruneOwner(entry.Owner)
}

// pruneOwner deletes the owner's oldest records beyond the cap. Caller
// holds the owner lock.
func (s *Store) pruneOwner(ownerID string) error {
	var records []models.HistoryRecord
	if err := s.db.Find(&records, badgerhold.Where("Owner").Eq(ownerID)); err != nil {
		return fmt.Errorf("failed to load history for pruning: %w", err)
	}
	if len(records) <= s.maxEntries {
		return nil
	}

	// Sort by CalculatedAt descending (newest first)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CalculatedAt.After(records[j].CalculatedAt)
	})

	for _, old := range records[s.maxEntries:] {
		if err := s.db.Delete(recordKey(old.Owner, old.EntryID), models.HistoryRecord{}); err != nil && err != badgerhold.ErrNotFound {
			return fmt.Errorf("failed to prune history entry '%s': %w", old.EntryID, err)
		}
	}
	s.logger.Debug().Str("owner", ownerID).Int("pruned", len(records)-s.maxEntries).Msg("Pruned old history entries")
	return nil
}

// List returns the owner's entries, newest first. Snapshots that no
// longer decode are skipped rather than failing the whole listing.
func (s *Store) List(_ context.Context, ownerID string) ([]*models.HistoryEntry, error) {
	var records []models.HistoryRecord
	if err := s.db.Find(&records, badgerhold.Where("Owner").Eq(ownerID)); err != nil {
		return nil, fmt.Errorf("failed to list history for owner '%s': %w", ownerID, err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CalculatedAt.After(records[j].CalculatedAt)
	})

	entries := make([]*models.HistoryEntry, 0, len(records))
	for _, record := range records {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(record.Snapshot), &entry); err != nil {
			s.logger.Warn().Str("owner", ownerID).Str("id", record.EntryID).Err(err).Msg("Skipping undecodable history snapshot")
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// Clear removes every entry for the owner. Other owners are unaffected.
func (s *Store) Clear(_ context.Context, ownerID string) error {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	var records []models.HistoryRecord
	if err := s.db.Find(&records, badgerhold.Where("Owner").Eq(ownerID)); err != nil {
		return fmt.Errorf("failed to load history for owner '%s': %w", ownerID, err)
	}
	for _, record := range records {
		if err := s.db.Delete(recordKey(record.Owner, record.EntryID), models.HistoryRecord{}); err != nil && err != badgerhold.ErrNotFound {
			return fmt.Errorf("failed to delete history entry '%s': %w", record.EntryID, err)
		}
	}
	s.logger.Debug().Str("owner", ownerID).Int("cleared", len(records)).Msg("History cleared")
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Store implements HistoryStore
var _ interfaces.HistoryStore = (*Store)(nil)
