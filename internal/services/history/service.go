// Package history manages the bounded per-owner calculation history.
package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/interfaces"
	"github.com/riskoslabs/riskos/internal/models"
)

// Service implements HistoryService on top of a HistoryStore.
type Service struct {
	store  interfaces.HistoryStore
	logger *common.Logger
}

// NewService creates a new history service.
func NewService(store interfaces.HistoryStore, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{store: store, logger: logger}
}

// Append persists a completed calculation for the owner. The entry ID is
// assigned here if unset. The caller decides whether a failure is fatal;
// for analysis flows it is downgraded to a warning.
func (s *Service) Append(ctx context.Context, ownerID string, entry *models.HistoryEntry) error {
	if entry == nil {
		return fmt.Errorf("history entry is nil")
	}
	entry.Owner = ownerID
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if err := s.store.Append(ctx, entry); err != nil {
		s.logger.Error().Str("owner", ownerID).Str("id", entry.ID).Err(err).Msg("Failed to persist history entry")
		return fmt.Errorf("failed to persist history entry: %w", err)
	}

	s.logger.Info().Str("owner", ownerID).Str("id", entry.ID).Str("mode", string(entry.Mode)).Msg("History entry persisted")
	return nil
}

// List returns the owner's history, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]*models.HistoryEntry, error) {
	entries, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for owner '%s': %w", ownerID, err)
	}
	return entries, nil
}

// Clear removes all history for the owner.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	if err := s.store.Clear(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to clear history for owner '%s': %w", ownerID, err)
	}
	s.logger.Info().Str("owner", ownerID).Msg("History cleared")
	return nil
}

// Ensure Service implements HistoryService
var _ interfaces.HistoryService = (*Service)(nil)
