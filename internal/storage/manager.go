// Package storage provides the top-level StorageManager that coordinates
// the 2 storage areas: internaldb and historydb.
package storage

import (
	"fmt"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/interfaces"
	"github.com/riskoslabs/riskos/internal/storage/historydb"
	"github.com/riskoslabs/riskos/internal/storage/internaldb"
)

// Manager implements interfaces.StorageManager using 2 storage areas.
type Manager struct {
	internal *internaldb.Store
	history  *historydb.Store
	logger   *common.Logger
}

// NewManager creates a new StorageManager with the 2 storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	internalStore, err := internaldb.NewStore(logger, config.Storage.Internal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create internal store: %w", err)
	}

	historyStore, err := historydb.NewStore(logger, config.Storage.History.Path, config.History.GetMaxEntries())
	if err != nil {
		internalStore.Close()
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	logger.Info().
		Str("internal", config.Storage.Internal.Path).
		Str("history", config.Storage.History.Path).
		Msg("Storage manager initialized (2 areas)")

	return &Manager{
		internal: internalStore,
		history:  historyStore,
		logger:   logger,
	}, nil
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internal
}

func (m *Manager) HistoryStore() interfaces.HistoryStore {
	return m.history
}

func (m *Manager) Close() error {
	var firstErr error
	if err := m.internal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.history.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
