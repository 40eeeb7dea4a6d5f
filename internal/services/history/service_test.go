package history

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/models"
)

// --- Mock store ---

type mockStore struct {
	appendErr error
	entries   map[string][]*models.HistoryEntry
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[string][]*models.HistoryEntry)}
}

func (m *mockStore) Append(_ context.Context, entry *models.HistoryEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries[entry.Owner] = append(m.entries[entry.Owner], entry)
	return nil
}

func (m *mockStore) List(_ context.Context, ownerID string) ([]*models.HistoryEntry, error) {
	entries := append([]*models.HistoryEntry(nil), m.entries[ownerID]...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CalculatedAt.After(entries[j].CalculatedAt)
	})
	return entries, nil
}

func (m *mockStore) Clear(_ context.Context, ownerID string) error {
	delete(m.entries, ownerID)
	return nil
}

func (m *mockStore) Close() error { return nil }

// --- Tests ---

func TestAppend_AssignsIDAndOwner(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, common.NewSilentLogger())

	entry := &models.HistoryEntry{Mode: models.ModeCalculate, CalculatedAt: time.Now()}
	err := svc.Append(context.Background(), "alice", entry)
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "alice", entry.Owner)
	require.Len(t, store.entries["alice"], 1)
}

func TestAppend_NilEntry(t *testing.T) {
	svc := NewService(newMockStore(), common.NewSilentLogger())
	err := svc.Append(context.Background(), "alice", nil)
	require.Error(t, err)
}

func TestAppend_StoreFailureSurfaces(t *testing.T) {
	store := newMockStore()
	store.appendErr = assert.AnError
	svc := NewService(store, common.NewSilentLogger())

	err := svc.Append(context.Background(), "alice", &models.HistoryEntry{})
	require.Error(t, err)
}

func TestList_NewestFirst(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, common.NewSilentLogger())
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		entry := &models.HistoryEntry{CalculatedAt: now.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, svc.Append(ctx, "alice", entry))
	}

	entries, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].CalculatedAt.After(entries[2].CalculatedAt))
}

func TestClear(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, "alice", &models.HistoryEntry{}))
	require.NoError(t, svc.Clear(ctx, "alice"))

	entries, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
