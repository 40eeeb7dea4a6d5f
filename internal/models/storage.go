package models

import "time"

// SystemKeyValue is a system-level configuration key-value pair
// (API keys, schema version, runtime settings).
type SystemKeyValue struct {
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	Version  int       `json:"version"`
	DateTime time.Time `json:"datetime"`
}

// HistoryRecord is the persisted form of a HistoryEntry in the history
// store. The entry is stored as a JSON snapshot so that engine format
// changes can never retroactively corrupt stored history.
type HistoryRecord struct {
	Owner        string    `json:"owner" badgerhold:"index"`
	EntryID      string    `json:"entry_id"`
	Snapshot     string    `json:"snapshot"`
	CalculatedAt time.Time `json:"calculated_at"`
}
