package store

import (
	"time"

	"github.com/thornmill/relabel/internal/shared"
)

const keyHistory = "executionHistory_"

// maxHistoryEntries caps the execution log; the oldest entry is evicted first.
const maxHistoryEntries = 50

// ExecutionRecord is one historical log entry for a completed or aborted
// batch invocation. Records are immutable once appended.
type ExecutionRecord struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	LabelName    string    `json:"label_name"`
	TotalCount   int       `json:"total_count"`
	SuccessCount int       `json:"success_count"`
	FailedCount  int       `json:"failed_count"`
	FailedUIDs   []string  `json:"failed_uids,omitempty"`
	StartTime    time.Time `json:"start_time"`
	DurationMS   int64     `json:"duration_ms"`
	Error        string    `json:"error,omitempty"`
	IsRetry      bool      `json:"is_retry"`
}

// HistoryLog is the bounded, newest-first execution history for one instance.
type HistoryLog struct {
	store *Store
}

// NewHistoryLog creates a HistoryLog over the given store.
func NewHistoryLog(s *Store) *HistoryLog {
	return &HistoryLog{store: s}
}

// Append assigns the record an ID if missing, prepends it, and truncates the
// log to the most recent entries.
func (h *HistoryLog) Append(rec ExecutionRecord) error {
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}

	entries := []ExecutionRecord{}
	if _, err := h.store.Get(keyHistory, &entries); err != nil {
		return err
	}

	entries = append([]ExecutionRecord{rec}, entries...)
	if len(entries) > maxHistoryEntries {
		entries = entries[:maxHistoryEntries]
	}

	return h.store.Set(keyHistory, entries)
}

// Entries returns the log newest-first.
func (h *HistoryLog) Entries() ([]ExecutionRecord, error) {
	entries := []ExecutionRecord{}
	if _, err := h.store.Get(keyHistory, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear drops the history for this instance.
func (h *HistoryLog) Clear() error {
	return h.store.Delete(keyHistory)
}
