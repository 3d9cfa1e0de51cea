package store

import (
	"fmt"
	"time"

	"github.com/thornmill/relabel/internal/shared"
)

const keyFailures = "failedOperations_"

// maxFailureGroups caps the failure log; the oldest group is evicted first.
const maxFailureGroups = 20

// FailureGroup is the outstanding-failure record for one (action, label)
// pair. At most one group per key exists at any time.
type FailureGroup struct {
	Action     string    `json:"action"`
	LabelName  string    `json:"label_name"`
	FailedUIDs []string  `json:"failed_uids"`
	Timestamp  time.Time `json:"timestamp"`
	RetryCount int       `json:"retry_count"`
}

// key returns the case-insensitive group key.
func (g FailureGroup) key() string {
	return g.Action + "|" + shared.NormalizeLabelKey(g.LabelName)
}

// FailureLog is the bounded set of outstanding failure groups for one instance.
type FailureLog struct {
	store *Store
}

// NewFailureLog creates a FailureLog over the given store.
func NewFailureLog(s *Store) *FailureLog {
	return &FailureLog{store: s}
}

// Report records failed identifiers for an (action, label) pair.
//
// An existing group for the same key has its failedUIDs replaced and its
// timestamp refreshed; retryCount is bumped only when the report comes from a
// retry. A new group is inserted at the front and the log truncated.
func (f *FailureLog) Report(action, labelName string, failedUIDs []string, isRetry bool) error {
	groups, err := f.Groups()
	if err != nil {
		return err
	}

	incoming := FailureGroup{
		Action:     action,
		LabelName:  labelName,
		FailedUIDs: failedUIDs,
		Timestamp:  time.Now(),
	}

	replaced := false
	for i, g := range groups {
		if g.key() == incoming.key() {
			incoming.RetryCount = g.RetryCount
			if isRetry {
				incoming.RetryCount++
			}
			groups[i] = incoming
			replaced = true
			break
		}
	}

	if !replaced {
		if isRetry {
			incoming.RetryCount = 1
		}
		groups = append([]FailureGroup{incoming}, groups...)
		if len(groups) > maxFailureGroups {
			groups = groups[:maxFailureGroups]
		}
	}

	return f.store.Set(keyFailures, groups)
}

// Clear removes any group matching the key, case-insensitively.
func (f *FailureLog) Clear(action, labelName string) error {
	groups, err := f.Groups()
	if err != nil {
		return err
	}

	target := FailureGroup{Action: action, LabelName: labelName}
	next := groups[:0]
	for _, g := range groups {
		if g.key() != target.key() {
			next = append(next, g)
		}
	}

	if len(next) == len(groups) {
		return nil
	}

	return f.store.Set(keyFailures, next)
}

// Groups returns all outstanding failure groups, newest-first.
func (f *FailureLog) Groups() ([]FailureGroup, error) {
	groups := []FailureGroup{}
	if _, err := f.store.Get(keyFailures, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Group returns the failure group at the given index.
func (f *FailureLog) Group(index int) (FailureGroup, error) {
	groups, err := f.Groups()
	if err != nil {
		return FailureGroup{}, err
	}

	if index < 0 || index >= len(groups) {
		return FailureGroup{}, fmt.Errorf("%w: no failure group at index %d", shared.ErrInvalidArgument, index)
	}

	return groups[index], nil
}

// ClearAll drops every failure group for this instance.
func (f *FailureLog) ClearAll() error {
	return f.store.Delete(keyFailures)
}
