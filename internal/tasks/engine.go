package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/thornmill/relabel/internal/services"
	"github.com/thornmill/relabel/internal/shared"
	"github.com/thornmill/relabel/internal/store"
)

// Action names a batch label operation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// BatchResult contains the aggregate outcome of one batch invocation.
type BatchResult struct {
	Action       Action   // Operation performed
	LabelName    string   // Label the batch operated on
	TotalCount   int      // Identifiers dispatched
	SuccessCount int      // Calls that succeeded
	FailedCount  int      // Calls that failed
	FailedUIDs   []string // Identifiers whose calls failed
}

// BatchEngine defines operations for running label batches against a photo server.
type BatchEngine interface {
	// Run applies or removes a label across a batch of photo identifiers,
	// recording the outcome and updating the failure tracker.
	Run(ctx context.Context, progress chan<- ProgressUpdate, action Action, labelName string, uids []string) (*BatchResult, error)

	// Retry re-runs the failure group at the given index over exactly its
	// outstanding identifiers.
	Retry(ctx context.Context, progress chan<- ProgressUpdate, groupIndex int) (*BatchResult, error)

	// ScanLabels fetches photo details through a worker pool and merges
	// discovered labels into the suggestion lists and ID cache.
	ScanLabels(ctx context.Context, progress chan<- ProgressUpdate, uids []string, opts ScanOpts) (*ScanResult, error)
}

// Engine implements BatchEngine over instance-scoped stores.
type Engine struct {
	svc      services.Service
	cache    *store.LabelCache
	lists    *store.LabelLists
	history  *store.HistoryLog
	failures *store.FailureLog
}

// NewEngine creates a new Engine with the provided service and store.
func NewEngine(svc services.Service, st *store.Store) *Engine {
	return &Engine{
		svc:      svc,
		cache:    store.NewLabelCache(st),
		lists:    store.NewLabelLists(st),
		history:  store.NewHistoryLog(st),
		failures: store.NewFailureLog(st),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run applies or removes a label across a batch of photo identifiers.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, action Action, labelName string, uids []string) (*BatchResult, error) {
	return e.run(ctx, progress, action, labelName, uids, false)
}

func (e *Engine) run(ctx context.Context, progress chan<- ProgressUpdate, action Action, labelName string, uids []string, isRetry bool) (*BatchResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: photo service not initialized", shared.ErrServiceUnavailable)
	}
	if action != ActionAdd && action != ActionRemove {
		return nil, fmt.Errorf("%w: unknown action %q", shared.ErrInvalidArgument, action)
	}
	if strings.TrimSpace(labelName) == "" {
		return nil, fmt.Errorf("%w: label name cannot be empty", shared.ErrInvalidInput)
	}

	start := time.Now()

	if len(uids) == 0 {
		err := fmt.Errorf("%w: empty batch for label %q", shared.ErrNoItemsSelected, labelName)
		e.recordAborted(action, labelName, 0, start, err, isRetry)
		return nil, err
	}

	total := len(uids)

	// Removal needs the numeric label ID; resolve it once from the first
	// identifier before any delete is issued. A resolution failure aborts
	// the whole batch.
	var labelID int
	if action == ActionRemove {
		e.sendProgress(progress, resolveUpdate(labelName, uids[0]))

		id, err := e.resolveLabelID(ctx, labelName, uids[0])
		if err != nil {
			e.recordAborted(action, labelName, total, start, err, isRetry)
			return nil, err
		}
		labelID = id
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	processed := 0
	success := 0
	failed := make([]string, 0)

	// One call per identifier, all in flight at once. Batch sizes come from
	// a manual selection, so no concurrency ceiling is applied.
	for _, uid := range uids {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()

			err := e.dispatchOne(ctx, action, labelName, labelID, uid)

			mu.Lock()
			processed++
			if err != nil {
				failed = append(failed, uid)
			} else {
				success++
			}
			e.sendProgress(progress, dispatchUpdate(processed, total, uid, err != nil))
			mu.Unlock()
		}(uid)
	}
	wg.Wait()

	result := &BatchResult{
		Action:       action,
		LabelName:    labelName,
		TotalCount:   total,
		SuccessCount: success,
		FailedCount:  len(failed),
		FailedUIDs:   failed,
	}

	rec := store.ExecutionRecord{
		Action:       string(action),
		LabelName:    labelName,
		TotalCount:   total,
		SuccessCount: success,
		FailedCount:  len(failed),
		FailedUIDs:   failed,
		StartTime:    start,
		DurationMS:   time.Since(start).Milliseconds(),
		IsRetry:      isRetry,
	}
	if err := e.history.Append(rec); err != nil {
		return result, fmt.Errorf("batch completed but failed to record history: %w", err)
	}

	if err := e.lists.Record(labelName); err != nil {
		return result, fmt.Errorf("batch completed but failed to update label lists: %w", err)
	}

	if len(failed) > 0 {
		if err := e.failures.Report(string(action), labelName, failed, isRetry); err != nil {
			return result, fmt.Errorf("batch completed but failed to track failures: %w", err)
		}
	} else {
		if err := e.failures.Clear(string(action), labelName); err != nil {
			return result, fmt.Errorf("batch completed but failed to clear failure group: %w", err)
		}
	}

	return result, nil
}

// dispatchOne issues the API call for a single identifier.
//
// Removal treats 404 as success: the label already being absent is the
// desired end state, not an error.
func (e *Engine) dispatchOne(ctx context.Context, action Action, labelName string, labelID int, uid string) error {
	if action == ActionAdd {
		return e.svc.AddLabel(ctx, uid, labelName)
	}

	err := e.svc.RemoveLabel(ctx, uid, labelID)

	var statusErr *services.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil
	}

	return err
}

// recordAborted persists a whole-batch failure before dispatch.
// Best effort: an aborted batch is already surfacing its own error.
func (e *Engine) recordAborted(action Action, labelName string, total int, start time.Time, cause error, isRetry bool) {
	_ = e.history.Append(store.ExecutionRecord{
		Action:     string(action),
		LabelName:  labelName,
		TotalCount: total,
		StartTime:  start,
		DurationMS: time.Since(start).Milliseconds(),
		Error:      cause.Error(),
		IsRetry:    isRetry,
	})
}

// Retry re-runs the failure group at the given index.
//
// Full success removes the group (via the clear path in run); partial success
// replaces the group's identifiers and bumps its retry count. The outcome is
// recorded with IsRetry set.
func (e *Engine) Retry(ctx context.Context, progress chan<- ProgressUpdate, groupIndex int) (*BatchResult, error) {
	group, err := e.failures.Group(groupIndex)
	if err != nil {
		return nil, err
	}

	return e.run(ctx, progress, Action(group.Action), group.LabelName, group.FailedUIDs, true)
}

// History returns the execution log, newest-first.
func (e *Engine) History() ([]store.ExecutionRecord, error) {
	return e.history.Entries()
}

// Failures returns the outstanding failure groups, newest-first.
func (e *Engine) Failures() ([]store.FailureGroup, error) {
	return e.failures.Groups()
}

// RecentLabels returns the most-recent-first label suggestions.
func (e *Engine) RecentLabels() ([]string, error) {
	return e.lists.Recent()
}

// AllLabels returns the sorted all-labels suggestion list.
func (e *Engine) AllLabels() ([]string, error) {
	return e.lists.All()
}

// ClearLabels drops the suggestion lists and the label ID cache.
func (e *Engine) ClearLabels() error {
	if err := e.cache.Clear(); err != nil {
		return err
	}
	return e.lists.Clear()
}

// ClearHistory drops the execution log.
func (e *Engine) ClearHistory() error {
	return e.history.Clear()
}

// ClearFailures removes failure groups. Empty arguments clear every group;
// otherwise only the group matching the action and label goes.
func (e *Engine) ClearFailures(action, labelName string) error {
	if action == "" && labelName == "" {
		return e.failures.ClearAll()
	}
	return e.failures.Clear(action, labelName)
}

// ClearState drops every cached value for the active instance: label cache,
// suggestion lists, execution history, and failure groups.
func (e *Engine) ClearState() error {
	if err := e.cache.Clear(); err != nil {
		return err
	}
	if err := e.lists.Clear(); err != nil {
		return err
	}
	if err := e.history.Clear(); err != nil {
		return err
	}
	return e.failures.ClearAll()
}
