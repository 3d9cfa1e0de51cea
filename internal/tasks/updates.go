package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	UID     string // Identifier the update concerns, when applicable
	Failed  bool   // Whether the completed step failed
}

// Operation phase enumeration
type Phase int

const (
	ResolveLabel Phase = iota
	Dispatch
	ScanDetails
)

func (p Phase) String() string {
	switch p {
	case ResolveLabel:
		return "resolve_label"
	case Dispatch:
		return "dispatch"
	case ScanDetails:
		return "scan_details"
	default:
		return ""
	}
}

func resolveUpdate(labelName, sampleUID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveLabel,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving label %q via photo %s...", labelName, sampleUID),
		UID:     sampleUID,
	}
}

func dispatchUpdate(step, total int, uid string, failed bool) ProgressUpdate {
	mark := "✓"
	if failed {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   Dispatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, uid),
		UID:     uid,
		Failed:  failed,
	}
}

func scanUpdate(step, total int, uid string, labelCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d labels)", step, total, uid, labelCount),
		UID:     uid,
	}
}

func scanFailedUpdate(step, total int, uid string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, uid, err),
		UID:     uid,
		Failed:  true,
	}
}
