// Package tasks orchestrates batch label operations against a remote photo server with real-time progress reporting.
//
// # Core Operations
//
// The [BatchEngine] interface defines the engine's operations:
//
//  1. [BatchEngine.Run] : Apply or remove one label across a batch
//     - "remove" resolves the label ID once (cache, then sample photo detail)
//     - dispatches one call per identifier concurrently, no concurrency cap
//     - waits for every call to settle; partial failure is a normal outcome
//     - records the execution and updates the failure tracker
//
//  2. [BatchEngine.Retry] : Re-run a failure group
//     - re-dispatches exactly the group's outstanding identifiers
//     - full success removes the group; partial success updates it in place
//
//  3. [BatchEngine.ScanLabels] : Seed label suggestions
//     - fetches photo details through a rate-limited worker pool
//     - merges discovered labels into the all-labels list and ID cache
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct carries a phase, monotonic step counters, and a
// display message. Updates use select with default to prevent blocking, so a
// slow consumer can only ever drop updates, never stall a batch.
//
// # Persistence
//
// [Engine] implements [BatchEngine] with dependencies on:
//   - [services.Service] : the photo server API client
//   - store.LabelCache / store.LabelLists : label ID cache and suggestions
//   - store.HistoryLog / store.FailureLog : execution history and retry state
//
// All four stores are scoped to the active instance; nothing is shared across
// server deployments.
package tasks
