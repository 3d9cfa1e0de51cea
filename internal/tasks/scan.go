package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/thornmill/relabel/internal/services"
	"github.com/thornmill/relabel/internal/shared"
	"golang.org/x/time/rate"
)

// ScanOpts contains configuration for bulk label scans.
type ScanOpts struct {
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Requests per second (default: 5)
}

// ScanResult summarizes a bulk label scan.
type ScanResult struct {
	TotalPhotos   int      // Identifiers submitted
	ScannedPhotos int      // Details fetched successfully
	FailedPhotos  int      // Details that could not be fetched
	FailedUIDs    []string // Identifiers whose fetch failed
	LabelsFound   int      // Distinct labels merged into the suggestion lists
}

type scanOutcome struct {
	uid    string
	labels []services.Label
	err    error
}

// ScanLabels fetches photo details concurrently and merges discovered labels
// into the all-labels suggestion list and the label ID cache.
//
// This method implements a worker pool with rate limiting: detail fetches are
// read-only and can be numerous, so unlike batch dispatch they respect an API
// rate ceiling.
func (e *Engine) ScanLabels(ctx context.Context, progress chan<- ProgressUpdate, uids []string, opts ScanOpts) (*ScanResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: photo service not initialized", shared.ErrServiceUnavailable)
	}
	if len(uids) == 0 {
		return nil, fmt.Errorf("%w: nothing to scan", shared.ErrNoItemsSelected)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(uids))
	results := make(chan scanOutcome, len(uids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.scanWorker(ctx, &wg, limiter, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, uid := range uids {
			select {
			case <-ctx.Done():
				return
			case jobs <- uid:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &ScanResult{TotalPhotos: len(uids)}
	seen := map[string]services.Label{}

	completed := 0
	for outcome := range results {
		completed++

		if outcome.err != nil {
			result.FailedPhotos++
			result.FailedUIDs = append(result.FailedUIDs, outcome.uid)
			e.sendProgress(progress, scanFailedUpdate(completed, len(uids), outcome.uid, outcome.err))
			continue
		}

		result.ScannedPhotos++
		for _, label := range outcome.labels {
			seen[shared.NormalizeLabelKey(label.Name)] = label
		}
		e.sendProgress(progress, scanUpdate(completed, len(uids), outcome.uid, len(outcome.labels)))
	}

	names := make([]string, 0, len(seen))
	for _, label := range seen {
		names = append(names, label.Name)
		if err := e.cache.Put(label.Name, label.ID); err != nil {
			return result, fmt.Errorf("scan completed but failed to cache label %q: %w", label.Name, err)
		}
	}

	if err := e.lists.Merge(names); err != nil {
		return result, fmt.Errorf("scan completed but failed to merge labels: %w", err)
	}
	result.LabelsFound = len(names)

	return result, nil
}

// scanWorker is a worker goroutine that fetches photo details from the jobs channel.
func (e *Engine) scanWorker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter, jobs <-chan string, results chan<- scanOutcome) {
	defer wg.Done()

	for uid := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- scanOutcome{uid: uid, err: err}
			continue
		}

		photo, err := e.svc.GetPhoto(ctx, uid)
		if err != nil {
			results <- scanOutcome{uid: uid, err: err}
			continue
		}

		results <- scanOutcome{uid: uid, labels: photo.Labels}
	}
}
