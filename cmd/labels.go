package main

import (
	"context"
	"fmt"

	"github.com/thornmill/relabel/internal/tasks"
	"github.com/urfave/cli/v3"
)

// LabelsRecent prints the most-recently-used label suggestions.
func (r *Runner) LabelsRecent(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	labels, err := engine.RecentLabels()
	if err != nil {
		return fmt.Errorf("failed to read recent labels: %w", err)
	}

	return r.writeLabelList(cmd, "Recent Labels", labels)
}

// LabelsAll prints the alphabetical all-labels suggestion list.
func (r *Runner) LabelsAll(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	labels, err := engine.AllLabels()
	if err != nil {
		return fmt.Errorf("failed to read labels: %w", err)
	}

	return r.writeLabelList(cmd, "All Labels", labels)
}

func (r *Runner) writeLabelList(cmd *cli.Command, title string, labels []string) error {
	if cmd.Bool("json") {
		return r.writeJSON(labels, cmd.Bool("pretty"))
	}

	if len(labels) == 0 {
		r.writePlain("No labels recorded yet.\n")
		r.writePlain("%s\n", r.palette.Help("Run a batch or 'relabel labels scan' to populate suggestions."))
		return nil
	}

	r.writePlain("%s\n", r.palette.Title(title))
	for _, label := range labels {
		r.writePlain("  %s\n", label)
	}

	return nil
}

// LabelsScan fetches photo details to seed the suggestion lists and ID cache.
func (r *Runner) LabelsScan(ctx context.Context, cmd *cli.Command) error {
	sel, err := r.fetchSelection(ctx, cmd)
	if err != nil {
		return err
	}

	engine, cleanup, err := r.openEngine(sel.Token)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := tasks.ScanOpts{
		NumWorkers: r.config.Scan.Workers,
		RateLimit:  r.config.Scan.RateLimit,
	}
	if workers := int(cmd.Int("workers")); workers > 0 {
		opts.NumWorkers = workers
	}
	if limit := cmd.Float("rate"); limit > 0 {
		opts.RateLimit = limit
	}

	r.logger.Info("scanning labels", "photos", len(sel.Identifiers), "workers", opts.NumWorkers)
	r.writePlain("Scanning %d photos for labels...\n\n", len(sel.Identifiers))

	progressCh := make(chan tasks.ProgressUpdate, len(sel.Identifiers)+8)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		r.renderProgress(progressCh)
	}()

	result, err := engine.ScanLabels(ctx, progressCh, sel.Identifiers, opts)
	close(progressCh)
	<-rendered

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Scan Complete")
	r.writePlain("Scanned: %s\n", r.palette.OK(fmt.Sprintf("%d/%d", result.ScannedPhotos, result.TotalPhotos)))
	r.writePlain("Labels found: %d\n", result.LabelsFound)
	if result.FailedPhotos > 0 {
		r.writePlain("Failed: %s\n", r.palette.Err(fmt.Sprintf("%d", result.FailedPhotos)))
	}

	return nil
}

// LabelsClear drops the suggestion lists and the label ID cache.
func (r *Runner) LabelsClear(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.ClearLabels(); err != nil {
		return fmt.Errorf("failed to clear labels: %w", err)
	}

	r.writePlain("✓ Label suggestions and ID cache cleared\n")
	return nil
}

// ClearState drops every stored value for the configured instance.
func (r *Runner) ClearState(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.ClearState(); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}

	r.logger.Info("instance state cleared", "server", r.config.Server.URL)
	r.writePlain("✓ Cleared all stored state for %s\n", r.config.Server.URL)
	return nil
}
