package main

import (
	"context"
	"fmt"

	"github.com/thornmill/relabel/internal/services"
	"github.com/thornmill/relabel/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Apply adds a label to every photo in the selection.
func (r *Runner) Apply(ctx context.Context, cmd *cli.Command) error {
	return r.runBatch(ctx, cmd, tasks.ActionAdd)
}

// Remove strips a label from every photo in the selection.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	return r.runBatch(ctx, cmd, tasks.ActionRemove)
}

func (r *Runner) runBatch(ctx context.Context, cmd *cli.Command, action tasks.Action) error {
	labelName := cmd.String("label")

	sel, err := r.fetchSelection(ctx, cmd)
	if err != nil {
		return err
	}

	engine, cleanup, err := r.openEngine(sel.Token)
	if err != nil {
		return err
	}
	defer cleanup()

	r.logger.Info("starting batch", "action", action, "label", labelName, "photos", len(sel.Identifiers))

	progressCh := make(chan tasks.ProgressUpdate, len(sel.Identifiers)+8)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		r.renderProgress(progressCh)
	}()

	result, err := engine.Run(ctx, progressCh, action, labelName, sel.Identifiers)
	close(progressCh)
	<-rendered

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	return r.writeBatchSummary(result)
}

// Retry re-runs a recorded failure group.
func (r *Runner) Retry(ctx context.Context, cmd *cli.Command) error {
	groupIndex := int(cmd.Int("group"))

	token, err := r.resolveToken(cmd.String("token"), "")
	if err != nil {
		return err
	}

	engine, cleanup, err := r.openEngine(token)
	if err != nil {
		return err
	}
	defer cleanup()

	r.logger.Info("retrying failure group", "group", groupIndex)

	progressCh := make(chan tasks.ProgressUpdate, 64)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		r.renderProgress(progressCh)
	}()

	result, err := engine.Retry(ctx, progressCh, groupIndex)
	close(progressCh)
	<-rendered

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	return r.writeBatchSummary(result)
}

// fetchSelection resolves the batch's identifiers and session token.
//
// Explicit --uid flags take precedence over the selection file.
func (r *Runner) fetchSelection(ctx context.Context, cmd *cli.Command) (*services.Selection, error) {
	uids := cmd.StringSlice("uid")

	if len(uids) > 0 {
		token, err := r.resolveToken(cmd.String("token"), "")
		if err != nil {
			return nil, err
		}
		src := &services.StaticSelectionSource{
			Identifiers:    uids,
			Token:          token,
			Origin:         r.config.Server.URL,
			AllowedOrigins: r.config.Selection.AllowedOrigins,
		}
		return src.Fetch(ctx)
	}

	path := cmd.String("selection")
	if path == "" {
		path = r.config.Selection.Path
	}

	src := &services.FileSelectionSource{
		Path:           path,
		Origin:         r.config.Server.URL,
		AllowedOrigins: r.config.Selection.AllowedOrigins,
	}

	sel, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	token, err := r.resolveToken(cmd.String("token"), sel.Token)
	if err != nil {
		return nil, err
	}
	sel.Token = token

	return sel, nil
}

func (r *Runner) renderProgress(progressCh <-chan tasks.ProgressUpdate) {
	for update := range progressCh {
		switch update.Phase {
		case tasks.ResolveLabel:
			r.writePlain("🔎 %s\n", update.Message)
		case tasks.Dispatch, tasks.ScanDetails:
			if update.Failed {
				r.writePlain("   %s\n", r.palette.Err(update.Message))
			} else {
				r.writePlain("   %s\n", update.Message)
			}
		}
	}
}

func (r *Runner) writeBatchSummary(result *tasks.BatchResult) error {
	r.writePlain("\n")
	r.writePlainHeader("Batch Complete")
	r.writePlain("Action: %s %q\n", result.Action, result.LabelName)
	r.writePlain("Succeeded: %s\n", r.palette.OK(fmt.Sprintf("%d/%d", result.SuccessCount, result.TotalCount)))

	if result.FailedCount > 0 {
		r.writePlain("Failed: %s\n", r.palette.Err(fmt.Sprintf("%d", result.FailedCount)))
		for _, uid := range result.FailedUIDs {
			r.writePlain("  - %s\n", uid)
		}
		r.writePlain("%s\n", r.palette.Help("Run 'relabel retry' to re-run the failed photos."))
	}

	return nil
}
