package main

import (
	"context"
	"fmt"

	"github.com/thornmill/relabel/internal/formatter"
	"github.com/thornmill/relabel/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints the execution log, newest-first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := engine.History()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		r.writePlain("No executions recorded.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Execution History (%d)", len(records)))
	for i, rec := range records {
		marker := ""
		if rec.IsRetry {
			marker = r.palette.Warn(" (retry)")
		}
		r.writePlain("%d. %s %q%s: %d/%d succeeded, %s\n",
			i+1, rec.Action, rec.LabelName, marker, rec.SuccessCount, rec.TotalCount,
			rec.StartTime.Format("2006-01-02 15:04"))
		if rec.Error != "" {
			r.writePlain("   %s\n", r.palette.Err("aborted: "+rec.Error))
		}
	}

	return nil
}

// HistoryExport writes the execution log to a file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := engine.History()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	var path string
	switch format {
	case "csv":
		path, err = formatter.WriteCSVExport(records, output)
	case "json":
		path, err = formatter.WriteJSONExport(records, output)
	case "text", "txt":
		path, err = formatter.WriteTextExport(records, output)
	default:
		return fmt.Errorf("%w: unknown format %q (expected csv, json, or text)", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}

	r.logger.Info("history exported", "format", format, "file", path)
	r.writePlain("✓ Exported %d executions to %s\n", len(records), path)
	return nil
}

// HistoryClear drops the execution log.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.ClearHistory(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	r.writePlain("✓ Execution history cleared\n")
	return nil
}

// FailuresList prints the outstanding failure groups.
func (r *Runner) FailuresList(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	groups, err := engine.Failures()
	if err != nil {
		return fmt.Errorf("failed to read failures: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(groups, cmd.Bool("pretty"))
	}

	if len(groups) == 0 {
		r.writePlain("No outstanding failures.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Failure Groups (%d)", len(groups)))
	for i, group := range groups {
		r.writePlain("%d. %s %q: %d photos", i, group.Action, group.LabelName, len(group.FailedUIDs))
		if group.RetryCount > 0 {
			r.writePlain(", retried %dx", group.RetryCount)
		}
		r.writePlain("\n")
		for _, uid := range group.FailedUIDs {
			r.writePlain("   - %s\n", uid)
		}
	}
	r.writePlain("%s\n", r.palette.Help("Run 'relabel retry --group N' to re-run a group."))

	return nil
}

// FailuresClear removes failure groups, either one by action and label or all of them.
func (r *Runner) FailuresClear(ctx context.Context, cmd *cli.Command) error {
	action := cmd.String("action")
	label := cmd.String("label")

	if (action == "") != (label == "") {
		return fmt.Errorf("%w: --action and --label must be given together", shared.ErrInvalidArgument)
	}

	engine, cleanup, err := r.openEngine("")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.ClearFailures(action, label); err != nil {
		return fmt.Errorf("failed to clear failures: %w", err)
	}

	if action == "" {
		r.writePlain("✓ All failure groups cleared\n")
	} else {
		r.writePlain("✓ Failure group cleared: %s %q\n", action, label)
	}
	return nil
}
