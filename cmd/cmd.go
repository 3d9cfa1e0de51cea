// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// batchFlags are shared by apply, remove, and labels scan.
func batchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "uid",
			Usage: "Photo UID to operate on (repeatable, overrides the selection file)",
		},
		&cli.StringFlag{
			Name:    "selection",
			Aliases: []string{"s"},
			Usage:   "Path to a selection JSON file exported from the browser",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "Session token (overrides selection and config)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the result as JSON",
		},
	}
}

// applyCommand adds a label across a selection
func applyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "apply",
		Aliases: []string{"add"},
		Usage:   "Add a label to every photo in the selection",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "label",
				Aliases:  []string{"l"},
				Usage:    "Label name to add",
				Required: true,
			},
		}, batchFlags()...),
		Action: r.Apply,
	}
}

// removeCommand strips a label across a selection
func removeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "remove",
		Aliases: []string{"rm"},
		Usage:   "Remove a label from every photo in the selection",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "label",
				Aliases:  []string{"l"},
				Usage:    "Label name to remove",
				Required: true,
			},
		}, batchFlags()...),
		Action: r.Remove,
	}
}

// retryCommand re-runs a recorded failure group
func retryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "retry",
		Usage: "Re-run the photos in a failure group",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "Failure group index (see 'relabel failures list')",
				Value:   0,
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Session token (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the result as JSON",
			},
		},
		Action: r.Retry,
	}
}

// historyCommand inspects and exports the execution log
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Execution history operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded executions, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "export",
				Usage: "Export execution history to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, json, or text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:   "clear",
				Usage:  "Delete all recorded executions",
				Action: r.HistoryClear,
			},
		},
	}
}

// failuresCommand inspects and clears the failure tracker
func failuresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "failures",
		Usage: "Failed operation tracking",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List outstanding failure groups",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.FailuresList,
			},
			{
				Name:  "clear",
				Usage: "Remove failure groups without retrying",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "action",
						Usage: "Group action (add or remove); clears everything when omitted",
					},
					&cli.StringFlag{
						Name:  "label",
						Usage: "Group label name",
					},
				},
				Action: r.FailuresClear,
			},
		},
	}
}

// labelsCommand manages the label suggestion lists
func labelsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "labels",
		Usage: "Label suggestion operations",
		Commands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "List recently used labels, most recent first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LabelsRecent,
			},
			{
				Name:  "all",
				Usage: "List every known label alphabetically",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LabelsAll,
			},
			{
				Name:  "scan",
				Usage: "Scan photo details to seed label suggestions",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent detail fetches (max 10)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
					},
				}, batchFlags()...),
				Action: r.LabelsScan,
			},
			{
				Name:   "clear",
				Usage:  "Drop the suggestion lists and ID cache",
				Action: r.LabelsClear,
			},
		},
	}
}

// setupCommand handles setup operations for database and authentication.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "token",
				Usage: "Extract a session token from a browser cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to a file containing the cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Where to save the headers (default: ~/.relabel/headers.sh)",
					},
				},
				Action: r.SetupToken,
			},
		},
	}
}

// apiCommand handles direct photo server API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the photo server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Session token (overrides config)",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Session token (overrides config)",
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "delete",
				Usage: "Direct DELETE",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "token",
						Usage: "Session token (overrides config)",
					},
				},
				Action: r.APIDelete,
			},
		},
	}
}

// clearCommand wipes all stored state for the configured server
func clearCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "clear",
		Usage:  "Delete all stored state for the configured server",
		Action: r.ClearState,
	}
}
