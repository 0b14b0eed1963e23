// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/msx/internal/formatter"
	"github.com/urfave/cli/v3"
)

// newApp builds the root command. Slice flags are not split on commas so "Last, First" stays one author.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:                      "msx",
		Usage:                     "Submit manuscripts and run the submission server",
		Version:                   "0.1.0",
		Commands:                  r.register(),
		DisableSliceFlagSeparator: true,
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func endpointFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "endpoint",
		Aliases: []string{"e"},
		Usage:   "Base URL of the submission server (defaults to upload.endpoint)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, csv, markdown, text, yaml",
		Value:   formatter.FormatText,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config, storage directory, and database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the submission server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (defaults to server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the submission page in a browser",
			},
		},
		Action: r.Serve,
	}
}

func submitCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Upload a manuscript and print progress",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			endpointFlag(),
			&cli.StringSliceFlag{
				Name:    "author",
				Aliases: []string{"a"},
				Usage:   "Author name as \"Last, First\" (repeat per author)",
			},
			&cli.StringSliceFlag{
				Name:    "affiliation",
				Aliases: []string{"A"},
				Usage:   "Affiliation for the author at the same position (repeat per author)",
			},
			&cli.StringFlag{Name: "title", Usage: "Manuscript title"},
			&cli.StringFlag{Name: "article-type", Usage: "Article type"},
			&cli.StringFlag{Name: "keywords", Usage: "Comma separated keywords"},
			&cli.StringFlag{Name: "email", Usage: "Corresponding author email"},
			&cli.StringFlag{Name: "date", Usage: "Submitted date (YYYY-MM-DD)"},
			&cli.BoolFlag{Name: "json", Usage: "Print the server response as JSON"},
		},
		Action: r.Submit,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Fill in the submission form interactively",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			endpointFlag(),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/msx-tui.log",
			},
		},
		Action: r.TUI,
	}
}

func submissionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "submissions",
		Aliases: []string{"subs"},
		Usage:   "Inspect stored submissions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List submissions",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show submissions with this status (received, processed, rejected)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of submissions to return",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to this file instead of stdout",
					},
				},
				Action: r.ListSubmissions,
			},
			{
				Name:  "show",
				Usage: "Show one submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{formatFlag()},
				Action: r.ShowSubmission,
			},
			{
				Name:  "status",
				Usage: "Change the status of a submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "status"},
				},
				Action: r.SetSubmissionStatus,
			},
			{
				Name:  "delete",
				Usage: "Delete a submission record",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "purge",
						Usage: "Also remove the stored file",
					},
				},
				Action: r.DeleteSubmission,
			},
		},
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Check that the submission server is reachable",
		Flags:  []cli.Flag{endpointFlag()},
		Action: r.Status,
	}
}
