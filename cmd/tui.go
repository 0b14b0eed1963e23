package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive submission form.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, ui.Options{
		Client:     r.client(cmd.String("endpoint")),
		Path:       r.config.Upload.Path,
		Timeout:    r.config.Upload.Timeout(),
		ProgressHz: r.config.Upload.ProgressHz,
		Logger:     r.logger,
		FilePath:   cmd.StringArg("file"),
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
