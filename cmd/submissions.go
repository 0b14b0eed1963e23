package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/msx/internal/formatter"
	"github.com/desertthunder/msx/internal/models"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/storage"
	"github.com/urfave/cli/v3"
)

// ListSubmissions prints stored submissions in the requested format.
func (r *Runner) ListSubmissions(ctx context.Context, cmd *cli.Command) error {
	status := cmd.String("status")
	if status != "" && !models.SubmissionStatus(status).Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidFlag, status)
	}

	repo, closeDB, err := r.submissions()
	if err != nil {
		return err
	}
	defer closeDB()

	subs, err := repo.List(map[string]any{"status": status, "limit": cmd.Int("limit")})
	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteFile(out, cmd.String("format"), subs); err != nil {
			return err
		}
		r.logger.Info("submissions exported", "path", out, "count", len(subs))
		return nil
	}
	return formatter.Write(r.output, cmd.String("format"), subs)
}

// ShowSubmission prints a single submission.
func (r *Runner) ShowSubmission(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: submission ID is required", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.submissions()
	if err != nil {
		return err
	}
	defer closeDB()

	sub, err := repo.Get(id)
	if err != nil {
		return err
	}

	if cmd.String("format") == formatter.FormatJSON {
		return r.writeJSON(formatter.View(sub), true)
	}
	return formatter.Write(r.output, cmd.String("format"), []*models.Submission{sub})
}

// SetSubmissionStatus moves a submission to another status.
func (r *Runner) SetSubmissionStatus(ctx context.Context, cmd *cli.Command) error {
	id, status := cmd.StringArg("id"), models.SubmissionStatus(cmd.StringArg("status"))
	if id == "" || status == "" {
		return fmt.Errorf("%w: usage: msx submissions status <id> <status>", shared.ErrMissingArgument)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}

	repo, closeDB, err := r.submissions()
	if err != nil {
		return err
	}
	defer closeDB()

	sub, err := repo.Get(id)
	if err != nil {
		return err
	}
	sub.Status = status
	if err := repo.Update(sub); err != nil {
		return err
	}

	return r.writePlain("%s → %s\n", id, status)
}

// DeleteSubmission soft-deletes a submission and optionally removes its file.
func (r *Runner) DeleteSubmission(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: submission ID is required", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.submissions()
	if err != nil {
		return err
	}
	defer closeDB()

	sub, err := repo.Get(id)
	if err != nil {
		return err
	}
	if err := repo.Delete(id); err != nil {
		return err
	}

	if cmd.Bool("purge") {
		store, err := storage.New(r.config.Storage.Dir)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		if err := store.Delete(ctx, filepath.Base(sub.StoredPath)); err != nil {
			return err
		}
		r.logger.Info("stored file removed", "path", sub.StoredPath)
	}

	return r.writePlain("Deleted submission %s\n", id)
}
