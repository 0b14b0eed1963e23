package main

import (
	"context"
	"errors"

	"github.com/desertthunder/msx/internal/shared"
	"github.com/urfave/cli/v3"
)

func databaseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Inspect or roll back the database schema",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "List applied migrations",
				Action: r.DatabaseStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent migration",
				Action: r.DatabaseRollback,
			},
		},
	}
}

// DatabaseStatus prints the applied schema migrations.
func (r *Runner) DatabaseStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Database: " + r.config.Database.Path)
	for _, m := range applied {
		r.writePlain("%04d  applied %s\n", m.Version, m.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// DatabaseRollback reverts the latest migration without reapplying it.
func (r *Runner) DatabaseRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := shared.RollbackMigration(db)
	if errors.Is(err, shared.ErrNotFound) {
		r.logger.Warn("nothing to roll back", "path", r.config.Database.Path)
		return nil
	}
	if err != nil {
		return err
	}

	r.logger.Info("migration rolled back", "version", m.Version, "name", m.Name)
	return r.writePlain("Rolled back %04d_%s\n", m.Version, m.Name)
}
