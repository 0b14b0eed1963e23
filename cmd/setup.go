package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/storage"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file if missing, the storage directory, and the database schema.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	if err := shared.ApplyEnv(config); err != nil {
		return err
	}
	r.config = config
	r.configPath = configPath

	store, err := storage.New(config.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	r.logger.Info("storage ready", "dir", store.Dir())

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ msx is ready\n")
	r.writePlain("Config:   %s\n", configPath)
	r.writePlain("Storage:  %s\n", store.Dir())
	r.writePlain("Database: %s\n", config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'msx serve' to start the submission server\n")
	r.writePlain("2. Run 'msx submit paper.docx -a \"Last, First\" -A \"Department, Institution\"' to upload\n")
	return nil
}
