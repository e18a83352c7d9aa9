package main

import (
	"fmt"

	"github.com/blog-comments-api/internal/config"
	"github.com/blog-comments-api/internal/database"
	"github.com/blog-comments-api/pkg/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(opts, func(db *database.DB, cfg *config.Config) error {
				return db.RunMigrations(cfg.Database.MigrationsPath)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(opts, func(db *database.DB, cfg *config.Config) error {
				return db.MigrateDown(cfg.Database.MigrationsPath)
			})
		},
	})

	return cmd
}

func withDatabase(opts *options, fn func(*database.DB, *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Log.Level = opts.logLevel

	db, err := database.New(&cfg.Database, logger.New(cfg.Log))
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db, cfg)
}
