package main

import (
	"fmt"
	"os"

	"kodi-rentals/app/config"
	"kodi-rentals/app/database"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Logging)

			db, err := config.InitDB(cfg.DB, logger)
			if err != nil {
				return err
			}
			defer config.CloseDB(db)

			if err := database.RunMigrations(db, logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			if _, err := database.GetSettings(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
			return nil
		},
	}
}
