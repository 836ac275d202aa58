package cmd

import (
	"fmt"

	"aero-importer/core/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates the aeronautical tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(true)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		if err := store.Migrate(cmd.Context(), rt.db, rt.cfg.Database.Schema); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		rt.logger.Info("Schema migrated", zap.String("schema", rt.cfg.Database.Schema))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
