package cmd

import (
	"fmt"

	"roster-workbench/core/sources"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedFlag bool

// migrateCmd creates the record and cache tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.logger.Info("Schema migrated")

		if !seedFlag {
			return nil
		}
		if err := sources.SeedDemo(cmd.Context(), rt.db, rt.cfg.Server.Profile); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		rt.logger.Info("Demo data seeded", zap.String("profile", rt.cfg.Server.Profile))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&seedFlag, "seed", false, "Replace the profile's data with the demo hierarchy")
}
