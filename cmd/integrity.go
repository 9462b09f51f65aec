package cmd

import (
	"context"
	"fmt"

	"roster-workbench/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the stores the workbench depends on",
	Long:  `Checks the database schema, the cache medium and, for the object medium, the bucket structure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the cache bucket structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// serverCmd represents the integrity server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Check the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// cacheCheckCmd represents the integrity cache command
var cacheCheckCmd = &cobra.Command{
	Use:   "cache",
	Short: "Check that the cache medium accepts writes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, serverCmd, cacheCheckCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the missing bucket and folders")
}

func runIntegrityChecks(ctx context.Context, runStructure, runServer, runCache bool) error {
	// The schema check must see the database as it is, so nothing is migrated here.
	rt, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer rt.Close()
	logg := rt.logger

	svc := integrity.NewService(rt.client, rt.cfg.Storage.Bucket, logg, rt.db, rt.cfg.Cache, rt.medium)

	if runStructure {
		if !svc.UsesObjectStorage() {
			logg.Info("Structure check skipped: cache medium is not object storage")
		} else {
			logg.Info("Checking bucket structure...")
			report, err := svc.CheckStructure(ctx)
			if err != nil {
				return fmt.Errorf("structure check failed: %w", err)
			}

			if report.BucketExists && len(report.Missing) == 0 {
				logg.Info("Structure is intact.")
			} else {
				logg.Warn("Missing structure detected", zap.Bool("bucket_exists", report.BucketExists), zap.Strings("missing", report.Missing))
				if fixFlag {
					if err := svc.FixStructure(ctx, report); err != nil {
						return fmt.Errorf("failed to fix structure: %w", err)
					}
					logg.Info("Structure fixed successfully.")
				} else {
					logg.Info("Run with --fix to create the missing bucket and folders.")
				}
			}
		}
	}

	if runServer {
		logg.Info("Checking server schema integrity...")
		report, err := svc.CheckServer()
		if err != nil {
			logg.Error("Server schema check failed", zap.Error(err))
		} else if report.Matched {
			logg.Info("Server schema matches expected definition.", zap.String("driver", report.Driver))
		} else {
			logg.Warn("Server schema mismatches found", zap.String("driver", report.Driver))
			for table, tblReport := range report.Tables {
				if tblReport.Status == "ok" {
					continue
				}
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if runCache {
		report := svc.CheckCache(ctx)
		if report.Status == "ok" {
			logg.Info("Cache medium is writable.", zap.String("medium", report.Medium))
		} else {
			logg.Error("Cache medium check failed", zap.String("medium", report.Medium), zap.String("error", report.Error))
		}
	}
	return nil
}
