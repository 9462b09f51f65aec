package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cacheScopeFlag string
	cacheNameFlag  string
)

// cacheCmd is the parent command for cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the option cache",
}

// cacheResetCmd removes every entry of one scope.
var cacheResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove every cached entry of a scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer rt.Close()

		n, err := rt.roster.ResetCache(cmd.Context(), cacheScopeFlag)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d entries for scope %q\n", n, cacheScopeFlag)
		return nil
	},
}

// cacheInvalidateCmd removes one entry.
var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Remove one cached entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cacheScopeFlag == "" || cacheNameFlag == "" {
			return fmt.Errorf("--scope and --name are required")
		}
		rt, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer rt.Close()

		key := rt.store.Key(cacheScopeFlag, cacheNameFlag)
		rt.store.Invalidate(cmd.Context(), key)
		rt.logger.Info("Cache entry invalidated", zap.String("key", key.String()))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheResetCmd, cacheInvalidateCmd)

	cacheCmd.PersistentFlags().StringVar(&cacheScopeFlag, "scope", "", "Owner scope")
	cacheInvalidateCmd.Flags().StringVar(&cacheNameFlag, "name", "", "Entry name, e.g. options:default:department:C1")
}
