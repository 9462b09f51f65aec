package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"roster-workbench/core/utils"
	"roster-workbench/feature/roster"
	"roster-workbench/feature/workbench"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scopeFlag     string
	profileFlag   string
	selectFlags   []string
	columnsFlag   string
	unmatchedFlag bool
	leftKeyFlag   string
	rightKeyFlag  string
	joinTypeFlag  string
)

// queryCmd builds a roster from the command line.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Build a reconciled roster for a filter selection",
	Long: `Replays one --select per hierarchy level (comma separated ids, "*" for all)
and prints the reconciled roster as JSON.

Example:
  query --scope u1 --select C1 --select '*' --select P1,P2 --select 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer rt.Close()

		req := roster.QueryRequest{
			Request: selectionRequest(),
			Columns: utils.SplitList(columnsFlag),
		}
		if cmd.Flags().Changed("include-unmatched") {
			req.IncludeUnmatched = &unmatchedFlag
		}

		resp, err := rt.roster.Query(cmd.Context(), req)
		if err != nil {
			return err
		}
		rt.logger.Info("Roster query completed",
			zap.Int("partitions", resp.Partitions),
			zap.Int("rows", len(resp.Rows)),
			zap.Strings("warnings", resp.Warnings),
		)
		return printJSON(resp)
	},
}

// joinCmd joins primary and secondary records from the command line.
var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join primary and secondary records of a filter selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer rt.Close()

		resp, err := workbench.NewService(rt.roster).Join(cmd.Context(), workbench.JoinRequest{
			Request:  selectionRequest(),
			LeftKey:  leftKeyFlag,
			RightKey: rightKeyFlag,
			Type:     joinTypeFlag,
			Columns:  utils.SplitList(columnsFlag),
		})
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func init() {
	RootCmd.AddCommand(queryCmd, joinCmd)

	for _, c := range []*cobra.Command{queryCmd, joinCmd} {
		c.Flags().StringVar(&scopeFlag, "scope", "cli", "Owner scope of cached options")
		c.Flags().StringVar(&profileFlag, "profile", "", "Catalog/record profile (defaults to server.profile)")
		c.Flags().StringArrayVar(&selectFlags, "select", nil, "Selected ids of the next level, comma separated")
		c.Flags().StringVar(&columnsFlag, "columns", "", "Comma separated output columns")
	}
	queryCmd.Flags().BoolVar(&unmatchedFlag, "include-unmatched", false, "Keep primary records no partition returned")
	joinCmd.Flags().StringVar(&leftKeyFlag, "left-key", "", "Join field of primary records")
	joinCmd.Flags().StringVar(&rightKeyFlag, "right-key", "", "Join field of secondary records")
	joinCmd.Flags().StringVar(&joinTypeFlag, "type", "inner", "Join type (inner, left, right)")
}

func selectionRequest() roster.Request {
	selections := make([][]string, 0, len(selectFlags))
	for _, s := range selectFlags {
		selections = append(selections, utils.SplitList(s))
	}
	return roster.Request{Scope: scopeFlag, Profile: profileFlag, Selections: selections}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
