package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"optdrive/internal/state"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "State store utilities",
	}

	stateCmd.AddCommand(newStateShowCommand(ctx))
	stateCmd.AddCommand(newStateClearCommand(ctx))

	return stateCmd
}

func newStateShowCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [app-id]",
		Short: "Show recorded adjustments and the last applied payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			appID, err := resolveAppID(args, cfg)
			if err != nil {
				return err
			}

			store, err := state.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			history, err := store.History(cmd.Context(), appID, limit)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			lastApplied, hasApplied, err := store.LastApplied(cmd.Context(), appID)
			if err != nil {
				return fmt.Errorf("load last applied payload: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, map[string]any{
					"app_id":       appID,
					"database":     store.Path(),
					"history":      history,
					"last_applied": lastApplied,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "State database: %s\n", store.Path())
			if len(history) == 0 {
				fmt.Fprintf(out, "No recorded adjustments for %s\n", appID)
				return nil
			}

			rows := make([][]string, 0, len(history))
			for _, adj := range history {
				rows = append(rows, []string{
					adj.ID,
					adj.Status,
					adj.Reason,
					adj.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Operation", "Status", "Reason", "Recorded"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			if hasApplied {
				fmt.Fprintf(out, "Last applied payload: %s\n", lastApplied)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum history entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newStateClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded adjustments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear state without --force")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := state.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "State cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm deletion of all recorded state")
	return cmd
}
