package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediaorg/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded adoption runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := ""
				switch {
				case run.RolledBack:
					detail = "rolled back"
				case run.Error != "":
					detail = run.Error
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.Mode,
					run.Outcome,
					fmt.Sprintf("%d/%d", run.AppliedCount, run.ActionCount),
					strconv.Itoa(run.ConflictCount),
					run.PlanID,
					detail,
				})
			}

			printTable(cmd.OutOrStdout(),
				[]string{"Started", "Mode", "Outcome", "Applied", "Conflicts", "Plan", "Detail"},
				rows, 3, 4)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}
