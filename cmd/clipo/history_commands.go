package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"clipo/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect locally recorded submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, ctx, 20)
		},
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, ctx, limit)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show")
	historyCmd.AddCommand(listCmd)

	historyCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Summarize submission outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total:     %d\n", stats.Total)
				fmt.Fprintf(out, "Succeeded: %d\n", stats.Succeeded)
				fmt.Fprintf(out, "Failed:    %d\n", stats.Failed)
				fmt.Fprintf(out, "Active:    %d\n", stats.Active)
				return nil
			})
		},
	})

	var keepDays int
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keepDays <= 0 {
				return fmt.Errorf("--keep-days must be positive")
			}
			return ctx.withHistory(func(store *history.Store) error {
				cutoff := time.Now().AddDate(0, 0, -keepDays)
				deleted, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records older than %d days\n", deleted, keepDays)
				return nil
			})
		},
	}
	pruneCmd.Flags().IntVar(&keepDays, "keep-days", 30, "Keep records newer than this many days")
	historyCmd.AddCommand(pruneCmd)

	return historyCmd
}

func runHistoryList(cmd *cobra.Command, ctx *commandContext, limit int) error {
	return ctx.withHistory(func(store *history.Store) error {
		records, err := store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if ctx.jsonOutput() {
			return writeJSON(cmd, records)
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No submissions recorded yet")
			return nil
		}

		colorize := colorizeOutput(cmd.OutOrStdout())
		rows := make([][]string, 0, len(records))
		for _, record := range records {
			title := record.Title
			if title == "" {
				title = record.SourceURL
			}
			rows = append(rows, []string{
				strconv.FormatInt(record.VideoID, 10),
				truncate(title, 32),
				renderState(record.State, colorize),
				record.CreatedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Video", "Title", "State", "Submitted"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
		))
		return nil
	})
}
