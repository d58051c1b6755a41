package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the shared processing queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.processingService()
			if err != nil {
				return err
			}
			status, err := svc.Queue(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Slots:  %d/%d in use (%d free)\n",
				status.ActiveProcesses, status.MaxProcesses, status.AvailableSlots)
			fmt.Fprintf(out, "Queued: %d\n", status.QueuedTasks)
			fmt.Fprintf(out, "Totals: %d submitted, %d completed, %d failed\n",
				status.Statistics.Submitted, status.Statistics.Completed, status.Statistics.Failed)

			if len(status.ActiveTasks) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(status.ActiveTasks))
			for _, task := range status.ActiveTasks {
				rows = append(rows, []string{
					strconv.FormatInt(task.VideoID, 10),
					strconv.Itoa(task.SlotID),
					task.Started,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Video", "Slot", "Started"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}
