package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipo/internal/history"
	"clipo/internal/services/processing"
	"clipo/internal/services/studio"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var clipCount int
	var quality string
	var fps int
	var watch bool

	cmd := &cobra.Command{
		Use:   "submit <url>",
		Short: "Submit a video URL for clipping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			studioSvc, err := ctx.studioService()
			if err != nil {
				return err
			}

			video, err := studioSvc.Submit(cmd.Context(), studio.SubmitRequest{
				URL:       args[0],
				ClipCount: clipCount,
				Quality:   quality,
				FPS:       fps,
			})
			if err != nil {
				return err
			}

			taskID := strconv.FormatInt(video.ID, 10)
			if err := ctx.withHistory(func(store *history.Store) error {
				_, err := store.RecordSubmission(cmd.Context(), video.ID, taskID, args[0], video.Filename, string(processing.StatePending))
				return err
			}); err != nil {
				return fmt.Errorf("record submission: %w", err)
			}

			if ctx.jsonOutput() && !watch {
				return writeJSON(cmd, video)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted video %d (%s)\n", video.ID, video.Filename)

			if !watch {
				fmt.Fprintf(out, "Track it with `clipo status %s --watch`\n", taskID)
				return nil
			}
			return watchTask(cmd, ctx, taskID)
		},
	}

	cmd.Flags().IntVar(&clipCount, "clips", 0, "Number of clips to cut (service default when omitted)")
	cmd.Flags().StringVar(&quality, "quality", "", "Requested resolution: 720p, 1080p, or 2k (plan permitting)")
	cmd.Flags().IntVar(&fps, "fps", 0, "Requested frame rate: 30 or 60 (plan permitting)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll the task until it finishes")
	return cmd
}
