package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipo/internal/services/studio"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	videosCmd := &cobra.Command{
		Use:   "videos",
		Short: "Manage submitted videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVideosList(cmd, ctx)
		},
	}

	videosCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVideosList(cmd, ctx)
		},
	})

	videosCmd.AddCommand(&cobra.Command{
		Use:   "show <video-id>",
		Short: "Show one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.studioService()
			if err != nil {
				return err
			}
			videoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			video, err := svc.Get(cmd.Context(), videoID)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, video)
			}
			printVideo(cmd, video)
			return nil
		},
	})

	videosCmd.AddCommand(&cobra.Command{
		Use:   "rename <video-id> <name>",
		Short: "Rename a video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.studioService()
			if err != nil {
				return err
			}
			videoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			video, err := svc.Rename(cmd.Context(), videoID, args[1])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, video)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %d renamed to %s\n", video.ID, video.Filename)
			return nil
		},
	})

	videosCmd.AddCommand(&cobra.Command{
		Use:   "delete <video-id>",
		Short: "Delete a video and its clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.studioService()
			if err != nil {
				return err
			}
			videoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), videoID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %d deleted\n", videoID)
			return nil
		},
	})

	videosCmd.AddCommand(&cobra.Command{
		Use:   "clips <video-id>",
		Short: "List the clips cut from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.studioService()
			if err != nil {
				return err
			}
			videoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			clips, err := svc.Clips(cmd.Context(), videoID)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, clips)
			}
			if len(clips) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clips yet")
				return nil
			}

			rows := make([][]string, 0, len(clips))
			for _, clip := range clips {
				rows = append(rows, []string{
					strconv.FormatInt(clip.ID, 10),
					formatClipRange(clip),
					formatScore(clip.ViralScore),
					titleLabel(clip.Style),
					truncate(clip.Transcript, 48),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Range", "Score", "Style", "Transcript"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	})

	return videosCmd
}

func runVideosList(cmd *cobra.Command, ctx *commandContext) error {
	svc, err := ctx.studioService()
	if err != nil {
		return err
	}
	videos, err := svc.List(cmd.Context())
	if err != nil {
		return err
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, videos)
	}
	if len(videos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No videos submitted yet")
		return nil
	}

	rows := make([][]string, 0, len(videos))
	for _, video := range videos {
		rows = append(rows, []string{
			strconv.FormatInt(video.ID, 10),
			video.Filename,
			video.Status,
			strconv.Itoa(video.ClipCount),
			video.CreatedAt,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Name", "Status", "Clips", "Created"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func printVideo(cmd *cobra.Command, video *studio.Video) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:      %d\n", video.ID)
	fmt.Fprintf(out, "Name:    %s\n", video.Filename)
	fmt.Fprintf(out, "Status:  %s\n", video.Status)
	fmt.Fprintf(out, "Clips:   %d\n", video.ClipCount)
	fmt.Fprintf(out, "Created: %s\n", video.CreatedAt)
	if video.Duration != nil {
		fmt.Fprintf(out, "Length:  %.1fs\n", *video.Duration)
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func formatClipRange(clip studio.Clip) string {
	return fmt.Sprintf("%.1fs - %.1fs", clip.StartTime, clip.EndTime)
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *score)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
