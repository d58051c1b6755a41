package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipo/internal/services/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Browse footage libraries and generate overlay videos",
	}

	libraryCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available footage libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.libraryService()
			if err != nil {
				return err
			}
			libs, err := svc.Libraries(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"libraries": libs})
			}
			if len(libs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No libraries available")
				return nil
			}
			for _, lib := range libs {
				fmt.Fprintln(cmd.OutOrStdout(), lib)
			}
			return nil
		},
	})

	libraryCmd.AddCommand(&cobra.Command{
		Use:   "videos <library>",
		Short: "Preview the footage in a library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.libraryService()
			if err != nil {
				return err
			}
			listing, err := svc.Videos(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, listing)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s holds %d videos\n", listing.Library, listing.VideoCount)
			for _, video := range listing.Videos {
				fmt.Fprintf(out, "  %s\n", video)
			}
			return nil
		},
	})

	libraryCmd.AddCommand(&cobra.Command{
		Use:   "fonts",
		Short: "List the available caption fonts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.libraryService()
			if err != nil {
				return err
			}
			fonts, err := svc.Fonts(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"fonts": fonts})
			}
			rows := make([][]string, 0, len(fonts))
			for _, font := range fonts {
				rows = append(rows, []string{strconv.Itoa(font.ID), font.Name, font.Filename})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "File"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	})

	libraryCmd.AddCommand(newLibraryGenerateCommand(ctx))
	return libraryCmd
}

func newLibraryGenerateCommand(ctx *commandContext) *cobra.Command {
	req := library.GenerateRequest{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a text-overlay video from a library (costs 1 credit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.libraryService()
			if err != nil {
				return err
			}
			result, err := svc.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Message)
			if result.OutputURL != "" {
				fmt.Fprintf(out, "Output: %s\n", result.OutputURL)
			}
			fmt.Fprintf(out, "Credits remaining: %d\n", result.CreditsRemaining)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Text, "text", "t", "", "Text overlay (required)")
	cmd.Flags().StringVarP(&req.Library, "library", "l", "", "Footage library name (required)")
	cmd.Flags().IntVarP(&req.Font, "font", "f", 0, "Font ID from `clipo library fonts` (required)")
	cmd.Flags().StringVar(&req.SongURL, "song", "", "YouTube URL for the soundtrack (required)")
	cmd.Flags().IntVar(&req.FPS, "fps", 0, "Frame rate: 30 or 60 (plan permitting)")
	cmd.Flags().StringVar(&req.Resolution, "resolution", "", "Resolution: 720p or 1080p (plan permitting)")
	cmd.Flags().IntVar(&req.BWLevel, "bw", 0, "Black-and-white filter intensity 0-100")
	cmd.Flags().IntVar(&req.Speed, "speed", 0, "Clips per second 1-8")
	cmd.Flags().IntVar(&req.FontSize, "font-size", 0, "Font size 30-80")
	return cmd
}
