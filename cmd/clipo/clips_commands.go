package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipo/internal/services/studio"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	clipsCmd := &cobra.Command{
		Use:   "clips",
		Short: "Download, export, and delete clips",
	}

	clipsCmd.AddCommand(newClipsDownloadCommand(ctx))
	clipsCmd.AddCommand(newClipsExportCommand(ctx))
	clipsCmd.AddCommand(&cobra.Command{
		Use:   "delete <clip-id>",
		Short: "Delete a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.studioService()
			if err != nil {
				return err
			}
			clipID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteClip(cmd.Context(), clipID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Clip %d deleted\n", clipID)
			return nil
		},
	})

	return clipsCmd
}

func newClipsDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <clip-id>...",
		Short: "Download clips to the configured directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.studioService()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			paths := make([]string, 0, len(args))
			for _, arg := range args {
				clipID, err := parseID(arg)
				if err != nil {
					return err
				}
				path, err := svc.Download(cmd.Context(), clipID)
				if err != nil {
					return err
				}
				paths = append(paths, path)
				if !ctx.jsonOutput() {
					fmt.Fprintf(out, "Saved %s\n", path)
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"paths": paths})
			}
			return nil
		},
	}
}

func newClipsExportCommand(ctx *commandContext) *cobra.Command {
	var styleFlag string

	cmd := &cobra.Command{
		Use:   "export <clip-id>",
		Short: "Export a clip in a rendering style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.studioService()
			if err != nil {
				return err
			}
			clipID, err := parseID(args[0])
			if err != nil {
				return err
			}
			style, err := studio.ParseStyle(styleFlag)
			if err != nil {
				return err
			}

			result, err := svc.Export(cmd.Context(), clipID, style)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Export ready: %s\n", result.DownloadURL)
			fmt.Fprintf(out, "Credits remaining: %d\n", result.CreditsRemaining)
			return nil
		},
	}

	cmd.Flags().StringVarP(&styleFlag, "style", "s", string(studio.StyleSimple),
		"Rendering style: simple, zoom, or jumpcuts")
	return cmd
}
