package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipo/internal/history"
	"clipo/internal/services/processing"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the state of a processing task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return watchTask(cmd, ctx, args[0])
			}

			svc, err := ctx.processingService()
			if err != nil {
				return err
			}
			status, err := svc.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			recordOutcome(cmd.Context(), ctx, args[0], *status)

			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			renderStateLine(cmd.OutOrStdout(), string(status.State), status.Detail,
				colorizeOutput(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll until the task reaches a terminal state")
	return cmd
}

// watchTask polls a task until it finishes, rendering each observation and
// recording the terminal outcome in local history.
func watchTask(cmd *cobra.Command, ctx *commandContext, taskID string) error {
	svc, err := ctx.processingService()
	if err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colorize := colorizeOutput(out)
	var lastState processing.State

	status, err := svc.Watch(cmd.Context(), taskID, cfg.PollInterval(), cfg.WatchTimeout(),
		func(s processing.Status) {
			if s.State == lastState {
				return
			}
			lastState = s.State
			renderStateLine(out, string(s.State), s.Detail, colorize)
		})
	if err != nil {
		return err
	}
	recordOutcome(cmd.Context(), ctx, taskID, *status)

	if status.State == processing.StateFailure {
		return fmt.Errorf("task %s failed: %s", taskID, status.Detail)
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, status)
	}
	return nil
}

// recordOutcome mirrors a status observation into local history. Tasks that
// were never submitted from this machine are not tracked.
func recordOutcome(cmdCtx context.Context, ctx *commandContext, taskID string, status processing.Status) {
	_ = ctx.withHistory(func(store *history.Store) error {
		err := store.UpdateState(cmdCtx, taskID, string(status.State), status.Detail)
		if errors.Is(err, history.ErrNotFound) {
			return nil
		}
		return err
	})
}
