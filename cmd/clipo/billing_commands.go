package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"clipo/internal/session"
)

func newBillingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "billing",
		Short: "Show the current plan and credit balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.billingService()
			if err != nil {
				return err
			}
			info, err := svc.Info(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, info)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Plan:    %s\n", titleLabel(string(info.Plan)))
			fmt.Fprintf(out, "Credits: %d\n", info.Credits)
			if info.NextRenewal != "" {
				fmt.Fprintf(out, "Renews:  %s\n", info.NextRenewal)
			}
			return nil
		},
	}
}

func newPlansCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Show the purchasable plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.billingService()
			if err != nil {
				return err
			}
			plans, err := svc.Plans(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, plans)
			}

			ids := make([]string, 0, len(plans))
			for id := range plans {
				ids = append(ids, string(id))
			}
			sort.Slice(ids, func(i, j int) bool {
				return plans[session.Plan(ids[i])].Price < plans[session.Plan(ids[j])].Price
			})

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				plan := plans[session.Plan(id)]
				rows = append(rows, []string{
					titleLabel(id),
					fmt.Sprintf("$%.2f/mo", float64(plan.Price)/100),
					formatCredits(plan.Credits),
					strings.Join(plan.Features, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Plan", "Price", "Credits", "Features"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newUpgradeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <plan>",
		Short: "Open a checkout session for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.billingService()
			if err != nil {
				return err
			}
			url, err := svc.CreateCheckout(cmd.Context(), session.Plan(args[0]))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"url": url})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL in a browser to complete checkout:")
			fmt.Fprintln(out, url)
			return nil
		},
	}
}

func formatCredits(credits int) string {
	if credits < 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", credits)
}
