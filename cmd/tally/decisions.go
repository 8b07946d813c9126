package main

import (
	"fmt"
	"log/slog"

	"github.com/jhalloran/tally/internal/cli"
	"github.com/jhalloran/tally/internal/model"
	"github.com/spf13/cobra"
)

func decisionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Show recently applied categorizations",
		Long: `List the most recent entries from the local decision log. Each entry
records what was posted to the ledger and when, so past sessions stay
auditable.`,
		RunE: runDecisions,
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of decisions to show")

	return cmd
}

func runDecisions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close decision database", "error", closeErr)
		}
	}()

	decisions, err := store.GetRecentDecisions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load decisions: %w", err)
	}

	if len(decisions) == 0 {
		fmt.Println(cli.FormatInfo("No decisions recorded yet."))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Last %d decision(s)", len(decisions))))
	for _, d := range decisions {
		line := fmt.Sprintf("  %s  %-18s  $%-10.2f",
			d.AppliedAt.Format("2006-01-02 15:04"),
			model.DisplayName(d.Type),
			d.Amount)
		if d.VendorName != "" {
			line += "  " + d.VendorName
		}
		if d.Category != "" {
			line += "  → " + d.Category
		}
		fmt.Println(line)
	}
	return nil
}
