package main

import (
	"fmt"

	"github.com/jhalloran/tally/internal/cli"
	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the session cache",
	}

	cmd.AddCommand(cacheStatsCmd())
	cmd.AddCommand(cacheClearCmd())

	return cmd
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache counters",
		RunE: func(_ *cobra.Command, _ []string) error {
			sessionCache, err := openCache()
			if err != nil {
				return fmt.Errorf("failed to load cache: %w", err)
			}

			stats := sessionCache.Stats()
			content := fmt.Sprintf("Processed transactions: %d\n", stats.Processed) +
				fmt.Sprintf("Skipped transactions: %d\n", stats.Skipped) +
				fmt.Sprintf("Known vendors: %d", stats.Vendors)
			fmt.Println(cli.RenderBox("Cache", content))
			return nil
		},
	}
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all processed and skipped transactions",
		Long: `Empty the cache and save it. Every previously processed or skipped
transaction becomes a review candidate again; the ledger itself is not
touched.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			sessionCache, err := openCache()
			if err != nil {
				return fmt.Errorf("failed to load cache: %w", err)
			}

			sessionCache.Clear()
			if err := sessionCache.Save(); err != nil {
				return fmt.Errorf("failed to save cache: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Cache cleared."))
			return nil
		},
	}
}
