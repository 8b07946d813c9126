package main

import (
	"fmt"

	"github.com/jhalloran/tally/internal/cli"
	"github.com/spf13/cobra"
)

func vendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List vendors known from past sessions",
		Long: `Print the vendor names registered in the local cache. These are fed to
the LLM as naming hints so the same vendor is not invented twice under
different spellings.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			sessionCache, err := openCache()
			if err != nil {
				return fmt.Errorf("failed to load cache: %w", err)
			}

			vendors := sessionCache.KnownVendors()
			if len(vendors) == 0 {
				fmt.Println(cli.FormatInfo("No known vendors yet. Vendors are recorded as you apply expenses."))
				return nil
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%d known vendor(s)", len(vendors))))
			for _, name := range vendors {
				fmt.Printf("  • %s\n", name)
			}
			return nil
		},
	}
}
