package main

import (
	"fmt"
	"log/slog"

	"github.com/jhalloran/tally/internal/cli"
	"github.com/jhalloran/tally/internal/common"
	"github.com/jhalloran/tally/internal/engine"
	"github.com/jhalloran/tally/internal/history"
	"github.com/jhalloran/tally/internal/suggest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review and categorize uncategorized transactions",
		Long: `Fetch uncategorized transactions for a bank account, get a suggested
categorization for each, and interactively accept, edit, or skip them.
Applied decisions are posted to the ledger; skipped transactions return
in the next session.

Examples:
  tally review --account acct-1            # Review all pending transactions
  tally review --account acct-1 --year 2024`,
		RunE: runReview,
	}

	cmd.Flags().StringP("account", "a", "", "Bank account ID to review (required)")
	cmd.Flags().IntP("year", "y", 0, "Limit to a single year (0 = all years)")
	_ = cmd.MarkFlagRequired("account")

	_ = viper.BindPFlag("review.account", cmd.Flags().Lookup("account"))
	_ = viper.BindPFlag("review.year", cmd.Flags().Lookup("year"))

	return cmd
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	accountID := viper.GetString("review.account")
	year := viper.GetInt("review.year")

	ledgerClient, err := createLedgerClient()
	if err != nil {
		return err
	}

	llmClient, err := createLLMClient(ctx)
	if err != nil {
		return err
	}

	sessionCache, err := openCache()
	if err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			common.LogError(closeErr, "failed to close decision database", common.Fields{
				"account_id": accountID,
			})
		}
	}()

	eng, err := engine.New(engine.Config{
		Ledger:    ledgerClient,
		Suggester: suggest.NewRequester(llmClient, slog.Default()),
		Refiner:   history.NewRefiner(ledgerClient, slog.Default()),
		Cache:     sessionCache,
		Store:     store,
		Prompter:  cli.NewPrompter(nil, nil),
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}

	slog.Info("starting review session", "account_id", accountID, "year", year)
	return eng.Run(ctx, accountID, year)
}
