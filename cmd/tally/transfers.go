package main

import (
	"fmt"
	"os"

	"github.com/jhalloran/tally/internal/cli"
	"github.com/jhalloran/tally/internal/model"
	"github.com/jhalloran/tally/internal/ofx"
	"github.com/jhalloran/tally/internal/transfer"
	"github.com/spf13/cobra"
)

func transfersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfers <file.ofx> [file.ofx...]",
		Short: "Scan OFX statement exports for probable transfers",
		Long: `Parse one or more OFX/QFX statement files and report transaction pairs
that look like transfers between your own accounts: opposite directions,
matching amounts, and dates at most one day apart. Nothing is posted to
the ledger; the report is for manual review.

Example:
  tally transfers checking.ofx savings.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTransfers,
	}
}

func runTransfers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	parser := ofx.NewParser()

	var pool []model.BankTransaction
	for _, path := range args {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		transactions, err := parser.Parse(ctx, file)
		_ = file.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		pool = append(pool, transactions...)
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Scanned %d transaction(s) from %d file(s)", len(pool), len(args))))

	matched := make(map[string]bool)
	pairs := 0
	for _, txn := range pool {
		if !txn.IsDebit || matched[txn.ID] {
			continue
		}
		counterpart := transfer.FindMatchingTransaction(txn, pool)
		if counterpart == nil || matched[counterpart.ID] {
			continue
		}
		matched[txn.ID] = true
		matched[counterpart.ID] = true
		pairs++

		fmt.Println(cli.RenderBox(fmt.Sprintf("Probable transfer #%d", pairs),
			formatPair(txn, *counterpart)))
	}

	if pairs == 0 {
		fmt.Println(cli.FormatInfo("No probable transfers found."))
	}
	return nil
}

func formatPair(out, in model.BankTransaction) string {
	return fmt.Sprintf("Out: %s  $%.2f  %s (account %s)\n",
		out.Date.Format("2006-01-02"), out.Amount, out.Description, out.AccountID) +
		fmt.Sprintf("In:  %s  $%.2f  %s (account %s)",
			in.Date.Format("2006-01-02"), in.Amount, in.Description, in.AccountID)
}
