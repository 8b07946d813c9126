package engine

import (
	"context"

	"github.com/jhalloran/tally/internal/model"
)

// Suggester produces a categorization suggestion for one transaction.
type Suggester interface {
	Suggest(ctx context.Context, txn model.BankTransaction, categories []model.Account, bankAccounts []model.BankAccount, knownVendors []string, accountType model.AccountType) (model.Suggestion, error)
}

// HistoryRefiner overrides suggestion fields from vendor expense history.
type HistoryRefiner interface {
	Refine(ctx context.Context, suggestion model.Suggestion, txn model.BankTransaction) (model.Suggestion, []string, error)
}

// ReviewAction is the user's verdict on one suggestion.
type ReviewAction int

const (
	// ActionApply commits the (possibly edited) categorization.
	ActionApply ReviewAction = iota
	// ActionSkip leaves the transaction uncategorized for a later session.
	ActionSkip
	// ActionQuit ends the review session.
	ActionQuit
)

// ReviewResult is what the prompter returns for one transaction.
type ReviewResult struct {
	Categorized model.CategorizedTransaction
	Action      ReviewAction
}

// Summary reports what a review session accomplished.
type Summary struct {
	Reviewed int
	Applied  int
	Skipped  int
	Failed   int
}

// Prompter presents suggestions to the user and collects their verdicts.
type Prompter interface {
	SetTotal(total int)
	Review(ctx context.Context, txn model.BankTransaction, suggestion model.Suggestion, availableTypes []model.TransactionType, bankAccounts []model.BankAccount) (ReviewResult, error)
	ShowCompletion(summary Summary)
}
