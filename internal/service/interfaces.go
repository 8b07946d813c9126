// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/jhalloran/tally/internal/model"
)

// LedgerClient is the contract for the remote accounting API. Not-found
// lookups return nil results, not errors; transport failures propagate.
type LedgerClient interface {
	FetchUncategorizedTransactions(ctx context.Context, accountID string, year int) ([]model.BankTransaction, error)
	FetchBankAccounts(ctx context.Context) ([]model.BankAccount, error)
	FetchAccounts(ctx context.Context) ([]model.Account, error)
	FetchContacts(ctx context.Context, contactType model.ContactType) ([]model.Contact, error)
	SearchContactByName(ctx context.Context, name string, contactType model.ContactType) (*model.Contact, error)
	GetOrCreateVendor(ctx context.Context, name string) (*model.Contact, error)
	SearchAccountByName(ctx context.Context, name string) (*model.Account, error)
	FetchExpenses(ctx context.Context, vendorID string) ([]model.Expense, error)

	CategorizeAsExpense(ctx context.Context, transactionID string, req ExpenseRequest) error
	CategorizeAsTransfer(ctx context.Context, transactionID string, req TransferRequest) error
	CategorizeAsOwnerContribution(ctx context.Context, transactionID string, req ContributionRequest) error
	CategorizeAsSale(ctx context.Context, transactionID string, req SaleRequest) error
}

// ExpenseRequest carries the fields needed to categorize as an expense.
type ExpenseRequest struct {
	Date               time.Time
	ExpenseAccountID   string
	VendorID           string
	Description        string
	PaidThroughAccount string
	Amount             float64
}

// TransferRequest carries the fields needed to categorize as a transfer.
type TransferRequest struct {
	Date          time.Time
	ToAccountID   string
	FromAccountID string
	Amount        float64
}

// ContributionRequest carries the fields for an owner contribution.
type ContributionRequest struct {
	Date             time.Time
	EquityAccountID  string
	DepositAccountID string
	Description      string
	Amount           float64
}

// SaleRequest carries the fields needed to categorize as a sale.
type SaleRequest struct {
	Date             time.Time
	IncomeAccountID  string
	DepositAccountID string
	Description      string
	Amount           float64
}

// LLMClient is the language-model capability: one system prompt, one user
// prompt, one text reply.
type LLMClient interface {
	CreateMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Decision is one applied categorization, recorded for audit.
type Decision struct {
	AppliedAt     time.Time
	ID            string
	SessionID     string
	TransactionID string
	Type          model.TransactionType
	Category      string
	VendorName    string
	Description   string
	Amount        float64
	Confidence    int
}

// DecisionStore persists applied categorizations.
type DecisionStore interface {
	SaveDecision(ctx context.Context, decision *Decision) error
	GetDecisionsByDateRange(ctx context.Context, start, end time.Time) ([]Decision, error)
	GetRecentDecisions(ctx context.Context, limit int) ([]Decision, error)
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
