// Package engine orchestrates the categorization pipeline: it loads
// candidate transactions, produces suggestions, runs the interactive
// review loop, and applies the user's verdicts to the ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jhalloran/tally/internal/cache"
	"github.com/jhalloran/tally/internal/common"
	"github.com/jhalloran/tally/internal/model"
	"github.com/jhalloran/tally/internal/service"
	"github.com/jhalloran/tally/internal/transfer"
)

// transferConfidence is the floor for suggestions the transfer heuristic
// steers toward a transfer; a higher model or refinement confidence is
// kept as-is.
const transferConfidence = 90

// Config holds the engine's collaborators.
type Config struct {
	Ledger    service.LedgerClient
	Suggester Suggester
	Refiner   HistoryRefiner
	Cache     *cache.TransactionCache
	Store     service.DecisionStore
	Prompter  Prompter
	Logger    *slog.Logger
}

// Engine drives one review session over an account's uncategorized
// transactions.
type Engine struct {
	ledger    service.LedgerClient
	suggester Suggester
	refiner   HistoryRefiner
	cache     *cache.TransactionCache
	store     service.DecisionStore
	prompter  Prompter
	logger    *slog.Logger
	sessionID string
}

// New creates an engine. Store may be nil to disable the decision log.
func New(cfg Config) (*Engine, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("ledger client is required")
	}
	if cfg.Suggester == nil {
		return nil, errors.New("suggester is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("cache is required")
	}
	if cfg.Prompter == nil {
		return nil, errors.New("prompter is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		ledger:    cfg.Ledger,
		suggester: cfg.Suggester,
		refiner:   cfg.Refiner,
		cache:     cfg.Cache,
		store:     cfg.Store,
		prompter:  cfg.Prompter,
		logger:    logger,
		sessionID: uuid.New().String(),
	}, nil
}

// LoadCandidates fetches the account's uncategorized transactions and
// filters out everything the cache already saw.
func (e *Engine) LoadCandidates(ctx context.Context, accountID string, year int) ([]model.BankTransaction, error) {
	transactions, err := e.ledger.FetchUncategorizedTransactions(ctx, accountID, year)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.BankTransaction, 0, len(transactions))
	for _, txn := range transactions {
		if e.cache.IsProcessed(txn.ID) || e.cache.IsSkipped(txn.ID) {
			continue
		}
		candidates = append(candidates, txn)
	}

	e.logger.Info("loaded candidates",
		"account_id", accountID,
		"fetched", len(transactions),
		"candidates", len(candidates))

	return candidates, nil
}

// Suggest produces the best suggestion for one transaction: the LLM
// suggestion refined against vendor history, with the transfer heuristic
// layered on top when the description names another account. The heuristic
// only steers the suggestion shown in review; it never categorizes on its
// own.
func (e *Engine) Suggest(ctx context.Context, txn model.BankTransaction, categories []model.Account, bankAccounts []model.BankAccount, accountType model.AccountType) (model.Suggestion, error) {
	suggestion, err := e.suggester.Suggest(ctx, txn, categories, bankAccounts, e.cache.KnownVendors(), accountType)
	if err != nil {
		return model.Suggestion{}, err
	}

	if e.refiner != nil {
		refined, debug, err := e.refiner.Refine(ctx, suggestion, txn)
		if err != nil {
			return model.Suggestion{}, err
		}
		for _, line := range debug {
			e.logger.Debug(line, "transaction_id", txn.ID)
		}
		suggestion = refined
	}

	if target := transfer.DetectTransfer(txn, bankAccounts); target != nil {
		e.logger.Debug("transfer heuristic matched",
			"transaction_id", txn.ID,
			"target_account", target.Name)
		suggestion = withTransferHint(suggestion, target.Name)
	}

	return suggestion, nil
}

// withTransferHint steers a suggestion toward a transfer to the named
// account, keeping the model's vendor, category and description so editing
// the type back loses nothing.
func withTransferHint(s model.Suggestion, account string) model.Suggestion {
	s.Type = model.TypeTransfer
	s.TransferToAccount = account
	if s.Confidence < transferConfidence {
		s.Confidence = transferConfidence
	}
	hint := fmt.Sprintf("Description matches transfer wording and the %s account", account)
	if s.Reasoning == "" {
		s.Reasoning = hint
	} else {
		s.Reasoning = hint + ". " + s.Reasoning
	}
	return s
}

// Apply commits one reviewed categorization. Skip and refund make no API
// call; every other type posts to the ledger. The returned bool reports
// whether the ledger was updated. Every type marks the transaction
// processed, and for ledger types only after the call succeeds, so
// failures are retried next session.
func (e *Engine) Apply(ctx context.Context, ct model.CategorizedTransaction) (bool, error) {
	txn := ct.Transaction

	switch ct.SelectedType {
	case model.TypeSkip:
		// A saved skip is a final verdict; the transaction does not come
		// back next session.
		e.cache.MarkProcessed(txn.ID)
		return false, nil

	case model.TypeRefund:
		// Refunds reverse an expense upstream; nothing to post here.
		e.cache.MarkProcessed(txn.ID)
		e.recordDecision(ctx, ct)
		return false, nil

	case model.TypeExpense:
		if err := e.applyExpense(ctx, ct); err != nil {
			return false, err
		}

	case model.TypeTransfer:
		if err := e.applyTransfer(ctx, ct); err != nil {
			return false, err
		}

	case model.TypeOwnerContribution:
		if err := e.applyContribution(ctx, ct); err != nil {
			return false, err
		}

	case model.TypeSale:
		if err := e.applySale(ctx, ct); err != nil {
			return false, err
		}

	default:
		return false, fmt.Errorf("cannot apply transaction type %q", ct.SelectedType)
	}

	e.cache.MarkProcessed(txn.ID)
	e.recordDecision(ctx, ct)
	return true, nil
}

func (e *Engine) applyExpense(ctx context.Context, ct model.CategorizedTransaction) error {
	if ct.VendorName == "" {
		return errors.New("expense requires a vendor name")
	}

	vendor, err := e.ledger.GetOrCreateVendor(ctx, ct.VendorName)
	if err != nil {
		return err
	}

	account, err := e.ledger.SearchAccountByName(ctx, ct.Category)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("expense account %q not found in ledger", ct.Category)
	}

	err = e.ledger.CategorizeAsExpense(ctx, ct.Transaction.ID, service.ExpenseRequest{
		Date:               ct.Transaction.Date,
		ExpenseAccountID:   account.ID,
		VendorID:           vendor.ID,
		Description:        ct.Description,
		PaidThroughAccount: ct.Transaction.AccountID,
		Amount:             ct.Transaction.Amount,
	})
	if err != nil {
		return err
	}

	e.cache.AddVendor(vendor.Name)
	return nil
}

func (e *Engine) applyTransfer(ctx context.Context, ct model.CategorizedTransaction) error {
	if ct.TransferToAccountID == "" {
		return errors.New("transfer requires a destination account")
	}

	req := service.TransferRequest{
		Date:   ct.Transaction.Date,
		Amount: ct.Transaction.Amount,
	}
	if ct.Transaction.IsDebit {
		req.FromAccountID = ct.Transaction.AccountID
		req.ToAccountID = ct.TransferToAccountID
	} else {
		req.FromAccountID = ct.TransferToAccountID
		req.ToAccountID = ct.Transaction.AccountID
	}

	return e.ledger.CategorizeAsTransfer(ctx, ct.Transaction.ID, req)
}

func (e *Engine) applyContribution(ctx context.Context, ct model.CategorizedTransaction) error {
	account, err := e.ledger.SearchAccountByName(ctx, ct.Category)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("equity account %q not found in ledger", ct.Category)
	}

	return e.ledger.CategorizeAsOwnerContribution(ctx, ct.Transaction.ID, service.ContributionRequest{
		Date:             ct.Transaction.Date,
		EquityAccountID:  account.ID,
		DepositAccountID: ct.Transaction.AccountID,
		Description:      ct.Description,
		Amount:           ct.Transaction.Amount,
	})
}

func (e *Engine) applySale(ctx context.Context, ct model.CategorizedTransaction) error {
	account, err := e.ledger.SearchAccountByName(ctx, ct.Category)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("income account %q not found in ledger", ct.Category)
	}

	return e.ledger.CategorizeAsSale(ctx, ct.Transaction.ID, service.SaleRequest{
		Date:             ct.Transaction.Date,
		IncomeAccountID:  account.ID,
		DepositAccountID: ct.Transaction.AccountID,
		Description:      ct.Description,
		Amount:           ct.Transaction.Amount,
	})
}

func (e *Engine) recordDecision(ctx context.Context, ct model.CategorizedTransaction) {
	if e.store == nil {
		return
	}

	decision := &service.Decision{
		ID:            uuid.New().String(),
		SessionID:     e.sessionID,
		TransactionID: ct.Transaction.ID,
		Type:          ct.SelectedType,
		Category:      ct.Category,
		VendorName:    ct.VendorName,
		Description:   ct.Description,
		Amount:        ct.Transaction.Amount,
		Confidence:    ct.Confidence,
		AppliedAt:     time.Now(),
	}
	if err := e.store.SaveDecision(ctx, decision); err != nil {
		// The ledger update already happened; losing the audit row is
		// not worth failing the transaction over.
		e.logger.Warn("failed to record decision",
			"transaction_id", ct.Transaction.ID,
			"error", err)
	}
}

// seedVendors fills an empty vendor list from the ledger's vendor contacts
// so the first session still gets known-vendor hints in its prompts.
// Seeding is best-effort; failures are logged and the session continues.
func (e *Engine) seedVendors(ctx context.Context) {
	contacts, err := e.ledger.FetchContacts(ctx, model.ContactVendor)
	if err != nil {
		e.logger.Warn("failed to seed vendors from ledger contacts", "error", err)
		return
	}
	for _, contact := range contacts {
		e.cache.AddVendor(contact.Name)
	}
	if len(contacts) > 0 {
		e.logger.Info("seeded known vendors from ledger contacts", "count", len(contacts))
	}
}

// Run executes one interactive review session for an account. A
// cancellation or quit flushes the cache before returning; single
// transaction failures are logged and the loop moves on.
func (e *Engine) Run(ctx context.Context, accountID string, year int) error {
	bankAccounts, err := e.ledger.FetchBankAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch bank accounts: %w", err)
	}

	var accountType model.AccountType
	for _, acct := range bankAccounts {
		if acct.ID == accountID {
			accountType = acct.Type
			break
		}
	}
	if accountType == "" {
		return common.NewUserError(
			fmt.Sprintf("Bank account %q was not found in the ledger", accountID),
			common.ErrInvalidAccount)
	}

	categories, err := e.ledger.FetchAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	candidates, err := e.LoadCandidates(ctx, accountID, year)
	if err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}
	if len(candidates) == 0 {
		e.logger.Info("nothing to review", "account_id", accountID)
		if err := e.cache.Save(); err != nil {
			return common.NewUserError("Could not save the session cache", err)
		}
		return nil
	}

	if len(e.cache.KnownVendors()) == 0 {
		e.seedVendors(ctx)
	}

	e.prompter.SetTotal(len(candidates))

	var summary Summary
loop:
	for _, txn := range candidates {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		suggestion, err := e.Suggest(ctx, txn, categories, bankAccounts, accountType)
		if err != nil {
			e.logger.Error("failed to get suggestion",
				"transaction_id", txn.ID,
				"error", err)
			summary.Failed++
			continue
		}

		availableTypes := model.AvailableTypes(txn.IsDebit, accountType)
		result, err := e.prompter.Review(ctx, txn, suggestion, availableTypes, bankAccounts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break loop
			}
			e.logger.Error("review failed",
				"transaction_id", txn.ID,
				"error", err)
			summary.Failed++
			continue
		}
		summary.Reviewed++

		switch result.Action {
		case ActionQuit:
			summary.Reviewed--
			break loop
		case ActionSkip:
			e.cache.MarkSkipped(txn.ID)
			summary.Skipped++
		case ActionApply:
			applied, err := e.Apply(ctx, result.Categorized)
			if err != nil {
				if common.IsRetryable(err) {
					e.logger.Warn("transient failure applying categorization, will retry next session",
						"transaction_id", txn.ID,
						"type", result.Categorized.SelectedType,
						"error", err)
				} else {
					e.logger.Error("failed to apply categorization",
						"transaction_id", txn.ID,
						"type", result.Categorized.SelectedType,
						"error", err)
				}
				summary.Failed++
				continue
			}
			if applied || result.Categorized.SelectedType == model.TypeRefund {
				summary.Applied++
			} else {
				summary.Skipped++
			}
		}
	}

	if err := e.cache.Save(); err != nil {
		return common.NewUserError("Could not save the session cache; reviewed transactions may reappear", err)
	}

	e.prompter.ShowCompletion(summary)
	return nil
}
