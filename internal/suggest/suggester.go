// Package suggest builds categorization prompts for a bank transaction and
// turns the LLM's reply into a structured suggestion. The LLM output is
// untrusted free text: transport failures propagate to the caller, but
// malformed replies always degrade to a low-confidence default instead of
// an error.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jhalloran/tally/internal/model"
	"github.com/jhalloran/tally/internal/service"
)

// Requester asks the LLM for a categorization suggestion.
type Requester struct {
	client service.LLMClient
	logger *slog.Logger
}

// maxVendorSample bounds how many known vendor names ride along in the
// prompt for fuzzy matching guidance.
const maxVendorSample = 50

// NewRequester creates a suggestion requester backed by the given LLM client.
func NewRequester(client service.LLMClient, logger *slog.Logger) *Requester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Requester{client: client, logger: logger}
}

// Suggest builds the prompt pair for one transaction, invokes the LLM, and
// parses the reply. Transport errors propagate unchanged; empty or
// unparseable replies return a safe default suggestion, never an error.
func (r *Requester) Suggest(ctx context.Context, txn model.BankTransaction, categories []model.Account, bankAccounts []model.BankAccount, knownVendors []string, accountType model.AccountType) (model.Suggestion, error) {
	systemPrompt := buildSystemPrompt(categories, bankAccounts)
	userPrompt := buildTransactionPrompt(txn, knownVendors, accountType)

	text, err := r.client.CreateMessage(ctx, systemPrompt, userPrompt)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("suggestion request failed: %w", err)
	}

	suggestion := ParseSuggestion(text)

	r.logger.Debug("suggestion received",
		"transaction_id", txn.ID,
		"type", suggestion.Type,
		"category", suggestion.Category,
		"vendor", suggestion.VendorName,
		"confidence", suggestion.Confidence)

	return suggestion, nil
}

// buildSystemPrompt enumerates the valid categories and bank accounts and
// pins the response format.
func buildSystemPrompt(categories []model.Account, bankAccounts []model.BankAccount) string {
	var sb strings.Builder

	sb.WriteString("You are a bookkeeping assistant that categorizes bank transactions for a small business.\n\n")

	sb.WriteString("Valid expense/income categories:\n")
	for _, cat := range categories {
		fmt.Fprintf(&sb, "- %s\n", cat.Name)
	}

	sb.WriteString("\nThe business has these bank accounts (a transaction mentioning one of them is probably a transfer):\n")
	for _, acct := range bankAccounts {
		if acct.BankName != "" {
			fmt.Fprintf(&sb, "- %s (%s)\n", acct.Name, acct.BankName)
		} else {
			fmt.Fprintf(&sb, "- %s\n", acct.Name)
		}
	}

	sb.WriteString(`
Respond with a single JSON object and nothing else:
{
  "transaction_type": "expense" | "transfer" | "owner_contribution" | "sale" | "refund" | "skip",
  "vendor_name": "cleaned vendor name, or empty",
  "category": "one of the categories above",
  "description": "short human-readable description",
  "transfer_to_account": "bank account name if a transfer, else empty",
  "confidence": 0-100,
  "reasoning": "one sentence"
}`)

	return sb.String()
}

// buildTransactionPrompt describes one transaction plus a bounded sample of
// known vendors for fuzzy matching.
func buildTransactionPrompt(txn model.BankTransaction, knownVendors []string, accountType model.AccountType) string {
	var sb strings.Builder

	direction := "credit"
	if txn.IsDebit {
		direction = "debit"
	}

	fmt.Fprintf(&sb, "Date: %s\n", txn.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Amount: $%.2f (%s)\n", txn.Amount, direction)
	fmt.Fprintf(&sb, "Account type: %s\n", accountType)
	fmt.Fprintf(&sb, "Description: %s\n", txn.Description)
	if txn.Payee != "" {
		fmt.Fprintf(&sb, "Payee: %s\n", txn.Payee)
	}
	if txn.Reference != "" {
		fmt.Fprintf(&sb, "Reference: %s\n", txn.Reference)
	}

	if len(knownVendors) > 0 {
		sample := knownVendors
		if len(sample) > maxVendorSample {
			sample = sample[:maxVendorSample]
		}
		sb.WriteString("\nVendors already in the books (reuse an existing name when it matches):\n")
		for _, v := range sample {
			fmt.Fprintf(&sb, "- %s\n", v)
		}
	}

	return sb.String()
}
