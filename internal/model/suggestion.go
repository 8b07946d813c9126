package model

// Suggestion is a best-effort categorization for one transaction, produced
// by the LLM requester or superseded by history refinement. Values are
// immutable; refinement returns a new Suggestion rather than mutating.
type Suggestion struct {
	Type              TransactionType
	VendorName        string
	Category          string
	Description       string
	TransferToAccount string
	Reasoning         string
	Confidence        int // 0-100, display/triage only
}

// RefinedConfidence is the confidence assigned when vendor history
// overrides a suggested field.
const RefinedConfidence = 98

// DefaultCategory is the category used when the LLM gives nothing usable.
const DefaultCategory = "Uncategorized"

// CategorizedTransaction pairs a transaction with the user-editable
// selection for the current editing session. It is created when a
// transaction enters review and discarded once saved or skipped.
type CategorizedTransaction struct {
	Transaction         BankTransaction
	SelectedType        TransactionType
	VendorName          string
	Category            string
	Description         string
	TransferToAccountID string
	Confidence          int // carried from the suggestion into the decision log
}

// NewCategorizedTransaction seeds an editing session from a suggestion.
func NewCategorizedTransaction(txn BankTransaction, s Suggestion) CategorizedTransaction {
	return CategorizedTransaction{
		Transaction:  txn,
		SelectedType: s.Type,
		VendorName:   s.VendorName,
		Category:     s.Category,
		Description:  s.Description,
		Confidence:   s.Confidence,
	}
}
