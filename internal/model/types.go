package model

import "strings"

// TransactionType is the closed set of categorization outcomes for a
// reviewed transaction.
type TransactionType string

// Transaction type constants.
const (
	TypeExpense           TransactionType = "expense"
	TypeTransfer          TransactionType = "transfer"
	TypeOwnerContribution TransactionType = "owner_contribution"
	TypeSale              TransactionType = "sale"
	TypeRefund            TransactionType = "refund"
	TypeSkip              TransactionType = "skip"
)

// AccountType distinguishes deposit accounts from credit cards. Credit-card
// accounts invert the natural debit/credit-to-expense mapping: a credit on a
// credit card is a charge, not income.
type AccountType string

// Account type constants.
const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
)

// IsUserExpense reports whether a transaction with the given debit flag on
// the given account type represents money the business spent.
func IsUserExpense(isDebit bool, accountType AccountType) bool {
	if accountType == AccountTypeCreditCard {
		return !isDebit
	}
	return isDebit
}

// AvailableTypes returns the legal categorization outcomes for a transaction.
// The result is never empty: transfer and skip apply to every transaction,
// expense only to user-expense ones, sale, owner_contribution and refund
// only to the complementary set (incoming money).
func AvailableTypes(isDebit bool, accountType AccountType) []TransactionType {
	if IsUserExpense(isDebit, accountType) {
		return []TransactionType{TypeExpense, TypeTransfer, TypeSkip}
	}
	return []TransactionType{TypeSale, TypeOwnerContribution, TypeRefund, TypeTransfer, TypeSkip}
}

// DisplayName returns the human-readable label for a transaction type.
func DisplayName(t TransactionType) string {
	switch t {
	case TypeExpense:
		return "Expense"
	case TypeTransfer:
		return "Transfer"
	case TypeOwnerContribution:
		return "Owner Contribution"
	case TypeSale:
		return "Sale"
	case TypeRefund:
		return "Refund"
	case TypeSkip:
		return "Skip"
	default:
		return string(t)
	}
}

// ParseTransactionType maps a free-text type string, case-insensitively, to
// a TransactionType. Unrecognized or empty input maps to TypeExpense.
func ParseTransactionType(s string) TransactionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transfer":
		return TypeTransfer
	case "owner_contribution", "owner contribution":
		return TypeOwnerContribution
	case "sale":
		return TypeSale
	case "refund":
		return TypeRefund
	case "skip":
		return TypeSkip
	default:
		return TypeExpense
	}
}
