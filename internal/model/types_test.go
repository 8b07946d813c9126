package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableTypes(t *testing.T) {
	tests := []struct {
		name        string
		accountType AccountType
		isDebit     bool
		wantExpense bool
	}{
		{name: "bank debit is an expense", accountType: AccountTypeBank, isDebit: true, wantExpense: true},
		{name: "bank credit is incoming", accountType: AccountTypeBank, isDebit: false, wantExpense: false},
		{name: "credit card credit is an expense", accountType: AccountTypeCreditCard, isDebit: false, wantExpense: true},
		{name: "credit card debit is incoming", accountType: AccountTypeCreditCard, isDebit: true, wantExpense: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableTypes(tt.isDebit, tt.accountType)
			assert.NotEmpty(t, got)

			set := make(map[TransactionType]bool, len(got))
			for _, typ := range got {
				set[typ] = true
			}

			assert.Equal(t, tt.wantExpense, set[TypeExpense])
			assert.Equal(t, !tt.wantExpense, set[TypeSale])
			assert.Equal(t, !tt.wantExpense, set[TypeOwnerContribution])
			assert.True(t, set[TypeTransfer], "transfer must always be available")
			assert.True(t, set[TypeSkip], "skip must always be available")
			assert.Equal(t, tt.wantExpense, IsUserExpense(tt.isDebit, tt.accountType))
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input string
		want  TransactionType
	}{
		{"expense", TypeExpense},
		{"EXPENSE", TypeExpense},
		{"Transfer", TypeTransfer},
		{"owner_contribution", TypeOwnerContribution},
		{"Owner Contribution", TypeOwnerContribution},
		{"sale", TypeSale},
		{"refund", TypeRefund},
		{"skip", TypeSkip},
		{"", TypeExpense},
		{"definitely not a type", TypeExpense},
		{"  sale  ", TypeSale},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTransactionType(tt.input))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Owner Contribution", DisplayName(TypeOwnerContribution))
	assert.Equal(t, "Expense", DisplayName(TypeExpense))
	assert.Equal(t, "Skip", DisplayName(TypeSkip))
}

func TestNewCategorizedTransactionSeedsFromSuggestion(t *testing.T) {
	txn := BankTransaction{ID: "t1", Amount: 42.50}
	ct := NewCategorizedTransaction(txn, Suggestion{
		Type:       TypeExpense,
		VendorName: "Amazon",
		Category:   "Software",
		Confidence: 85,
	})

	assert.Equal(t, "t1", ct.Transaction.ID)
	assert.Equal(t, TypeExpense, ct.SelectedType)
	assert.Equal(t, "Amazon", ct.VendorName)
	assert.Equal(t, "Software", ct.Category)
	assert.Equal(t, 85, ct.Confidence)
}

func TestAmountsMatch(t *testing.T) {
	assert.True(t, AmountsMatch(250.00, 250.00))
	assert.True(t, AmountsMatch(250.00, 250.009))
	assert.True(t, AmountsMatch(0, 0.005))
	assert.False(t, AmountsMatch(250.00, 250.01), "a full cent apart is a different amount")
	assert.False(t, AmountsMatch(250.01, 250.00))
	assert.False(t, AmountsMatch(250.00, 250.02))
}
