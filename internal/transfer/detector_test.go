package transfer

import (
	"testing"
	"time"

	"github.com/jhalloran/tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestDetectTransfer(t *testing.T) {
	accounts := []model.BankAccount{
		{ID: "a1", Name: "Business Checking", BankName: "First National", Type: model.AccountTypeBank},
		{ID: "a2", Name: "Savings", BankName: "First National", Type: model.AccountTypeBank},
		{ID: "a3", Name: "Rewards Card", BankName: "Capital Trust", Type: model.AccountTypeCreditCard},
	}

	tests := []struct {
		name   string
		txn    model.BankTransaction
		wantID string
	}{
		{
			name:   "keyword plus account name",
			txn:    model.BankTransaction{AccountID: "a1", Description: "ONLINE TRANSFER TO SAVINGS"},
			wantID: "a2",
		},
		{
			name:   "keyword plus bank name in payee",
			txn:    model.BankTransaction{AccountID: "a2", Description: "AUTOPAY RECEIVED", Payee: "CAPITAL TRUST"},
			wantID: "a3",
		},
		{
			name:   "account and bank name without keyword",
			txn:    model.BankTransaction{AccountID: "a1", Description: "REWARDS CARD CAPITAL TRUST PYMT"},
			wantID: "a3",
		},
		{
			name:   "own account skipped",
			txn:    model.BankTransaction{AccountID: "a2", Description: "TRANSFER SAVINGS"},
			wantID: "",
		},
		{
			name:   "keyword without any account match",
			txn:    model.BankTransaction{AccountID: "a1", Description: "TRANSFER TO SOMEWHERE ELSE"},
			wantID: "",
		},
		{
			name:   "no keyword and name only",
			txn:    model.BankTransaction{AccountID: "a1", Description: "SAVINGS RATE PROMO"},
			wantID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectTransfer(tt.txn, accounts)
			if tt.wantID == "" {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestFindMatchingTransaction(t *testing.T) {
	source := model.BankTransaction{
		ID:        "t1",
		AccountID: "a1",
		Date:      day(10),
		Amount:    250.00,
		IsDebit:   true,
	}

	tests := []struct {
		name   string
		pool   []model.BankTransaction
		wantID string
	}{
		{
			name: "credit next day matches",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: day(11), Amount: 250.00, IsDebit: false},
			},
			wantID: "t2",
		},
		{
			name: "credit one day before matches",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: day(9), Amount: 250.00, IsDebit: false},
			},
			wantID: "t2",
		},
		{
			name: "amount outside tolerance",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: day(11), Amount: 250.02, IsDebit: false},
			},
			wantID: "",
		},
		{
			name: "one cent apart does not match",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: day(11), Amount: 250.01, IsDebit: false},
			},
			wantID: "",
		},
		{
			name: "sub-cent rounding still matches",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: day(11), Amount: 250.005, IsDebit: false},
			},
			wantID: "t2",
		},
		{
			name: "date outside window",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: day(13), Amount: 250.00, IsDebit: false},
			},
			wantID: "",
		},
		{
			name: "two calendar days apart excluded",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: time.Date(2024, 3, 12, 1, 0, 0, 0, time.UTC), Amount: 250.00, IsDebit: false},
			},
			wantID: "",
		},
		{
			name: "same direction excluded",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: day(10), Amount: 250.00, IsDebit: true},
			},
			wantID: "",
		},
		{
			name: "same account excluded",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a1", Date: day(10), Amount: 250.00, IsDebit: false},
			},
			wantID: "",
		},
		{
			name: "first qualifying match in input order wins",
			pool: []model.BankTransaction{
				{ID: "t2", AccountID: "a2", Date: day(11), Amount: 250.00, IsDebit: false},
				{ID: "t3", AccountID: "a3", Date: day(10), Amount: 250.00, IsDebit: false},
			},
			wantID: "t2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindMatchingTransaction(source, tt.pool)
			if tt.wantID == "" {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestFindMatchingTransactionComparesCalendarDays(t *testing.T) {
	// Posting times from OFX feeds can put a next-day counterpart more
	// than 24 hours out on the clock. It must still match.
	source := model.BankTransaction{
		ID:        "t1",
		AccountID: "a1",
		Date:      time.Date(2024, 3, 10, 1, 30, 0, 0, time.UTC),
		Amount:    250.00,
		IsDebit:   true,
	}
	pool := []model.BankTransaction{
		{ID: "t2", AccountID: "a2", Date: time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC), Amount: 250.00, IsDebit: false},
	}

	got := FindMatchingTransaction(source, pool)
	require.NotNil(t, got)
	assert.Equal(t, "t2", got.ID)
}
