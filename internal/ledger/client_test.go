package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhalloran/tally/internal/model"
	"github.com/jhalloran/tally/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Token: "test-token"})
	require.NoError(t, err)
	// Tests exercising retries should not wait on real backoff.
	client.retryOpts = service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	return client, server
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{Token: "t"})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestFetchUncategorizedTransactions(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transactions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "acct-1", r.URL.Query().Get("account_id"))
		assert.Equal(t, "uncategorized", r.URL.Query().Get("status"))
		assert.Equal(t, "2024", r.URL.Query().Get("year"))

		_ = json.NewEncoder(w).Encode(transactionsResponse{
			Transactions: []transactionDTO{
				{
					ID:          "t1",
					Date:        "2024-03-10",
					Amount:      42.50,
					IsDebit:     true,
					Description: "AMAZON.COM*123456",
					AccountID:   "acct-1",
				},
			},
		})
	}))

	got, err := client.FetchUncategorizedTransactions(context.Background(), "acct-1", 2024)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, 42.50, got[0].Amount)
	assert.True(t, got[0].IsDebit)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got[0].Date)
}

func TestFetchBankAccountsMapsType(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(bankAccountsResponse{
			BankAccounts: []bankAccountDTO{
				{ID: "a1", Name: "Checking", BankName: "First National", Type: "bank"},
				{ID: "a2", Name: "Rewards", Type: "credit_card"},
			},
		})
	}))

	got, err := client.FetchBankAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.AccountTypeBank, got[0].Type)
	assert.Equal(t, model.AccountTypeCreditCard, got[1].Type)
}

func TestSearchContactNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	got, err := client.SearchContactByName(context.Background(), "Nowhere Inc", model.ContactVendor)
	require.NoError(t, err, "absence is not an error")
	assert.Nil(t, got)
}

func TestGetOrCreateVendorCreatesOnMiss(t *testing.T) {
	var created atomic.Bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/contacts/search":
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/v1/contacts" && r.Method == http.MethodPost:
			var req createVendorRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Amazon", req.Name)
			created.Store(true)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(contactDTO{ID: "v9", Name: req.Name, Type: req.Type})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	got, err := client.GetOrCreateVendor(context.Background(), "Amazon")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v9", got.ID)
	assert.True(t, created.Load())
}

func TestGetOrCreateVendorReturnsExisting(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/contacts/search", r.URL.Path)
		_ = json.NewEncoder(w).Encode(contactDTO{ID: "v1", Name: "Amazon", Type: "vendor"})
	}))

	got, err := client.GetOrCreateVendor(context.Background(), "Amazon")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v1", got.ID)
}

func TestFetchExpenses(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/contacts/v1/expenses", r.URL.Path)
		amt := 19.99
		_ = json.NewEncoder(w).Encode(expensesResponse{
			Expenses: []expenseDTO{
				{Date: "2024-01-05", AccountName: "Software", Description: "Monthly hosting", Amount: &amt},
				{Date: "2024-02-05", AccountName: "Software"},
			},
		})
	}))

	got, err := client.FetchExpenses(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Software", got[0].AccountName)
	require.NotNil(t, got[0].Amount)
	assert.Equal(t, 19.99, *got[0].Amount)
	assert.Nil(t, got[1].Amount)
}

func TestCategorizeAsExpense(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/transactions/t1/categorize/expense", r.URL.Path)

		var req categorizeExpenseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2024-03-10", req.Date)
		assert.Equal(t, "exp-1", req.ExpenseAccountID)
		assert.Equal(t, 42.50, req.Amount)
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.CategorizeAsExpense(context.Background(), "t1", service.ExpenseRequest{
		Date:               time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		ExpenseAccountID:   "exp-1",
		VendorID:           "v1",
		PaidThroughAccount: "acct-1",
		Amount:             42.50,
	})
	require.NoError(t, err)
}

func TestTransientErrorsRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(accountsResponse{Accounts: []accountDTO{{ID: "a1", Name: "Software"}}})
	}))

	got, err := client.FetchAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := client.FetchAccounts(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
