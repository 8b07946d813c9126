// Package ledger implements the HTTP client for the remote accounting API.
// Not-found lookups return nil results; transient transport failures are
// retried here so pipeline components above never retry.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhalloran/tally/internal/common"
	"github.com/jhalloran/tally/internal/model"
	"github.com/jhalloran/tally/internal/service"
)

const dateLayout = "2006-01-02"

// Client talks to the accounting API over JSON REST.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	retryOpts  service.RetryOptions
}

// Config holds connection settings for the accounting API.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewClient creates an accounting API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ledger base URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("ledger API token is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// errNotFound marks a 404 for callers that treat absence as a nil result.
var errNotFound = errors.New("not found")

// doJSON performs one request with retry on transient failures. A nil
// target skips response decoding.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody, target any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	return common.WithRetry(ctx, func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: %v", common.ErrLedgerConnection, err),
				Retryable: true,
			}
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return &common.RetryableError{Err: errNotFound, Retryable: false}
		case resp.StatusCode == http.StatusTooManyRequests:
			return &common.RetryableError{Err: common.ErrLedgerRateLimit, Retryable: true}
		case resp.StatusCode >= 500:
			return &common.RetryableError{
				Err:       fmt.Errorf("ledger API error (status %d): %s", resp.StatusCode, string(respBody)),
				Retryable: true,
			}
		case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
			return &common.RetryableError{
				Err:       fmt.Errorf("ledger API error (status %d): %s", resp.StatusCode, string(respBody)),
				Retryable: false,
			}
		}

		if target != nil {
			if err := json.Unmarshal(respBody, target); err != nil {
				return &common.RetryableError{Err: fmt.Errorf("failed to parse response: %w", err), Retryable: false}
			}
		}
		return nil
	}, c.retryOpts)
}

// FetchUncategorizedTransactions lists uncategorized transactions for an
// account, optionally restricted to a year (0 means all).
func (c *Client) FetchUncategorizedTransactions(ctx context.Context, accountID string, year int) ([]model.BankTransaction, error) {
	query := url.Values{"account_id": {accountID}, "status": {"uncategorized"}}
	if year != 0 {
		query.Set("year", strconv.Itoa(year))
	}

	var resp transactionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/transactions", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	transactions := make([]model.BankTransaction, 0, len(resp.Transactions))
	for _, dto := range resp.Transactions {
		date, err := time.Parse(dateLayout, dto.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction date %q: %w", dto.Date, err)
		}
		transactions = append(transactions, model.BankTransaction{
			ID:          dto.ID,
			Date:        date,
			Amount:      dto.Amount,
			IsDebit:     dto.IsDebit,
			Description: dto.Description,
			Payee:       dto.Payee,
			Reference:   dto.Reference,
			AccountID:   dto.AccountID,
		})
	}
	return transactions, nil
}

// FetchBankAccounts lists the connected bank and credit-card accounts.
func (c *Client) FetchBankAccounts(ctx context.Context) ([]model.BankAccount, error) {
	var resp bankAccountsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/bank_accounts", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch bank accounts: %w", err)
	}

	accounts := make([]model.BankAccount, 0, len(resp.BankAccounts))
	for _, dto := range resp.BankAccounts {
		accountType := model.AccountTypeBank
		if dto.Type == string(model.AccountTypeCreditCard) {
			accountType = model.AccountTypeCreditCard
		}
		accounts = append(accounts, model.BankAccount{
			ID:       dto.ID,
			Name:     dto.Name,
			BankName: dto.BankName,
			Type:     accountType,
		})
	}
	return accounts, nil
}

// FetchAccounts lists the ledger accounts transactions can post to.
func (c *Client) FetchAccounts(ctx context.Context) ([]model.Account, error) {
	var resp accountsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/accounts", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	accounts := make([]model.Account, 0, len(resp.Accounts))
	for _, dto := range resp.Accounts {
		accounts = append(accounts, model.Account{ID: dto.ID, Name: dto.Name, Type: dto.Type})
	}
	return accounts, nil
}

// FetchContacts lists contacts of the given type.
func (c *Client) FetchContacts(ctx context.Context, contactType model.ContactType) ([]model.Contact, error) {
	query := url.Values{"type": {string(contactType)}}

	var resp contactsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/contacts", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	contacts := make([]model.Contact, 0, len(resp.Contacts))
	for _, dto := range resp.Contacts {
		contacts = append(contacts, model.Contact{ID: dto.ID, Name: dto.Name, Type: model.ContactType(dto.Type)})
	}
	return contacts, nil
}

// SearchContactByName finds a contact by exact name, or nil if absent.
func (c *Client) SearchContactByName(ctx context.Context, name string, contactType model.ContactType) (*model.Contact, error) {
	query := url.Values{"name": {name}, "type": {string(contactType)}}

	var dto contactDTO
	err := c.doJSON(ctx, http.MethodGet, "/v1/contacts/search", query, nil, &dto)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search contact: %w", err)
	}
	return &model.Contact{ID: dto.ID, Name: dto.Name, Type: model.ContactType(dto.Type)}, nil
}

// GetOrCreateVendor returns the vendor contact with the given name,
// creating it if the ledger has no match.
func (c *Client) GetOrCreateVendor(ctx context.Context, name string) (*model.Contact, error) {
	existing, err := c.SearchContactByName(ctx, name, model.ContactVendor)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	var dto contactDTO
	body := createVendorRequest{Name: name, Type: string(model.ContactVendor)}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/contacts", nil, body, &dto); err != nil {
		return nil, fmt.Errorf("failed to create vendor %q: %w", name, err)
	}
	return &model.Contact{ID: dto.ID, Name: dto.Name, Type: model.ContactType(dto.Type)}, nil
}

// SearchAccountByName finds a ledger account by name, or nil if absent.
func (c *Client) SearchAccountByName(ctx context.Context, name string) (*model.Account, error) {
	query := url.Values{"name": {name}}

	var dto accountDTO
	err := c.doJSON(ctx, http.MethodGet, "/v1/accounts/search", query, nil, &dto)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search account: %w", err)
	}
	return &model.Account{ID: dto.ID, Name: dto.Name, Type: dto.Type}, nil
}

// FetchExpenses returns a vendor's historical expense records.
func (c *Client) FetchExpenses(ctx context.Context, vendorID string) ([]model.Expense, error) {
	var resp expensesResponse
	path := "/v1/contacts/" + url.PathEscape(vendorID) + "/expenses"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	expenses := make([]model.Expense, 0, len(resp.Expenses))
	for _, dto := range resp.Expenses {
		date, _ := time.Parse(dateLayout, dto.Date)
		expenses = append(expenses, model.Expense{
			Date:        date,
			AccountName: dto.AccountName,
			Description: dto.Description,
			Amount:      dto.Amount,
		})
	}
	return expenses, nil
}

// CategorizeAsExpense posts an expense categorization for a transaction.
func (c *Client) CategorizeAsExpense(ctx context.Context, transactionID string, req service.ExpenseRequest) error {
	body := categorizeExpenseRequest{
		Date:               req.Date.Format(dateLayout),
		ExpenseAccountID:   req.ExpenseAccountID,
		VendorID:           req.VendorID,
		Description:        req.Description,
		PaidThroughAccount: req.PaidThroughAccount,
		Amount:             req.Amount,
	}
	return c.categorize(ctx, transactionID, "expense", body)
}

// CategorizeAsTransfer posts a transfer categorization for a transaction.
func (c *Client) CategorizeAsTransfer(ctx context.Context, transactionID string, req service.TransferRequest) error {
	body := categorizeTransferRequest{
		Date:          req.Date.Format(dateLayout),
		ToAccountID:   req.ToAccountID,
		FromAccountID: req.FromAccountID,
		Amount:        req.Amount,
	}
	return c.categorize(ctx, transactionID, "transfer", body)
}

// CategorizeAsOwnerContribution posts an owner-contribution categorization.
func (c *Client) CategorizeAsOwnerContribution(ctx context.Context, transactionID string, req service.ContributionRequest) error {
	body := categorizeContributionRequest{
		Date:             req.Date.Format(dateLayout),
		EquityAccountID:  req.EquityAccountID,
		DepositAccountID: req.DepositAccountID,
		Description:      req.Description,
		Amount:           req.Amount,
	}
	return c.categorize(ctx, transactionID, "owner_contribution", body)
}

// CategorizeAsSale posts a sale categorization for a transaction.
func (c *Client) CategorizeAsSale(ctx context.Context, transactionID string, req service.SaleRequest) error {
	body := categorizeSaleRequest{
		Date:             req.Date.Format(dateLayout),
		IncomeAccountID:  req.IncomeAccountID,
		DepositAccountID: req.DepositAccountID,
		Description:      req.Description,
		Amount:           req.Amount,
	}
	return c.categorize(ctx, transactionID, "sale", body)
}

func (c *Client) categorize(ctx context.Context, transactionID, kind string, body any) error {
	path := "/v1/transactions/" + url.PathEscape(transactionID) + "/categorize/" + kind
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("failed to categorize transaction %s as %s: %w", transactionID, kind, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}
