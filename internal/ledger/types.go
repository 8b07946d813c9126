package ledger

// Wire types for the accounting API. Amounts come over the wire as JSON
// numbers; dates as YYYY-MM-DD strings.

type transactionDTO struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	IsDebit     bool    `json:"is_debit"`
	Description string  `json:"description"`
	Payee       string  `json:"payee,omitempty"`
	Reference   string  `json:"reference,omitempty"`
	AccountID   string  `json:"account_id"`
}

type transactionsResponse struct {
	Transactions []transactionDTO `json:"transactions"`
}

type bankAccountDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BankName string `json:"bank_name,omitempty"`
	Type     string `json:"type"`
}

type bankAccountsResponse struct {
	BankAccounts []bankAccountDTO `json:"bank_accounts"`
}

type accountDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type accountsResponse struct {
	Accounts []accountDTO `json:"accounts"`
}

type contactDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type contactsResponse struct {
	Contacts []contactDTO `json:"contacts"`
}

type expenseDTO struct {
	Date        string   `json:"date"`
	AccountName string   `json:"account_name"`
	Description string   `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

type expensesResponse struct {
	Expenses []expenseDTO `json:"expenses"`
}

type createVendorRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type categorizeExpenseRequest struct {
	Date               string  `json:"date"`
	ExpenseAccountID   string  `json:"expense_account_id"`
	VendorID           string  `json:"vendor_id,omitempty"`
	Description        string  `json:"description,omitempty"`
	PaidThroughAccount string  `json:"paid_through_account"`
	Amount             float64 `json:"amount"`
}

type categorizeTransferRequest struct {
	Date          string  `json:"date"`
	ToAccountID   string  `json:"to_account_id"`
	FromAccountID string  `json:"from_account_id"`
	Amount        float64 `json:"amount"`
}

type categorizeContributionRequest struct {
	Date             string  `json:"date"`
	EquityAccountID  string  `json:"equity_account_id"`
	DepositAccountID string  `json:"deposit_account_id"`
	Description      string  `json:"description,omitempty"`
	Amount           float64 `json:"amount"`
}

type categorizeSaleRequest struct {
	Date             string  `json:"date"`
	IncomeAccountID  string  `json:"income_account_id"`
	DepositAccountID string  `json:"deposit_account_id"`
	Description      string  `json:"description,omitempty"`
	Amount           float64 `json:"amount"`
}
