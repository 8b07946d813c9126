package model

import "time"

// BankAccount is a connected bank or credit-card account in the ledger.
type BankAccount struct {
	ID       string
	Name     string
	BankName string
	Type     AccountType
}

// Account is a ledger account a transaction can post to (a category in
// accounting terms).
type Account struct {
	ID   string
	Name string
	Type string
}

// ContactType distinguishes vendors from customers.
type ContactType string

// Contact type constants.
const (
	ContactVendor   ContactType = "vendor"
	ContactCustomer ContactType = "customer"
)

// Contact is a counterparty record in the ledger.
type Contact struct {
	ID   string
	Name string
	Type ContactType
}

// Expense is one historical expense record for a vendor. Amount may be
// absent for entries the ledger recorded without a value.
type Expense struct {
	Date        time.Time
	AccountName string // posting account, i.e. the category
	Description string
	Amount      *float64
}
