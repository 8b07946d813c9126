// Package model defines the core domain models used throughout the application.
package model

import (
	"math"
	"strings"
	"time"
)

// AmountTolerance is the difference at which two currency amounts stop
// counting as equal. Bank feeds and ledger entries occasionally disagree
// on sub-cent rounding, but a full cent apart is a different amount.
const AmountTolerance = 0.01

// BankTransaction represents a single imported bank transaction awaiting
// categorization. It is read-only to the pipeline; identity is the ID.
type BankTransaction struct {
	Date        time.Time
	ID          string
	Description string
	Payee       string
	Reference   string
	AccountID   string
	Amount      float64
	IsDebit     bool
}

// AmountsMatch reports whether two amounts differ by less than
// AmountTolerance. The difference is rounded to a tenth of a cent first so
// binary float noise around an exact one-cent gap cannot slip under the
// threshold.
func AmountsMatch(a, b float64) bool {
	diff := math.Round(math.Abs(a-b)*1000) / 1000
	return diff < AmountTolerance
}

// SearchText returns the lowercased description and payee joined for
// keyword matching.
func (t BankTransaction) SearchText() string {
	text := t.Description
	if t.Payee != "" {
		text += " " + t.Payee
	}
	return strings.ToLower(text)
}
