// Package transfer flags transactions that look like inter-account
// transfers. Detection is heuristic and feeds manual review only; nothing
// here auto-categorizes.
package transfer

import (
	"strings"
	"time"

	"github.com/jhalloran/tally/internal/model"
)

// transferKeywords are phrases that commonly appear in transfer
// descriptions from bank feeds.
var transferKeywords = []string{
	"transfer",
	"xfer",
	"online pmt",
	"payment to",
	"payment from",
	"autopay",
	"ach pmt",
}

const minTokenLen = 3

// matchWindowDays is the closed window around the source date in which the
// counterpart transaction may post.
const matchWindowDays = 1

// DetectTransfer returns the candidate account the transaction appears to
// transfer to or from, or nil. It matches transfer keywords plus account
// name tokens or bank names (each at least three characters) against the
// lowercased description and payee, skipping the transaction's own account.
func DetectTransfer(txn model.BankTransaction, accounts []model.BankAccount) *model.BankAccount {
	text := txn.SearchText()

	keyword := false
	for _, kw := range transferKeywords {
		if strings.Contains(text, kw) {
			keyword = true
			break
		}
	}

	for i := range accounts {
		acct := &accounts[i]
		if acct.ID == txn.AccountID {
			continue
		}

		nameHit := false
		for _, token := range strings.Fields(strings.ToLower(acct.Name)) {
			if len(token) >= minTokenLen && strings.Contains(text, token) {
				nameHit = true
				break
			}
		}

		bankHit := len(acct.BankName) >= minTokenLen &&
			strings.Contains(text, strings.ToLower(acct.BankName))

		if (keyword && (nameHit || bankHit)) || (nameHit && bankHit) {
			return acct
		}
	}

	return nil
}

// FindMatchingTransaction searches a pool of transactions from other
// accounts for the counterpart of a transfer: opposite debit/credit flag,
// amount differing by less than a cent, and a posting date within one
// calendar day either side, compared at day precision.
// The first qualifying candidate in input order wins; no closest-date or
// closest-amount preference is applied.
func FindMatchingTransaction(txn model.BankTransaction, pool []model.BankTransaction) *model.BankTransaction {
	for i := range pool {
		other := &pool[i]

		if other.AccountID == txn.AccountID || other.ID == txn.ID {
			continue
		}
		if other.IsDebit == txn.IsDebit {
			continue
		}
		if !model.AmountsMatch(other.Amount, txn.Amount) {
			continue
		}

		days := daysBetween(txn.Date, other.Date)
		if days < -matchWindowDays || days > matchWindowDays {
			continue
		}

		return other
	}

	return nil
}

// daysBetween counts calendar days from a to b, ignoring time of day. OFX
// feeds carry posting times, so a pair one day apart can be more than 24
// hours apart on the clock.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
