// Package history refines an LLM categorization suggestion using the
// user's own prior expenses for the same vendor. When history shows a
// dominant pattern, it beats the model's guess.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/jhalloran/tally/internal/model"
	"github.com/jhalloran/tally/internal/service"
)

// Refiner overrides suggestion fields when the vendor's expense history
// shows a strict-majority pattern. Vendor and expense lookups are memoized
// for the process lifetime so repeated vendors cost one external call each.
type Refiner struct {
	ledger service.LedgerClient
	logger *slog.Logger

	// Session caches. A nil vendorIDs value means "looked up, not found",
	// cached so absent vendors do not trigger repeat lookups. Entries are
	// written whole under the lock; readers never see a partial entry.
	vendorIDs map[string]*string
	expenses  map[string][]model.Expense
	mu        sync.Mutex
}

// NewRefiner creates a refiner with empty session caches.
func NewRefiner(ledger service.LedgerClient, logger *slog.Logger) *Refiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{
		ledger:    ledger,
		logger:    logger,
		vendorIDs: make(map[string]*string),
		expenses:  make(map[string][]model.Expense),
	}
}

// Refine returns a new suggestion with category and/or description
// overridden when the vendor's history holds a strict majority for them,
// plus debug lines describing what it found. The input suggestion is never
// mutated. Lookup failures propagate; there is no retry here.
func (r *Refiner) Refine(ctx context.Context, suggestion model.Suggestion, txn model.BankTransaction) (model.Suggestion, []string, error) {
	var debug []string

	if suggestion.Type != model.TypeExpense || suggestion.VendorName == "" {
		debug = append(debug, "history: skipped (not an expense with a vendor)")
		return suggestion, debug, nil
	}

	vendorID, err := r.lookupVendorID(ctx, suggestion.VendorName)
	if err != nil {
		return suggestion, debug, err
	}
	if vendorID == nil {
		debug = append(debug, fmt.Sprintf("history: vendor %q not found in ledger", suggestion.VendorName))
		return suggestion, debug, nil
	}

	expenses, err := r.lookupExpenses(ctx, *vendorID)
	if err != nil {
		return suggestion, debug, err
	}
	if len(expenses) == 0 {
		debug = append(debug, fmt.Sprintf("history: vendor %q has no prior expenses", suggestion.VendorName))
		return suggestion, debug, nil
	}

	refined := suggestion
	changed := false

	// Category: strict majority across all of the vendor's expenses.
	categoryCounts := countBy(expenses, func(e model.Expense) string { return e.AccountName })
	for _, fc := range categoryCounts {
		debug = append(debug, fmt.Sprintf("history: category %q seen %d time(s)", fc.value, fc.count))
	}
	if top := majority(categoryCounts, len(expenses)); top != "" && top != refined.Category {
		debug = append(debug, fmt.Sprintf("history: overriding category %q -> %q", refined.Category, top))
		refined.Category = top
		changed = true
	}

	// Description: strict majority among expenses matching this amount.
	var sameAmount []model.Expense
	for _, e := range expenses {
		if e.Amount != nil && model.AmountsMatch(*e.Amount, txn.Amount) {
			sameAmount = append(sameAmount, e)
		}
	}
	if len(sameAmount) > 0 {
		descCounts := countBy(sameAmount, func(e model.Expense) string { return e.Description })
		if top := majority(descCounts, len(sameAmount)); top != "" && top != refined.Description {
			debug = append(debug, fmt.Sprintf("history: overriding description -> %q (from %d amount-matched expense(s))", top, len(sameAmount)))
			refined.Description = top
			changed = true
		}
	}

	if !changed {
		debug = append(debug, "history: no majority pattern, suggestion unchanged")
		return suggestion, debug, nil
	}

	refined.Confidence = model.RefinedConfidence
	refined.Reasoning = strings.TrimSpace(refined.Reasoning + fmt.Sprintf(" [Refined by history: %d prior expense(s)]", len(expenses)))

	r.logger.Debug("suggestion refined by history",
		"transaction_id", txn.ID,
		"vendor", suggestion.VendorName,
		"expenses", len(expenses),
		"category", refined.Category)

	return refined, debug, nil
}

// lookupVendorID resolves a vendor name case-insensitively, caching both
// hits and misses for the session.
func (r *Refiner) lookupVendorID(ctx context.Context, name string) (*string, error) {
	key := strings.ToLower(name)

	r.mu.Lock()
	if id, ok := r.vendorIDs[key]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	contact, err := r.ledger.SearchContactByName(ctx, name, model.ContactVendor)
	if err != nil {
		return nil, fmt.Errorf("vendor lookup failed for %q: %w", name, err)
	}

	var id *string
	if contact != nil {
		id = &contact.ID
	}

	r.mu.Lock()
	r.vendorIDs[key] = id
	r.mu.Unlock()

	return id, nil
}

// lookupExpenses fetches a vendor's expense history once per session.
func (r *Refiner) lookupExpenses(ctx context.Context, vendorID string) ([]model.Expense, error) {
	r.mu.Lock()
	if expenses, ok := r.expenses[vendorID]; ok {
		r.mu.Unlock()
		return expenses, nil
	}
	r.mu.Unlock()

	expenses, err := r.ledger.FetchExpenses(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("expense history fetch failed for vendor %s: %w", vendorID, err)
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}

	r.mu.Lock()
	r.expenses[vendorID] = expenses
	r.mu.Unlock()

	return expenses, nil
}

type fieldCount struct {
	value string
	count int
}

// countBy builds a frequency table of the keyed field, sorted descending by
// count. Empty values are not counted.
func countBy(expenses []model.Expense, key func(model.Expense) string) []fieldCount {
	counts := make(map[string]int)
	for _, e := range expenses {
		if v := key(e); v != "" {
			counts[v]++
		}
	}

	result := make([]fieldCount, 0, len(counts))
	for v, n := range counts {
		result = append(result, fieldCount{value: v, count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].count != result[j].count {
			return result[i].count > result[j].count
		}
		return result[i].value < result[j].value
	})

	return result
}

// majority returns the top value if its count is a strict majority of
// total, otherwise "". A 2-of-4 tie does not qualify.
func majority(counts []fieldCount, total int) string {
	if len(counts) == 0 || total == 0 {
		return ""
	}
	if counts[0].count*2 > total {
		return counts[0].value
	}
	return ""
}
