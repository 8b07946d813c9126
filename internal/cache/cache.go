// Package cache persists transaction processing state across review
// sessions: which transactions were processed or skipped, and which vendor
// names the user has confirmed. It backs idempotence between runs.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jhalloran/tally/internal/common"
)

// cacheFile is the on-disk document. Slices are kept sorted so the file is
// deterministic and diff-friendly.
type cacheFile struct {
	ProcessedTransactionIDs []string `json:"processed_transaction_ids"`
	SkippedTransactionIDs   []string `json:"skipped_transaction_ids"`
	KnownVendorNames        []string `json:"known_vendor_names"`
}

// Stats summarizes cache contents.
type Stats struct {
	Processed int
	Skipped   int
	Vendors   int
}

// TransactionCache tracks processed and skipped transaction IDs plus known
// vendor names. All mutations are serialized through a single mutex; Save
// snapshots the sets under the lock before writing.
//
// Processed and skipped are NOT mutually exclusive: marking an ID both ways
// leaves it in both sets, and IsProcessed and IsSkipped both return true.
// Callers treat either as "seen".
type TransactionCache struct {
	path      string
	processed map[string]struct{}
	skipped   map[string]struct{}
	vendors   map[string]struct{}
	mu        sync.Mutex
}

// Load reads the cache from path. A missing file yields an empty cache; a
// corrupt or empty file logs a warning and also yields an empty cache, so a
// broken cache never blocks processing.
func Load(path string) (*TransactionCache, error) {
	c := &TransactionCache{
		path:      path,
		processed: make(map[string]struct{}),
		skipped:   make(map[string]struct{}),
		vendors:   make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var doc cacheFile
	if len(data) == 0 || json.Unmarshal(data, &doc) != nil {
		slog.Warn("transaction cache unreadable, starting empty", "path", path)
		return c, nil
	}

	for _, id := range doc.ProcessedTransactionIDs {
		c.processed[id] = struct{}{}
	}
	for _, id := range doc.SkippedTransactionIDs {
		c.skipped[id] = struct{}{}
	}
	for _, name := range doc.KnownVendorNames {
		c.vendors[name] = struct{}{}
	}

	return c, nil
}

// Save writes the cache to disk. A failed flush is a hard error: losing
// dedup state silently is worse than failing loudly.
func (c *TransactionCache) Save() error {
	c.mu.Lock()
	doc := cacheFile{
		ProcessedTransactionIDs: sortedKeys(c.processed),
		SkippedTransactionIDs:   sortedKeys(c.skipped),
		KnownVendorNames:        sortedKeys(c.vendors),
	}
	c.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("%w: creating directory: %v", common.ErrCacheWrite, err)
		}
	}

	if err := os.WriteFile(c.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCacheWrite, err)
	}

	return nil
}

// MarkProcessed records a transaction as processed. Idempotent.
func (c *TransactionCache) MarkProcessed(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed[id] = struct{}{}
}

// MarkSkipped records a transaction as skipped. Idempotent.
func (c *TransactionCache) MarkSkipped(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped[id] = struct{}{}
}

// AddVendor records a vendor name the user has confirmed.
func (c *TransactionCache) AddVendor(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vendors[name] = struct{}{}
}

// Clear empties all three sets. The file is not rewritten until Save.
func (c *TransactionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed = make(map[string]struct{})
	c.skipped = make(map[string]struct{})
	c.vendors = make(map[string]struct{})
}

// IsProcessed reports whether the transaction was marked processed.
func (c *TransactionCache) IsProcessed(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.processed[id]
	return ok
}

// IsSkipped reports whether the transaction was marked skipped.
func (c *TransactionCache) IsSkipped(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.skipped[id]
	return ok
}

// KnownVendors returns the known vendor names, sorted.
func (c *TransactionCache) KnownVendors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sortedKeys(c.vendors)
}

// Stats returns counts of processed, skipped and vendor entries.
func (c *TransactionCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Processed: len(c.processed),
		Skipped:   len(c.skipped),
		Vendors:   len(c.vendors),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
