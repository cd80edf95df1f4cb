// Package intern canonicalizes option names so every occurrence of the same
// name on a command line shares one string backing.
package intern

import "sync"

// Table size is bounded: once full, new strings pass through uncanonicalized
// instead of letting hostile input grow the table without limit.
const defaultLimit = 1024

// Table is a thread-safe string intern table.
type Table struct {
	mu      sync.RWMutex
	entries map[string]string
	limit   int
}

// NewTable creates an intern table holding at most limit distinct strings.
// A limit of zero or less selects the default.
func NewTable(limit int) *Table {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Table{
		entries: make(map[string]string, 64),
		limit:   limit,
	}
}

// String returns the canonical copy of s.
func (t *Table) String(s string) string {
	t.mu.RLock()
	if c, ok := t.entries[s]; ok {
		t.mu.RUnlock()
		return c
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.entries[s]; ok {
		return c
	}
	if len(t.entries) >= t.limit {
		return s
	}
	t.entries[s] = s
	return s
}

// Bytes returns the canonical string for b. A hit costs no allocation: the
// compiler elides the string conversion inside a map index expression.
func (t *Table) Bytes(b []byte) string {
	t.mu.RLock()
	if c, ok := t.entries[string(b)]; ok {
		t.mu.RUnlock()
		return c
	}
	t.mu.RUnlock()
	return t.String(string(b))
}

// Preload seeds the table with known strings.
func (t *Table) Preload(names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range names {
		t.entries[s] = s
	}
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Reset empties the table without releasing the map.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.entries {
		delete(t.entries, k)
	}
}

// ascii holds the single-character strings for the 7-bit range, covering
// every short option name without a table lookup.
var ascii [128]string

// CommonOptionNames are pre-interned so first-parse lookups for the usual
// suspects already hit.
var CommonOptionNames = []string{
	"help", "version", "verbose", "quiet", "output", "input", "config",
	"force", "debug", "file", "format", "level", "port", "host", "timeout",
	"all", "recursive", "dry-run",
}

// Global is the process-wide table used for option name canonicalization.
var Global *Table

//nolint:gochecknoinits // the global table needs its preload before first use
func init() {
	for i := range ascii {
		ascii[i] = string(rune(i))
	}
	Global = NewTable(defaultLimit)
	Global.Preload(CommonOptionNames)
}

// String interns s through the global table.
func String(s string) string { return Global.String(s) }

// Bytes interns b through the global table without copying on a hit.
func Bytes(b []byte) string { return Global.Bytes(b) }

// Rune returns the canonical one-character string for r.
func Rune(r rune) string {
	if r >= 0 && r < 128 {
		return ascii[r]
	}
	return Global.String(string(r))
}
