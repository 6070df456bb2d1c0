// Package warning implements the warning ledger: a message-id keyed
// deduplication table that suppresses re-issuing the same warning
// within a fixed repeat window.
//
// The ledger is deliberately not built on patrickmn/go-cache (used
// elsewhere in this repo for the sentence/position cache): go-cache's
// expiry is measured against the real wall clock internally and isn't
// injectable, while the repeat-suppression rule here must be evaluated
// against the caller-supplied "now" (replay time, or a synthetic clock
// in tests) — see DESIGN.md.
package warning

import (
	"sync"
	"time"
)

// WarningRepeatTimeout is the minimum interval between two issuances of
// the same warning id before the second is no longer suppressed.
const WarningRepeatTimeout = 10 * time.Minute

// Entry is one ledger record.
type Entry struct {
	Text      string
	Timestamp time.Time
}

// Ledger is the concurrent message-id -> Entry deduplication table.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewLedger returns an empty warning ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]Entry)}
}

// TryInsert atomically checks whether messageId is still within its
// repeat-suppression window as of now; if so it returns false without
// modifying the ledger. Otherwise it records (text, now) and returns
// true — the caller is then responsible for actually broadcasting.
func (l *Ledger) TryInsert(messageID, text string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.entries[messageID]; ok {
		if existing.Timestamp.Add(WarningRepeatTimeout).After(now) {
			return false
		}
	}

	l.entries[messageID] = Entry{Text: text, Timestamp: now}
	return true
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]Entry)
}

// Len returns the current entry count, mostly useful for tests.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
