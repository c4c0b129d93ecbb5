// Package ledger persists the set of order fingerprints already alerted on.
package ledger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Ledger maps order fingerprints to their first-seen time. Entries are
// stored on disk as a JSON object of fingerprint -> unix seconds.
type Ledger struct {
	path    string
	entries map[string]int64
}

// New creates an empty ledger backed by the given path.
func New(path string) *Ledger {
	return &Ledger{
		path:    path,
		entries: make(map[string]int64),
	}
}

// Load reconstructs a ledger from disk. A missing or corrupt file yields an
// empty ledger; the caller never has to handle a load failure. Entries whose
// timestamp is not a positive number are dropped, and fractional epochs
// (written by older revisions) are truncated to whole seconds.
func Load(path string) *Ledger {
	l := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: reading seen orders file: %v", err)
		}
		return l
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Warning: corrupt seen orders file, starting empty: %v", err)
		return l
	}

	for fp, v := range raw {
		ts, ok := v.(float64)
		if !ok || ts <= 0 {
			log.Printf("Warning: dropping ledger entry %s with malformed timestamp %v", fp, v)
			continue
		}
		l.entries[fp] = int64(ts)
	}

	return l
}

// Contains reports whether the fingerprint has already been recorded.
func (l *Ledger) Contains(fingerprint string) bool {
	_, ok := l.entries[fingerprint]
	return ok
}

// Record inserts or overwrites the entry with the given observation time.
func (l *Ledger) Record(fingerprint string, observedAt time.Time) {
	l.entries[fingerprint] = observedAt.Unix()
}

// Len returns the number of tracked fingerprints.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// EvictOlderThan removes every entry first seen before now-retention and
// returns the number removed. It must run once per scan cycle, before any
// Contains check.
func (l *Ledger) EvictOlderThan(retention time.Duration, now time.Time) int {
	cutoff := now.Add(-retention).Unix()
	evicted := 0
	for fp, ts := range l.entries {
		if ts < cutoff {
			delete(l.entries, fp)
			evicted++
		}
	}
	return evicted
}

// Persist atomically writes the ledger back to disk, creating the parent
// directory if needed.
func (l *Ledger) Persist() error {
	data, err := json.Marshal(l.entries)
	if err != nil {
		return fmt.Errorf("marshaling seen orders: %w", err)
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing seen orders: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replacing seen orders file: %w", err)
	}

	return nil
}
