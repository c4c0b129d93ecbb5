// Package feed persists the bounded, newest-first list of alert records
// consumed by the front end.
package feed

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Record is one alert as the front end expects it.
type Record struct {
	ID             string  `json:"id"`
	Time           string  `json:"time"`
	Timestamp      string  `json:"timestamp"`
	Type           string  `json:"type"`
	Message        string  `json:"message"`
	Severity       string  `json:"severity"`
	MarketQuestion string  `json:"market_question"`
	MarketSlug     string  `json:"market_slug"`
	Value          float64 `json:"value"`
	Price          float64 `json:"price"`
	Size           float64 `json:"size"`
}

// Store holds the ordered alert records, most recent first.
type Store struct {
	path    string
	records []Record
}

// New creates an empty store backed by the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reconstructs the store from disk. Missing or corrupt files yield an
// empty store.
func Load(path string) *Store {
	s := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: reading alerts file: %v", err)
		}
		return s
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		log.Printf("Warning: corrupt alerts file, starting empty: %v", err)
		s.records = nil
	}

	return s
}

// Append inserts the record at the front, keeping newest-first order.
func (s *Store) Append(rec Record) {
	s.records = append([]Record{rec}, s.records...)
}

// Truncate discards all but the first max records.
func (s *Store) Truncate(max int) {
	if max > 0 && len(s.records) > max {
		s.records = s.records[:max]
	}
}

// Records returns the current records, newest first.
func (s *Store) Records() []Record {
	return s.records
}

// Len returns the number of records held.
func (s *Store) Len() int {
	return len(s.records)
}

// Persist atomically overwrites the alerts file, creating the parent
// directory if needed. The file is indented because browsers fetch it
// directly.
func (s *Store) Persist() error {
	records := s.records
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling alerts: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating alerts directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing alerts: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing alerts file: %w", err)
	}

	return nil
}
