// Package gamma provides a client for the Polymarket Gamma API.
package gamma

import (
	"encoding/json"
	"time"
)

// Event represents a prediction market event.
type Event struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Active     bool      `json:"active"`
	Closed     bool      `json:"closed"`
	StartDate  time.Time `json:"startDate,omitempty"`
	EndDate    time.Time `json:"endDate,omitempty"`
	Volume24hr float64   `json:"volume24hr"`
	Liquidity  float64   `json:"liquidity"`
	Markets    []Market  `json:"markets,omitempty"`
}

// Market represents a prediction market.
type Market struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	ConditionID  string    `json:"conditionId"`
	Slug         string    `json:"slug"`
	Active       bool      `json:"active"`
	Closed       bool      `json:"closed"`
	LiquidityNum float64   `json:"liquidityNum"`
	Volume24hr   float64   `json:"volume24hr"`
	EndDate      time.Time `json:"endDate,omitempty"`

	// These fields are JSON strings that need secondary parsing
	ClobTokenIds  string `json:"clobTokenIds"`  // JSON array as string
	OutcomePrices string `json:"outcomePrices"` // JSON array as string
	Outcomes      string `json:"outcomes"`      // JSON array as string
}

// ParseTokenIDs parses the ClobTokenIds JSON string into a slice of token IDs.
func (m *Market) ParseTokenIDs() ([]string, error) {
	if m.ClobTokenIds == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(m.ClobTokenIds), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ParseOutcomes parses the Outcomes JSON string into a slice of outcome names.
func (m *Market) ParseOutcomes() ([]string, error) {
	if m.Outcomes == "" {
		return nil, nil
	}
	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Filter contains query parameters for API requests.
type Filter struct {
	Active *bool
	Closed *bool
	Order  string
	Limit  int
	Offset int
}
