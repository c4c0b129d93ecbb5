// Package types provides shared type definitions for the whale monitor.
package types

// PriceLevel represents a single price level in an order book.
type PriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// TrackedMarket identifies one outcome token selected for scanning.
type TrackedMarket struct {
	TokenID  string `json:"token_id"`
	MarketID string `json:"market_id"`
	Question string `json:"question"`
	Slug     string `json:"slug"`
	Outcome  string `json:"outcome"`
}
