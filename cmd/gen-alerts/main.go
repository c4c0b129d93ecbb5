// Command gen-alerts writes a synthetic alerts feed for front-end development.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/johan/polymarket-whale-monitor/internal/detector"
	"github.com/johan/polymarket-whale-monitor/internal/feed"
)

var markets = []struct {
	question string
	slug     string
}{
	{"Will Trump win the 2024 Election?", "presidential-election-winner-2024"},
	{"Fed to cut rates in March 2025?", ""},
	{"Bitcoin to hit $100k before 2025?", ""},
	{"SpaceX Starship orbital launch success?", ""},
	{"Will Taylor Swift endorse Biden?", ""},
	{"GDP Growth > 3% in Q3?", ""},
	{"Oil prices to exceed $90/barrel?", ""},
}

func main() {
	path := flag.String("out", "data/alerts.json", "Output path for the alerts feed")
	count := flag.Int("count", 20, "Number of alerts to generate")
	flag.Parse()

	store := feed.New(*path)

	// Oldest first, so front-insertion leaves the feed newest-first.
	now := time.Now().UTC()
	for i := 0; i < *count; i++ {
		eventTime := now.Add(-time.Duration(*count-i) * 3 * time.Minute)
		store.Append(randomAlert(i, eventTime))
	}
	store.Truncate(50)

	if err := store.Persist(); err != nil {
		log.Fatalf("Error writing alerts feed: %v", err)
	}

	log.Printf("Generated %d test alerts to %s", store.Len(), *path)
}

func randomAlert(index int, eventTime time.Time) feed.Record {
	market := markets[rand.Intn(len(markets))]

	side := "Whale Bid (Buy Wall)"
	if rand.Intn(2) == 0 {
		side = "Whale Ask (Sell Wall)"
	}

	// 20% whales, the rest mid-size
	value := 5000 + rand.Float64()*44000
	if rand.Float64() > 0.8 {
		value = 50000 + rand.Float64()*200000
	}
	price := 0.10 + rand.Float64()*0.80
	size := value / price

	severity := "low"
	switch {
	case value >= 50000:
		severity = "high"
	case value >= 10000:
		severity = "medium"
	}

	return feed.Record{
		ID:        fmt.Sprintf("test-id-%d-%d", index, eventTime.Unix()),
		Time:      eventTime.Format("15:04:05"),
		Timestamp: eventTime.Format(time.RFC3339),
		Type:      "WHALE",
		Message: fmt.Sprintf("%s detected in '%s' (Value: $%s)",
			side, market.question, detector.FormatAmount(value, 0)),
		Severity:       severity,
		MarketQuestion: market.question,
		MarketSlug:     market.slug,
		Value:          value,
		Price:          price,
		Size:           size,
	}
}
