// Command probe-book is a CLI tool for inspecting one token's order book and
// the whale walls the detector would flag in it.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/johan/polymarket-whale-monitor/internal/clob"
	"github.com/johan/polymarket-whale-monitor/internal/detector"
	"github.com/johan/polymarket-whale-monitor/internal/types"
)

// nullLedger lets the probe report every wall without touching dedup state.
type nullLedger struct{}

func (nullLedger) Contains(string) bool     { return false }
func (nullLedger) Record(string, time.Time) {}

func main() {
	token := flag.String("token", "", "Token ID to fetch order book")
	threshold := flag.Float64("threshold", 5000, "Whale order threshold in USD")
	levels := flag.Int("levels", 5, "Top book levels to print per side")
	timeout := flag.Duration("timeout", 30*time.Second, "Request timeout")

	flag.Parse()

	if *token == "" {
		fmt.Println("Usage: probe-book --token <token_id> [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  probe-book --token 83955612...")
		fmt.Println("  probe-book --token 83955612... --threshold 20000")
		os.Exit(1)
	}

	client := clob.NewClient(&http.Client{Timeout: *timeout})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	book, err := client.FetchBook(ctx, *token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mid, err := client.FetchMidpoint(ctx, *token)
	if err != nil {
		mid = "n/a"
	}

	fmt.Printf("Market:   %s\n", book.Market)
	fmt.Printf("Midpoint: %s\n", mid)
	fmt.Printf("Bids: %d levels, Asks: %d levels\n\n", len(book.Bids), len(book.Asks))

	printLevels("BIDS", book.Bids, *levels)
	printLevels("ASKS", book.Asks, *levels)

	det := detector.New(*threshold, 50000, *threshold)
	market := types.TrackedMarket{TokenID: *token, Question: book.Market}
	walls := det.Scan(book, market, nullLedger{}, time.Now().UTC())

	if len(walls) == 0 {
		fmt.Printf("No walls above $%.0f\n", *threshold)
		return
	}

	fmt.Printf("Walls above $%.0f:\n", *threshold)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SIDE\tPRICE\tSIZE\tVALUE\tSEVERITY")
	for _, wall := range walls {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%s\t%s\n",
			wall.Side, wall.Price.String(), wall.Size.String(),
			detector.FormatAmount(wall.Value.InexactFloat64(), 2), wall.Severity)
	}
	w.Flush()
}

func printLevels(label string, levels []types.PriceLevel, n int) {
	fmt.Println(label)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRICE\tSIZE")
	for i, level := range levels {
		if i >= n {
			break
		}
		fmt.Fprintf(w, "%s\t%s\n", level.Price, level.Size)
	}
	w.Flush()
	fmt.Println()
}
