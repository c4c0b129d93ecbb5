package clob

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/johan/polymarket-whale-monitor/internal/types"
)

const (
	// Known active token ID for integration testing
	testTokenID = "83955612885151370769947492812886282601680164705864046042194488203730621200472"
)

func TestFetchBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book" {
			t.Errorf("Path = %s, want /book", r.URL.Path)
		}
		if got := r.URL.Query().Get("token_id"); got != "tok1" {
			t.Errorf("token_id = %s, want tok1", got)
		}

		json.NewEncoder(w).Encode(BookSnapshot{
			Market:  "0xmarket",
			AssetID: "tok1",
			Bids:    []types.PriceLevel{{Price: "0.4", Size: "20000"}},
			Asks:    []types.PriceLevel{{Price: "0.6", Size: "100"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.Client()).WithBaseURL(srv.URL)
	book, err := client.FetchBook(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("FetchBook failed: %v", err)
	}

	if len(book.Bids) != 1 || book.Bids[0].Price != "0.4" {
		t.Errorf("Bids = %v", book.Bids)
	}
	if len(book.Asks) != 1 || book.Asks[0].Size != "100" {
		t.Errorf("Asks = %v", book.Asks)
	}
}

func TestFetchBookNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.Client()).WithBaseURL(srv.URL)
	if _, err := client.FetchBook(context.Background(), "bogus"); err == nil {
		t.Error("Expected error for unknown token, got nil")
	}
}

func TestFetchMidpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/midpoint" {
			t.Errorf("Path = %s, want /midpoint", r.URL.Path)
		}
		json.NewEncoder(w).Encode(MidpointResponse{Mid: "0.515"})
	}))
	defer srv.Close()

	client := NewClient(srv.Client()).WithBaseURL(srv.URL)
	mid, err := client.FetchMidpoint(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("FetchMidpoint failed: %v", err)
	}
	if mid != "0.515" {
		t.Errorf("Mid = %s, want 0.515", mid)
	}
}

func TestFetchBook_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	client := NewClient(&http.Client{Timeout: 30 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	book, err := client.FetchBook(ctx, testTokenID)
	if err != nil {
		t.Fatalf("FetchBook failed: %v", err)
	}

	t.Logf("Book for token %s:", testTokenID[:20]+"...")
	t.Logf("  Market: %s", book.Market)
	t.Logf("  Bids: %d levels", len(book.Bids))
	t.Logf("  Asks: %d levels", len(book.Asks))
}
