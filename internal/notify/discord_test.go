package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/johan/polymarket-whale-monitor/internal/detector"
	"github.com/johan/polymarket-whale-monitor/internal/types"
)

func TestDiscordSend(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, srv.Client())
	embeds := []Embed{
		{Title: "🚨 Whale Bid (Buy Wall) Detected!", Color: 0x00FF00},
		{Title: "🚨 Whale Ask (Sell Wall) Detected!", Color: 0xFF0000},
	}

	if err := d.Send(context.Background(), embeds); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if got.Username != "Anomaly Monitor" {
		t.Errorf("Username = %s", got.Username)
	}
	if len(got.Embeds) != 2 {
		t.Errorf("Sent %d embeds, want 2", len(got.Embeds))
	}
}

func TestDiscordSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, srv.Client())
	err := d.Send(context.Background(), []Embed{{Title: "x"}})
	if err == nil {
		t.Error("Expected error for 429 response, got nil")
	}
}

func TestDiscordSendEmpty(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, srv.Client())
	if err := d.Send(context.Background(), nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if called {
		t.Error("Empty send should not hit the webhook")
	}
}

func TestNullSend(t *testing.T) {
	if err := NewNull().Send(context.Background(), []Embed{{Title: "x"}}); err != nil {
		t.Errorf("Null notifier returned error: %v", err)
	}
}

func TestEmbedFor(t *testing.T) {
	market := types.TrackedMarket{
		TokenID:  "token1",
		Question: "Will it happen?",
		Slug:     "will-it-happen",
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		side      detector.Side
		wantColor int
		wantTitle string
	}{
		{"bid is green", detector.SideBid, 0x00FF00, "🚨 Whale Bid (Buy Wall) Detected!"},
		{"ask is red", detector.SideAsk, 0xFF0000, "🚨 Whale Ask (Sell Wall) Detected!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := detector.Candidate{
				Side:     tt.side,
				Price:    decimal.RequireFromString("0.4"),
				Size:     decimal.RequireFromString("20000"),
				Value:    decimal.RequireFromString("8000"),
				Severity: "medium",
				Market:   market,
			}

			embed := EmbedFor(c, now)
			if embed.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", embed.Title, tt.wantTitle)
			}
			if embed.Color != tt.wantColor {
				t.Errorf("Color = %#x, want %#x", embed.Color, tt.wantColor)
			}
			if embed.Timestamp != "2024-06-01T12:00:00Z" {
				t.Errorf("Timestamp = %s", embed.Timestamp)
			}
			if !strings.Contains(embed.Description, "$8,000.00") {
				t.Errorf("Description missing value: %s", embed.Description)
			}
			if !strings.Contains(embed.Description, "polymarket.com/event/will-it-happen") {
				t.Errorf("Description missing market link: %s", embed.Description)
			}
			if embed.Footer.Text != "Polymarket Anomaly Monitor" {
				t.Errorf("Footer = %s", embed.Footer.Text)
			}
		})
	}
}
