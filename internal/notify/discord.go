// Package notify dispatches whale alerts to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/johan/polymarket-whale-monitor/internal/detector"
)

// MaxEmbedsPerRequest is the Discord webhook limit on embeds in one payload.
const MaxEmbedsPerRequest = 10

// Embed is a Discord message embed.
type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Footer      Footer `json:"footer"`
	Timestamp   string `json:"timestamp"`
}

// Footer is the footer line of an embed.
type Footer struct {
	Text string `json:"text"`
}

// Notifier delivers alert embeds. Failures are the caller's to log; they are
// never fatal and never retried within a cycle.
type Notifier interface {
	Send(ctx context.Context, embeds []Embed) error
}

// Discord posts embeds to a Discord webhook.
type Discord struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscord creates a webhook notifier.
func NewDiscord(webhookURL string, httpClient *http.Client) *Discord {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Discord{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

type webhookPayload struct {
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url"`
	Embeds    []Embed `json:"embeds"`
}

// Send posts the embeds to the webhook in a single request. The caller is
// responsible for batching to MaxEmbedsPerRequest.
func (d *Discord) Send(ctx context.Context, embeds []Embed) error {
	if len(embeds) == 0 {
		return nil
	}

	payload := webhookPayload{
		Username:  "Anomaly Monitor",
		AvatarURL: "https://polymarket.com/favicon.ico",
		Embeds:    embeds,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord returned status: %d", resp.StatusCode)
	}

	return nil
}

// Null is a no-op notifier used when no webhook URL is configured.
type Null struct{}

// NewNull creates a new null notifier.
func NewNull() *Null {
	return &Null{}
}

// Send does nothing.
func (n *Null) Send(ctx context.Context, embeds []Embed) error {
	return nil
}

// EmbedFor builds the Discord embed for a candidate. Asks are red, bids
// green, matching the front end's wall coloring.
func EmbedFor(c detector.Candidate, now time.Time) Embed {
	question := url.QueryEscape(c.Market.Question)
	twitterURL := "https://twitter.com/search?q=" + question + "&src=typed_query"
	googleURL := "https://www.google.com/search?q=" + question

	color := 0x00FF00
	if c.Side == detector.SideAsk {
		color = 0xFF0000
	}

	description := fmt.Sprintf(
		"**Market:** [%s](https://polymarket.com/event/%s)\n"+
			"**Value:** $%s\n"+
			"**Price:** %s\n"+
			"**Size:** %s\n\n"+
			"🔍 **Search:** [Twitter](%s) | [Google](%s)",
		c.Market.Question, c.Market.Slug,
		detector.FormatAmount(c.Value.InexactFloat64(), 2),
		c.Price.String(),
		detector.FormatAmount(c.Size.InexactFloat64(), 0),
		twitterURL, googleURL,
	)

	return Embed{
		Title:       fmt.Sprintf("🚨 %s Detected!", c.Side.WallLabel()),
		Description: description,
		Color:       color,
		Footer:      Footer{Text: "Polymarket Anomaly Monitor"},
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
}
