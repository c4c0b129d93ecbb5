// Package monitor runs whale-order scan cycles.
package monitor

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/johan/polymarket-whale-monitor/internal/clob"
	"github.com/johan/polymarket-whale-monitor/internal/config"
	"github.com/johan/polymarket-whale-monitor/internal/detector"
	"github.com/johan/polymarket-whale-monitor/internal/feed"
	"github.com/johan/polymarket-whale-monitor/internal/gamma"
	"github.com/johan/polymarket-whale-monitor/internal/ledger"
	"github.com/johan/polymarket-whale-monitor/internal/notify"
	"github.com/johan/polymarket-whale-monitor/internal/types"
)

// Service runs scan cycles against the configured markets.
type Service struct {
	config   *config.Config
	gamma    *gamma.Client
	clob     *clob.Client
	notifier notify.Notifier
	detector *detector.Detector
}

// NewService creates a new monitor service.
func NewService(cfg *config.Config) *Service {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	var notifier notify.Notifier
	if cfg.DiscordWebhookURL != "" {
		notifier = notify.NewDiscord(cfg.DiscordWebhookURL, httpClient)
	} else {
		log.Println("DISCORD_WEBHOOK_URL not set, notifications disabled")
		notifier = notify.NewNull()
	}

	return &Service{
		config:   cfg,
		gamma:    gamma.NewClient(httpClient),
		clob:     clob.NewClient(httpClient),
		notifier: notifier,
		detector: detector.New(cfg.Scan.MinOrderValueUSD, cfg.Severity.HighUSD, cfg.Severity.MediumUSD),
	}
}

// WithClients sets custom API clients.
func (s *Service) WithClients(gammaClient *gamma.Client, clobClient *clob.Client) *Service {
	s.gamma = gammaClient
	s.clob = clobClient
	return s
}

// WithNotifier sets a custom notifier.
func (s *Service) WithNotifier(n notify.Notifier) *Service {
	s.notifier = n
	return s
}

// Run executes scan cycles on the given interval until the context is
// cancelled. The first cycle runs immediately.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if err := s.RunCycle(ctx); err != nil {
		log.Printf("Warning: scan cycle failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				log.Printf("Warning: scan cycle failed: %v", err)
			}
		}
	}
}

// RunCycle performs one full scan: evict stale ledger entries, list markets,
// fetch each token's book, detect new whale orders, persist the feed and
// ledger, and dispatch notifications. Every failure inside the cycle is
// skip-and-continue; a completed cycle never reports an error to the caller.
func (s *Service) RunCycle(ctx context.Context) error {
	log.Println("Scanning top markets for whale orders...")

	now := time.Now().UTC()

	led := ledger.Load(s.config.Ledger.Path)
	if evicted := led.EvictOlderThan(s.config.Ledger.Retention.Std(), now); evicted > 0 {
		log.Printf("Evicted %d expired seen orders", evicted)
	}

	feedStore := feed.Load(s.config.Feed.Path)

	markets := s.listMarkets(ctx)
	log.Printf("Found %d tokens to scan", len(markets))

	var candidates []detector.Candidate
	for i, market := range markets {
		if ctx.Err() != nil {
			log.Println("Scan interrupted, persisting partial results")
			break
		}

		book, err := s.clob.FetchBook(ctx, market.TokenID)
		if err != nil {
			log.Printf("Warning: fetching book for %q (%s): %v", market.Question, market.Outcome, err)
			continue
		}

		found := s.detector.Scan(book, market, led, time.Now().UTC())
		if len(found) > 0 {
			log.Printf("Found %d new whale orders in %q (%s)", len(found), market.Question, market.Outcome)
			candidates = append(candidates, found...)
		}

		// Rate-limit courtesy between book fetches
		if i < len(markets)-1 {
			sleepCtx(ctx, s.config.Scan.BookDelay.Std())
		}
	}

	if len(candidates) > 0 {
		alertTime := time.Now().UTC()
		embeds := make([]notify.Embed, 0, len(candidates))
		for _, c := range candidates {
			feedStore.Append(c.FeedRecord(alertTime))
			embeds = append(embeds, notify.EmbedFor(c, alertTime))
		}
		feedStore.Truncate(s.config.Feed.MaxRecords)

		for start := 0; start < len(embeds); start += notify.MaxEmbedsPerRequest {
			end := min(start+notify.MaxEmbedsPerRequest, len(embeds))
			if err := s.notifier.Send(ctx, embeds[start:end]); err != nil {
				log.Printf("Warning: sending alert batch: %v", err)
			}
		}

		if err := feedStore.Persist(); err != nil {
			log.Printf("Warning: persisting alerts feed: %v", err)
		} else {
			log.Printf("Updated alerts feed, %d records", feedStore.Len())
		}
	} else {
		log.Println("No new whale orders found")
	}

	// Persisted even without new alerts so evictions stick. A failed write
	// means the next cycle may alert on orders this one already reported.
	if err := led.Persist(); err != nil {
		log.Printf("Warning: persisting seen orders: %v", err)
	} else {
		log.Printf("Updated seen orders cache, %d tracked", led.Len())
	}

	return nil
}

// listMarkets fetches the top-volume events and flattens them into tracked
// outcome tokens, retrying the listing fetch a bounded number of times.
func (s *Service) listMarkets(ctx context.Context) []types.TrackedMarket {
	retry := s.config.Listing
	backoff := retry.InitialBackoff.Std()

	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		events, err := s.gamma.FetchTopEvents(ctx, s.config.Scan.MarketsLimit)
		if err == nil {
			return trackedMarkets(events)
		}

		log.Printf("Warning: fetching events (attempt %d/%d): %v", attempt, retry.MaxAttempts, err)
		if ctx.Err() != nil {
			break
		}
		if attempt < retry.MaxAttempts {
			sleepCtx(ctx, backoff)
			backoff = time.Duration(float64(backoff) * retry.BackoffFactor)
		}
	}

	log.Println("Warning: market listing unavailable, proceeding with empty list")
	return nil
}

// trackedMarkets flattens events into one entry per outcome token. Markets
// whose token or outcome lists fail to parse are skipped, never fatal.
func trackedMarkets(events []gamma.Event) []types.TrackedMarket {
	var tracked []types.TrackedMarket

	for _, event := range events {
		for _, market := range event.Markets {
			tokenIDs, err := market.ParseTokenIDs()
			if err != nil {
				log.Printf("Warning: skipping market %s, bad token IDs: %v", market.ID, err)
				continue
			}
			if len(tokenIDs) == 0 {
				continue
			}
			outcomes, err := market.ParseOutcomes()
			if err != nil || len(outcomes) == 0 {
				log.Printf("Warning: skipping market %s, missing or bad outcomes: %v", market.ID, err)
				continue
			}

			for i, tokenID := range tokenIDs {
				outcome := ""
				if i < len(outcomes) {
					outcome = outcomes[i]
				}
				tracked = append(tracked, types.TrackedMarket{
					TokenID:  tokenID,
					MarketID: market.ID,
					Question: market.Question,
					Slug:     event.Slug,
					Outcome:  outcome,
				})
			}
		}
	}

	return tracked
}

// sleepCtx sleeps for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
