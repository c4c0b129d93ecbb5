// Package detector scans order book snapshots for whale orders.
package detector

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/johan/polymarket-whale-monitor/internal/clob"
	"github.com/johan/polymarket-whale-monitor/internal/feed"
	"github.com/johan/polymarket-whale-monitor/internal/types"
)

// Side identifies which side of the book an order rests on.
type Side string

const (
	SideBid Side = "BID"
	SideAsk Side = "ASK"
)

// WallLabel returns the human label for a wall on this side.
func (s Side) WallLabel() string {
	if s == SideAsk {
		return "Whale Ask (Sell Wall)"
	}
	return "Whale Bid (Buy Wall)"
}

// Deduper is the ledger surface the detector needs.
type Deduper interface {
	Contains(fingerprint string) bool
	Record(fingerprint string, observedAt time.Time)
}

// Candidate is one newly discovered whale order.
type Candidate struct {
	Fingerprint string
	Side        Side
	Price       decimal.Decimal
	Size        decimal.Decimal
	Value       decimal.Decimal
	Severity    string
	Market      types.TrackedMarket
}

// Fingerprint computes the dedup key for an order. Price and size are hashed
// in canonical decimal form so the same level always produces the same key
// regardless of how the wire formatted it.
func Fingerprint(marketID string, side Side, price, size decimal.Decimal) string {
	raw := fmt.Sprintf("%s-%s-%s-%s", marketID, price.String(), size.String(), side)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Detector applies the whale-order threshold to book snapshots.
type Detector struct {
	threshold decimal.Decimal
	highUSD   decimal.Decimal
	mediumUSD decimal.Decimal
}

// New creates a detector. Orders qualify when price*size exceeds thresholdUSD
// strictly; severity tiers are cut at highUSD and mediumUSD.
func New(thresholdUSD, highUSD, mediumUSD float64) *Detector {
	return &Detector{
		threshold: decimal.NewFromFloat(thresholdUSD),
		highUSD:   decimal.NewFromFloat(highUSD),
		mediumUSD: decimal.NewFromFloat(mediumUSD),
	}
}

// Scan checks every resting order in the snapshot against the threshold,
// skips orders the ledger has already seen, records the rest, and returns
// them as candidates.
func (d *Detector) Scan(book *clob.BookSnapshot, market types.TrackedMarket, led Deduper, now time.Time) []Candidate {
	var candidates []Candidate
	candidates = append(candidates, d.scanSide(book.Bids, SideBid, market, led, now)...)
	candidates = append(candidates, d.scanSide(book.Asks, SideAsk, market, led, now)...)
	return candidates
}

func (d *Detector) scanSide(levels []types.PriceLevel, side Side, market types.TrackedMarket, led Deduper, now time.Time) []Candidate {
	var candidates []Candidate

	for _, level := range levels {
		price, err := decimal.NewFromString(level.Price)
		if err != nil {
			continue
		}
		size, err := decimal.NewFromString(level.Size)
		if err != nil {
			continue
		}

		// Strict comparison: value == threshold does not qualify, and
		// zero price or size can never exceed a positive threshold.
		value := price.Mul(size)
		if value.Cmp(d.threshold) <= 0 {
			continue
		}

		fp := Fingerprint(market.TokenID, side, price, size)
		if led.Contains(fp) {
			continue
		}
		led.Record(fp, now)

		candidates = append(candidates, Candidate{
			Fingerprint: fp,
			Side:        side,
			Price:       price,
			Size:        size,
			Value:       value,
			Severity:    d.severity(value),
			Market:      market,
		})
	}

	return candidates
}

// severity maps a USD value to its tier.
func (d *Detector) severity(value decimal.Decimal) string {
	switch {
	case value.Cmp(d.highUSD) >= 0:
		return "high"
	case value.Cmp(d.mediumUSD) >= 0:
		return "medium"
	default:
		return "low"
	}
}

// FeedRecord builds the front-end alert record for the candidate.
func (c Candidate) FeedRecord(now time.Time) feed.Record {
	now = now.UTC()
	return feed.Record{
		ID:        c.Fingerprint,
		Time:      now.Format("15:04:05"),
		Timestamp: now.Format(time.RFC3339),
		Type:      "WHALE",
		Message: fmt.Sprintf("%s detected in '%s' (Value: $%s)",
			c.Side.WallLabel(), c.Market.Question, FormatAmount(c.Value.InexactFloat64(), 0)),
		Severity:       c.Severity,
		MarketQuestion: c.Market.Question,
		MarketSlug:     c.Market.Slug,
		Value:          c.Value.InexactFloat64(),
		Price:          c.Price.InexactFloat64(),
		Size:           c.Size.InexactFloat64(),
	}
}

// FormatAmount renders a USD amount with thousands separators and the given
// number of decimal places.
func FormatAmount(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	neg := false
	if strings.HasPrefix(intPart, "-") {
		neg = true
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
