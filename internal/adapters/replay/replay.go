package replay

// replay.go — QuoteProvider backed by a JSONL fixture file.
//
// Each line is one quote snapshot. Useful for shadow runs against recorded
// market data: the paper engine consumes the file exactly as it would a
// live feed, optionally paced to approximate real arrival rates.

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

// quoteRecord is the wire form of one fixture line.
type quoteRecord struct {
	MarketID        string    `json:"market_id"`
	Question        string    `json:"question"`
	Category        string    `json:"category"`
	YesPrice        float64   `json:"yes_price"`
	ModelProb       float64   `json:"model_prob"`
	Volume24h       float64   `json:"volume_24h"`
	EndDate         time.Time `json:"end_date"`
	Timestamp       time.Time `json:"timestamp"`
	Settled         bool      `json:"settled"`
	SettlementPrice float64   `json:"settlement_price"`
}

// Provider implements ports.QuoteProvider over a JSONL file.
type Provider struct {
	file    *os.File
	scanner *bufio.Scanner
	limiter *rate.Limiter
	line    int
}

// NewProvider opens the fixture at path. quotesPerSec > 0 paces delivery;
// 0 replays as fast as the consumer can read.
func NewProvider(path string, quotesPerSec float64) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay.NewProvider: open %q: %w", path, err)
	}

	var limiter *rate.Limiter
	if quotesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(quotesPerSec), 1)
	}

	return &Provider{
		file:    f,
		scanner: bufio.NewScanner(f),
		limiter: limiter,
	}, nil
}

// Next returns the next quote in the file, or io.EOF when exhausted.
// Blank lines are skipped; a malformed line is a hard error.
func (p *Provider) Next(ctx context.Context) (domain.Quote, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return domain.Quote{}, fmt.Errorf("replay.Next: rate limiter: %w", err)
		}
	}

	for p.scanner.Scan() {
		p.line++
		raw := p.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec quoteRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return domain.Quote{}, fmt.Errorf("replay.Next: line %d: %w", p.line, err)
		}
		return toDomain(rec), nil
	}

	if err := p.scanner.Err(); err != nil {
		return domain.Quote{}, fmt.Errorf("replay.Next: read: %w", err)
	}
	return domain.Quote{}, io.EOF
}

// Close releases the underlying file.
func (p *Provider) Close() error {
	return p.file.Close()
}

func toDomain(rec quoteRecord) domain.Quote {
	return domain.Quote{
		MarketID:        rec.MarketID,
		Question:        rec.Question,
		Category:        rec.Category,
		YesPrice:        rec.YesPrice,
		ModelProb:       rec.ModelProb,
		Volume24h:       rec.Volume24h,
		EndDate:         rec.EndDate,
		Timestamp:       rec.Timestamp,
		Settled:         rec.Settled,
		SettlementPrice: rec.SettlementPrice,
	}
}
