package paper

// Paper trading engine: consumes a quote stream, routes every market
// through the risk manager, and tracks the resulting virtual portfolio.
// No venue I/O happens here; the quote provider is the only data source.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/alejandrodnm/predrisk/internal/application/risk"
	"github.com/alejandrodnm/predrisk/internal/domain"
	"github.com/alejandrodnm/predrisk/internal/ports"
)

// Engine replays quotes through the risk manager.
type Engine struct {
	manager *risk.Manager
	quotes  ports.QuoteProvider
	journal ports.Journal
	notify  ports.Notifier
	params  domain.Params

	lastDay time.Time // date (UTC, midnight) of the last quote seen
}

// New creates a paper engine. journal and notify may be nil; the engine
// then runs silently, which keeps tests lean.
func New(manager *risk.Manager, quotes ports.QuoteProvider, journal ports.Journal, notify ports.Notifier, params domain.Params) *Engine {
	return &Engine{
		manager: manager,
		quotes:  quotes,
		journal: journal,
		notify:  notify,
		params:  params,
	}
}

// RunResult aggregates everything produced by one replay.
type RunResult struct {
	QuotesProcessed int
	Filtered        int
	Trades          int
	Skips           int
	Halts           int
	PositionsClosed int
	StopLossCloses  int
	RealizedPnL     float64
	FinalBankroll   float64
	OpenPositions   int
}

// Run consumes quotes until the provider is exhausted or the context is
// cancelled. Journal and notifier errors are logged and skipped: a replay
// must not die because stdout or the DB hiccuped.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	for {
		quote, err := e.quotes.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("paper.Run: next quote: %w", err)
		}

		result.QuotesProcessed++
		e.rollDayIfNeeded(quote)

		if quote.Settled {
			e.settle(ctx, quote, result)
			continue
		}

		e.manager.UpdateMark(quote.MarketID, quote.YesPrice)
		e.closeStopLosses(ctx, result)

		if !e.passesFilter(quote) {
			result.Filtered++
			continue
		}

		decision := e.manager.EvaluateTrade(quote.ModelProb, quote.YesPrice, quote.MarketID, quote.Category)
		e.record(ctx, quote, decision)

		switch decision.Action {
		case domain.ActionTrade:
			e.manager.OpenPosition(domain.Position{
				MarketID:     quote.MarketID,
				Side:         domain.SideYes,
				EntryPrice:   quote.YesPrice,
				Quantity:     decision.Kelly.BetSize / quote.YesPrice,
				CurrentPrice: quote.YesPrice,
				Category:     quote.Category,
			})
			result.Trades++
		case domain.ActionSkip:
			result.Skips++
		case domain.ActionHalt:
			result.Halts++
		}
	}

	result.RealizedPnL = round2(e.manager.Bankroll() - e.params.Bankroll)
	result.FinalBankroll = e.manager.Bankroll()
	result.OpenPositions = e.manager.NumOpenPositions()

	slog.Info("paper: replay finished",
		"quotes", result.QuotesProcessed,
		"trades", result.Trades,
		"skips", result.Skips,
		"halts", result.Halts,
		"closed", result.PositionsClosed,
		"pnl", fmt.Sprintf("$%.2f", result.RealizedPnL),
	)
	return result, nil
}

// rollDayIfNeeded resets the daily P&L accumulator on date boundaries.
// The engine has no wall clock; days advance with quote timestamps.
func (e *Engine) rollDayIfNeeded(quote domain.Quote) {
	if quote.Timestamp.IsZero() {
		return
	}
	day := quote.Timestamp.UTC().Truncate(24 * time.Hour)
	if e.lastDay.IsZero() {
		e.lastDay = day
		return
	}
	if day.After(e.lastDay) {
		e.manager.ResetDailyPnL()
		e.lastDay = day
	}
}

// settle closes the position (if any) at the settlement price.
func (e *Engine) settle(ctx context.Context, quote domain.Quote, result *RunResult) {
	pos, ok := e.manager.Position(quote.MarketID)
	if !ok {
		return
	}

	pnl := e.manager.ClosePosition(quote.MarketID, quote.SettlementPrice)
	result.PositionsClosed++

	if e.journal != nil {
		if err := e.journal.SavePositionClose(ctx, pos, quote.SettlementPrice, pnl); err != nil {
			slog.Warn("paper: error journaling close", "market", quote.MarketID, "err", err)
		}
	}
	slog.Debug("paper: settled position",
		"market", quote.MarketID,
		"settlement", quote.SettlementPrice,
		"pnl", fmt.Sprintf("$%.2f", pnl),
	)
}

// closeStopLosses exits every position whose stop-loss triggered at the
// current mark. Exits happen at the mark price, not the stop level.
func (e *Engine) closeStopLosses(ctx context.Context, result *RunResult) {
	for _, pos := range e.manager.PositionsNeedingStopLoss() {
		pnl := e.manager.ClosePosition(pos.MarketID, pos.CurrentPrice)
		result.PositionsClosed++
		result.StopLossCloses++

		if e.journal != nil {
			if err := e.journal.SavePositionClose(ctx, pos, pos.CurrentPrice, pnl); err != nil {
				slog.Warn("paper: error journaling stop-loss", "market", pos.MarketID, "err", err)
			}
		}
		slog.Info("paper: stop-loss close",
			"market", pos.MarketID,
			"entry", pos.EntryPrice,
			"mark", pos.CurrentPrice,
			"pnl", fmt.Sprintf("$%.2f", pnl),
		)
	}
}

// passesFilter applies the market pre-filter: enough volume, close enough
// expiry, and a post-fee edge worth evaluating at all.
func (e *Engine) passesFilter(quote domain.Quote) bool {
	f := e.params.MarketFilter

	if quote.Volume24h < f.MinVolume {
		return false
	}
	if !quote.EndDate.IsZero() && quote.DaysToExpiry() > f.MaxDaysToExpiry {
		return false
	}
	if quote.ModelProb-quote.YesPrice < f.MinProfitAfterFees {
		return false
	}
	return true
}

// record journals and notifies a decision, logging failures.
func (e *Engine) record(ctx context.Context, quote domain.Quote, decision domain.TradeDecision) {
	if e.journal != nil {
		if err := e.journal.SaveDecision(ctx, quote, decision); err != nil {
			slog.Warn("paper: error journaling decision", "market", quote.MarketID, "err", err)
		}
	}
	if e.notify != nil {
		if err := e.notify.NotifyDecision(ctx, quote, decision); err != nil {
			slog.Warn("paper: error notifying decision", "market", quote.MarketID, "err", err)
		}
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
