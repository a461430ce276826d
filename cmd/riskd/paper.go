package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/predrisk/internal/adapters/replay"
	"github.com/alejandrodnm/predrisk/internal/application/paper"
	"github.com/alejandrodnm/predrisk/internal/application/risk"
	"github.com/alejandrodnm/predrisk/internal/domain"
	"github.com/alejandrodnm/predrisk/internal/ports"
)

// runPaper replays a fixture file through the risk manager and prints the
// resulting portfolio summary.
func runPaper(ctx context.Context, fixtures string, quotesPerSec float64, params domain.Params, journal ports.Journal, notifier ports.Notifier) {
	if fixtures == "" {
		slog.Error("paper mode needs -fixtures or replay.fixtures in config")
		os.Exit(1)
	}

	provider, err := replay.NewProvider(fixtures, quotesPerSec)
	if err != nil {
		slog.Error("failed to open fixtures", "err", err, "path", fixtures)
		os.Exit(1)
	}
	defer provider.Close()

	manager := risk.NewManager(params)
	engine := paper.New(manager, provider, journal, notifier, params)

	res, err := engine.Run(ctx)
	if err != nil {
		slog.Error("paper run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("paper run summary",
		"quotes", res.QuotesProcessed,
		"filtered", res.Filtered,
		"trades", res.Trades,
		"skips", res.Skips,
		"halts", res.Halts,
		"closed", res.PositionsClosed,
		"stop_losses", res.StopLossCloses,
		"open", res.OpenPositions,
		"pnl", fmt.Sprintf("$%.2f", res.RealizedPnL),
		"bankroll", fmt.Sprintf("$%.2f", res.FinalBankroll),
	)
}
