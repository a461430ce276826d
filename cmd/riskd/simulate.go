package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alejandrodnm/predrisk/internal/application/risk"
	"github.com/alejandrodnm/predrisk/internal/domain"
	"github.com/alejandrodnm/predrisk/internal/ports"
)

// runSimulate validates the configured strategy with one full Monte Carlo
// run and prints the report.
func runSimulate(ctx context.Context, winRate, avgEdge float64, params domain.Params, journal ports.Journal, notifier ports.Notifier) {
	slog.Info("running Monte Carlo validation",
		"paths", params.MonteCarlo.NumSimulations,
		"horizon_days", params.MonteCarlo.HorizonDays,
		"win_rate", winRate,
		"avg_edge", avgEdge,
	)

	res := risk.RunSimulation(winRate, avgEdge, params)

	if err := notifier.NotifySimulation(ctx, winRate, avgEdge, res); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	saveRun(ctx, journal, winRate, avgEdge, res)

	if !risk.MeetsRetentionTarget(res, params) {
		slog.Warn("10th-percentile outcome below retention target",
			"p10_final", res.P10FinalBankroll,
			"required", params.MonteCarlo.Min10thPercentileRetention*params.Bankroll,
		)
	}
}

// runSweep compares the configured strategy across candidate Kelly fractions.
func runSweep(ctx context.Context, spec string, winRate, avgEdge float64, params domain.Params, journal ports.Journal, notifier ports.Notifier) {
	fractions, err := parseFractions(spec)
	if err != nil {
		slog.Error("invalid -sweep value", "err", err, "value", spec)
		os.Exit(1)
	}

	slog.Info("running Kelly fraction sweep", "fractions", fractions)

	results := risk.SweepKellyFractions(fractions, winRate, avgEdge, params)

	if err := notifier.NotifySweep(ctx, fractions, results); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	for _, res := range results {
		saveRun(ctx, journal, winRate, avgEdge, res)
	}
}

func saveRun(ctx context.Context, journal ports.Journal, winRate, avgEdge float64, res domain.SimulationResult) {
	if journal == nil {
		return
	}
	if err := journal.SaveSimulationRun(ctx, winRate, avgEdge, res); err != nil {
		slog.Warn("error journaling simulation run", "err", err)
	}
}

// parseFractions parses "0.10,0.25,0.50" into floats in (0, 1].
func parseFractions(spec string) ([]float64, error) {
	parts := strings.Split(spec, ",")
	fractions := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		if f <= 0 || f > 1 {
			return nil, fmt.Errorf("fraction %s out of range (0, 1]", part)
		}
		fractions = append(fractions, f)
	}
	return fractions, nil
}
