package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alejandrodnm/predrisk/internal/adapters/notify"
	"github.com/alejandrodnm/predrisk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuote(question string) domain.Quote {
	return domain.Quote{
		MarketID:  "0xtest",
		Question:  question,
		YesPrice:  0.55,
		ModelProb: 0.70,
	}
}

func makeTradeDecision() domain.TradeDecision {
	return domain.TradeDecision{
		Action: domain.ActionTrade,
		Reason: "edge=15.00%, bet=$125.00",
		Kelly: domain.KellyResult{
			RawFraction:    0.3333,
			ScaledFraction: 0.025,
			BetSize:        125.0,
			Edge:           0.15,
			ExpectedValue:  18.75,
			Multiplier:     0.50,
		},
		VaR: domain.VaRResult{VaRUSD: 310.50, VaRPct: 0.0621, NumPositions: 3},
	}
}

func TestConsole_NotifyDecision_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	err := n.NotifyDecision(context.Background(), makeQuote("Will X happen?"), makeTradeDecision())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "TRADE")
	assert.Contains(t, out, "Will X happen?")
	assert.Contains(t, out, "edge=15.00%")
	assert.Contains(t, out, "var $310.50")
}

func TestConsole_NotifyDecision_Full(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	err := n.NotifyDecision(context.Background(), makeQuote("Will X happen?"), makeTradeDecision())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "KELLY")
	assert.Contains(t, out, "PORTFOLIO VaR")
	assert.Contains(t, out, "$125.00")
}

func TestConsole_NotifyDecision_HaltShowsReason(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	d := domain.TradeDecision{
		Action:        domain.ActionHalt,
		Reason:        "daily loss limit breached",
		DailyLossHalt: true,
	}
	err := n.NotifyDecision(context.Background(), makeQuote("Will X happen?"), d)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "HALT")
	assert.Contains(t, out, "daily loss limit")
}

func TestConsole_NotifyDecision_LongQuestionTruncated(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	longQ := strings.Repeat("A", 80)
	err := n.NotifyDecision(context.Background(), makeQuote(longQ), makeTradeDecision())
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), longQ)
}

func TestConsole_NotifySimulation(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	res := domain.SimulationResult{
		NumSimulations:      10000,
		HorizonDays:         365,
		MeanFinalBankroll:   6560.0,
		MedianFinalBankroll: 6420.0,
		P10FinalBankroll:    4810.0,
		P90FinalBankroll:    7950.0,
		MeanROIPct:          31.2,
		MedianROIPct:        28.4,
		ProbPositiveROI:     0.91,
		ProbTargetROI:       0.62,
		EstimatedSharpe:     1.8,
	}
	err := n.NotifySimulation(context.Background(), 0.58, 0.08, res)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "MONTE CARLO")
	assert.Contains(t, out, "10000 paths")
	assert.Contains(t, out, "POSITIVE")
}

func TestConsole_NotifySimulation_NegativeVerdict(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	res := domain.SimulationResult{NumSimulations: 100, HorizonDays: 90, MedianROIPct: -12.0}
	err := n.NotifySimulation(context.Background(), 0.45, 0.0, res)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "NEGATIVE")
}

func TestConsole_NotifySweep(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	fractions := []float64{0.25, 0.50}
	results := []domain.SimulationResult{
		{NumSimulations: 500, HorizonDays: 365, MeanROIPct: 20.0, EstimatedSharpe: 1.5},
		{NumSimulations: 500, HorizonDays: 365, MeanROIPct: 35.0, EstimatedSharpe: 1.2},
	}
	err := n.NotifySweep(context.Background(), fractions, results)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "KELLY FRACTION SWEEP")
	assert.Contains(t, out, "0.25")
	assert.Contains(t, out, "0.50")
}

func TestConsole_NotifySweep_MismatchedLengths(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	err := n.NotifySweep(context.Background(), []float64{0.25}, nil)
	assert.Error(t, err)
}
