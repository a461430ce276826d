package risk

import (
	"testing"

	"github.com/alejandrodnm/predrisk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	seed := uint64(42)
	p := domain.DefaultParams()
	p.MonteCarlo.NumSimulations = 200
	p.MonteCarlo.HorizonDays = 90
	p.MonteCarlo.Seed = &seed
	return NewManager(p)
}

// --- EvaluateTrade ---

func TestEvaluateTrade_TradeWithEdge(t *testing.T) {
	m := newTestManager()
	d := m.EvaluateTrade(0.70, 0.55, "M1", "")
	assert.Equal(t, domain.ActionTrade, d.Action)
	assert.Greater(t, d.Kelly.BetSize, 0.0)
	assert.Contains(t, d.Reason, "edge=")
}

func TestEvaluateTrade_SkipNoEdge(t *testing.T) {
	m := newTestManager()
	d := m.EvaluateTrade(0.56, 0.55, "M1", "")
	assert.Equal(t, domain.ActionSkip, d.Action)
	assert.Contains(t, d.Reason, "insufficient edge (1.00%)")
}

func TestEvaluateTrade_HaltDailyLoss(t *testing.T) {
	m := newTestManager()
	m.dailyPnL = -200 // −4% de $5k, por encima del límite del 2%
	d := m.EvaluateTrade(0.70, 0.55, "M1", "")
	assert.Equal(t, domain.ActionHalt, d.Action)
	assert.True(t, d.DailyLossHalt)
	assert.False(t, d.DrawdownHalt)
}

func TestEvaluateTrade_HaltDrawdown(t *testing.T) {
	m := newTestManager()
	m.peakEquity = 5000
	m.bankroll = 4000 // 20% de drawdown, por encima del límite del 15%
	d := m.EvaluateTrade(0.70, 0.55, "M1", "")
	assert.Equal(t, domain.ActionHalt, d.Action)
	assert.True(t, d.DrawdownHalt)
	assert.False(t, d.DailyLossHalt)
}

func TestEvaluateTrade_DailyLossHaltWinsOverDrawdown(t *testing.T) {
	m := newTestManager()
	m.dailyPnL = -500
	m.peakEquity = 10000 // ambos halts aplicarían; el diario va primero
	d := m.EvaluateTrade(0.70, 0.55, "M1", "")
	assert.True(t, d.DailyLossHalt)
	assert.False(t, d.DrawdownHalt)
}

func TestEvaluateTrade_SkipOnVaRBreach(t *testing.T) {
	m := newTestManager()
	for _, id := range []string{"M0", "M1", "M2", "M3", "M4", "M5", "M6", "M7", "M8", "M9"} {
		m.OpenPosition(domain.Position{MarketID: id, Side: domain.SideYes, EntryPrice: 0.50, Quantity: 10, CurrentPrice: 0.50})
	}
	d := m.EvaluateTrade(0.70, 0.55, "NEW", "")
	assert.Equal(t, domain.ActionSkip, d.Action)
	assert.Contains(t, d.Reason, "concurrent_positions")
}

func TestEvaluateTrade_HypotheticalDoesNotPersist(t *testing.T) {
	m := newTestManager()
	d := m.EvaluateTrade(0.70, 0.55, "M1", "")
	require.Equal(t, domain.ActionTrade, d.Action)
	assert.Equal(t, 0, m.NumOpenPositions())
}

// --- Lifecycle de posiciones ---

func TestClosePosition_YesWin(t *testing.T) {
	m := newTestManager()
	m.OpenPosition(domain.Position{MarketID: "M1", Side: domain.SideYes, EntryPrice: 0.50, Quantity: 100, CurrentPrice: 0.50})
	require.Equal(t, 1, m.NumOpenPositions())

	pnl := m.ClosePosition("M1", 1.0)
	assert.InDelta(t, 50.0, pnl, 0.01)
	assert.InDelta(t, 5050.0, m.Bankroll(), 0.01)
	assert.InDelta(t, 5050.0, m.PeakEquity(), 0.01)
	assert.Equal(t, 0, m.NumOpenPositions())
}

func TestClosePosition_YesLoss(t *testing.T) {
	m := newTestManager()
	m.OpenPosition(domain.Position{MarketID: "M1", Side: domain.SideYes, EntryPrice: 0.60, Quantity: 100, CurrentPrice: 0.60})
	pnl := m.ClosePosition("M1", 0.0)
	assert.InDelta(t, -60.0, pnl, 0.01)
	assert.InDelta(t, 4940.0, m.Bankroll(), 0.01)
	assert.InDelta(t, 5000.0, m.PeakEquity(), 0.01) // el pico no baja
}

func TestClosePosition_NoSide(t *testing.T) {
	m := newTestManager()
	m.OpenPosition(domain.Position{MarketID: "M1", Side: domain.SideNo, EntryPrice: 0.40, Quantity: 100, CurrentPrice: 0.40})
	// NO gana cuando el mercado resuelve a 0
	pnl := m.ClosePosition("M1", 0.0)
	assert.InDelta(t, 40.0, pnl, 0.01)
}

func TestClosePosition_UnknownIsNoOp(t *testing.T) {
	m := newTestManager()
	pnl := m.ClosePosition("NOPE", 1.0)
	assert.Equal(t, 0.0, pnl)
	assert.InDelta(t, 5000.0, m.Bankroll(), 1e-9)
}

func TestDailyPnLTrackingAndReset(t *testing.T) {
	m := newTestManager()
	m.OpenPosition(domain.Position{MarketID: "M1", Side: domain.SideYes, EntryPrice: 0.50, Quantity: 100, CurrentPrice: 0.50})
	m.ClosePosition("M1", 1.0)
	assert.InDelta(t, 50.0, m.DailyPnL(), 0.01)

	m.ResetDailyPnL()
	assert.Equal(t, 0.0, m.DailyPnL())
	assert.InDelta(t, 5050.0, m.Bankroll(), 0.01) // el reset no toca el bankroll
}

func TestUpdateMark(t *testing.T) {
	m := newTestManager()
	m.OpenPosition(domain.Position{MarketID: "M1", Side: domain.SideYes, EntryPrice: 0.50, Quantity: 100, CurrentPrice: 0.50})
	assert.True(t, m.UpdateMark("M1", 0.62))
	assert.False(t, m.UpdateMark("M2", 0.62))

	stops := m.PositionsNeedingStopLoss()
	assert.Empty(t, stops) // 0.62 > entry, sin pérdida
}

// --- Stop-loss ---

func TestPositionsNeedingStopLoss(t *testing.T) {
	m := newTestManager()
	m.OpenPosition(domain.Position{MarketID: "M1", Side: domain.SideYes, EntryPrice: 0.60, Quantity: 100, CurrentPrice: 0.40}) // −33%
	m.OpenPosition(domain.Position{MarketID: "M2", Side: domain.SideYes, EntryPrice: 0.50, Quantity: 100, CurrentPrice: 0.49}) // −2%
	stops := m.PositionsNeedingStopLoss()
	require.Len(t, stops, 1)
	assert.Equal(t, "M1", stops[0].MarketID)
}

// --- Queries ---

func TestTotalExposureAndRiskPct(t *testing.T) {
	m := newTestManager()
	m.OpenPosition(domain.Position{MarketID: "M1", Side: domain.SideYes, EntryPrice: 0.50, Quantity: 100, CurrentPrice: 0.50})
	m.OpenPosition(domain.Position{MarketID: "M2", Side: domain.SideYes, EntryPrice: 0.40, Quantity: 50, CurrentPrice: 0.45})
	assert.InDelta(t, 70.0, m.TotalExposure(), 0.01)
	assert.InDelta(t, 0.014, m.PortfolioRiskPct(), 0.001)
}

func TestPortfolioRiskPct_ZeroBankroll(t *testing.T) {
	m := newTestManager()
	m.bankroll = 0
	assert.Equal(t, 0.0, m.PortfolioRiskPct())
}

// --- Validación Monte Carlo ---

func TestValidateStrategy_CachesResult(t *testing.T) {
	m := newTestManager()
	require.Nil(t, m.MCResult())

	res := m.ValidateStrategy(0.58, 0.08)
	assert.Equal(t, 200, res.NumSimulations)
	require.NotNil(t, m.MCResult())
	assert.Equal(t, res.MedianROIPct, m.MCResult().MedianROIPct)
}

func TestValidateStrategy_PositiveEdge(t *testing.T) {
	m := newTestManager()
	res := m.ValidateStrategy(0.60, 0.10)
	assert.Greater(t, res.MeanROIPct, 0.0)
}
