package risk

// manager.go — orchestrates Kelly sizing, VaR checks and Monte Carlo
// validation into a single trade-admission pipeline.

import (
	"fmt"
	"strings"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

// Manager tracks bankroll, peak equity, open positions and daily P&L, and
// runs every proposed trade through Kelly sizing → halt checks → VaR.
//
// Manager does no internal locking: EvaluateTrade reads the position set
// and bankroll that OpenPosition/ClosePosition mutate, so in a concurrent
// host every mutating call must be serialized by the caller (mutex or a
// single owning goroutine).
type Manager struct {
	params     domain.Params
	bankroll   float64
	peakEquity float64
	dailyPnL   float64
	positions  []domain.Position
	mcResult   *domain.SimulationResult
}

// NewManager creates a Manager starting at the configured bankroll.
func NewManager(params domain.Params) *Manager {
	return &Manager{
		params:     params,
		bankroll:   params.Bankroll,
		peakEquity: params.Bankroll,
	}
}

// EvaluateTrade decides whether to enter a new trade and at what size.
//
// Pipeline order matters and is fixed: Kelly sizing always runs first
// (its edge figure feeds the messaging even when a halt overrides it),
// then daily-loss halt, drawdown halt, zero-size skip, and finally a
// parametric VaR check over the portfolio plus a hypothetical position
// representing this trade.
func (m *Manager) EvaluateTrade(probWin, marketProb float64, marketID, category string) domain.TradeDecision {
	kellyRes := domain.SizeBet(probWin, marketProb, m.bankroll, m.params.Kelly)

	if domain.CheckDailyLoss(m.dailyPnL, m.bankroll, m.params.VaR) {
		return domain.TradeDecision{
			Action:        domain.ActionHalt,
			Reason:        "daily loss limit breached",
			Kelly:         kellyRes,
			VaR:           m.currentVaR(),
			DailyLossHalt: true,
		}
	}

	if domain.CheckDrawdown(m.bankroll, m.peakEquity, m.params.VaR) {
		return domain.TradeDecision{
			Action:       domain.ActionHalt,
			Reason:       "max drawdown breached",
			Kelly:        kellyRes,
			VaR:          m.currentVaR(),
			DrawdownHalt: true,
		}
	}

	if kellyRes.BetSize <= 0 {
		return domain.TradeDecision{
			Action: domain.ActionSkip,
			Reason: fmt.Sprintf("insufficient edge (%.2f%%)", kellyRes.Edge*100),
			Kelly:  kellyRes,
			VaR:    m.currentVaR(),
		}
	}

	// Hypothetical position to measure the impact of entering.
	if marketID == "" {
		marketID = "PROPOSED"
	}
	quantity := 0.0
	if marketProb > 0 {
		quantity = kellyRes.BetSize / marketProb
	}
	hypo := domain.Position{
		MarketID:     marketID,
		Side:         domain.SideYes,
		EntryPrice:   marketProb,
		Quantity:     quantity,
		CurrentPrice: marketProb,
		Category:     category,
	}
	varRes := domain.ParametricVaR(append(append([]domain.Position{}, m.positions...), hypo), m.bankroll, m.params.VaR)

	if len(varRes.Breaches) > 0 {
		return domain.TradeDecision{
			Action: domain.ActionSkip,
			Reason: "VaR breaches: " + strings.Join(varRes.Breaches, "; "),
			Kelly:  kellyRes,
			VaR:    varRes,
		}
	}

	return domain.TradeDecision{
		Action: domain.ActionTrade,
		Reason: fmt.Sprintf("edge=%.2f%%, bet=$%.2f", kellyRes.Edge*100, kellyRes.BetSize),
		Kelly:  kellyRes,
		VaR:    varRes,
	}
}

// OpenPosition adds a position to the open set. No re-validation: the
// caller is assumed to have acted on a TRADE decision.
func (m *Manager) OpenPosition(pos domain.Position) {
	m.positions = append(m.positions, pos)
}

// ClosePosition settles a position and returns the realized P&L, rounded
// to cents. Unknown market IDs are a no-op returning 0.
func (m *Manager) ClosePosition(marketID string, settlementPrice float64) float64 {
	idx := -1
	for i, p := range m.positions {
		if p.MarketID == marketID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0.0
	}
	pos := m.positions[idx]

	var pnl float64
	if pos.Side == domain.SideYes {
		pnl = pos.Quantity * (settlementPrice - pos.EntryPrice)
	} else {
		pnl = pos.Quantity * (pos.EntryPrice - settlementPrice)
	}

	m.bankroll += pnl
	m.dailyPnL += pnl
	if m.bankroll > m.peakEquity {
		m.peakEquity = m.bankroll
	}
	m.positions = append(m.positions[:idx], m.positions[idx+1:]...)
	return round2(pnl)
}

// UpdateMark refreshes the mark price of an open position. The core never
// fetches prices itself; callers push marks as quotes arrive.
func (m *Manager) UpdateMark(marketID string, price float64) bool {
	for i := range m.positions {
		if m.positions[i].MarketID == marketID {
			m.positions[i].CurrentPrice = price
			return true
		}
	}
	return false
}

// ResetDailyPnL zeroes the daily accumulator. The manager has no internal
// clock; the caller invokes this at day boundaries.
func (m *Manager) ResetDailyPnL() {
	m.dailyPnL = 0.0
}

// ValidateStrategy runs a Monte Carlo simulation against the manager's own
// configuration and caches the result.
func (m *Manager) ValidateStrategy(winRate, avgEdge float64) domain.SimulationResult {
	res := RunSimulation(winRate, avgEdge, m.params)
	m.mcResult = &res
	return res
}

// MCResult returns the last cached simulation, or nil if ValidateStrategy
// has not run.
func (m *Manager) MCResult() *domain.SimulationResult {
	return m.mcResult
}

// PositionsNeedingStopLoss returns the open positions whose stop-loss is
// currently triggered at their mark price.
func (m *Manager) PositionsNeedingStopLoss() []domain.Position {
	var out []domain.Position
	for _, p := range m.positions {
		if domain.CheckStopLoss(p, m.params.VaR) {
			out = append(out, p)
		}
	}
	return out
}

// Position returns the open position for a market, if any.
func (m *Manager) Position(marketID string) (domain.Position, bool) {
	for _, p := range m.positions {
		if p.MarketID == marketID {
			return p, true
		}
	}
	return domain.Position{}, false
}

// NumOpenPositions returns the count of open positions.
func (m *Manager) NumOpenPositions() int {
	return len(m.positions)
}

// TotalExposure returns the sum of cost bases across open positions.
func (m *Manager) TotalExposure() float64 {
	total := 0.0
	for _, p := range m.positions {
		total += p.CostBasis()
	}
	return total
}

// PortfolioRiskPct returns exposure over bankroll, 0 when bankroll ≤ 0.
func (m *Manager) PortfolioRiskPct() float64 {
	if m.bankroll <= 0 {
		return 0.0
	}
	return m.TotalExposure() / m.bankroll
}

// Bankroll returns the current bankroll.
func (m *Manager) Bankroll() float64 { return m.bankroll }

// PeakEquity returns the highest bankroll seen so far.
func (m *Manager) PeakEquity() float64 { return m.peakEquity }

// DailyPnL returns the realized P&L accumulated since the last reset.
func (m *Manager) DailyPnL() float64 { return m.dailyPnL }

func (m *Manager) currentVaR() domain.VaRResult {
	return domain.ParametricVaR(m.positions, m.bankroll, m.params.VaR)
}
