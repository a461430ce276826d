package domain

// var.go — Value-at-Risk para portfolios de mercados de predicción.
//
// Implementa:
//   - VaR paramétrico (gaussiano) para posiciones binarias
//   - VaR histórico sobre una serie de retornos
//   - Checks de límites: pérdida diaria, drawdown, stop-loss por posición
//
// En prediction markets cada posición está acotada en [0, 1]: la pérdida
// máxima de un YES es el precio de compra. El VaR se superpone a ese
// bound natural para afinar la gestión de riesgo.

import (
	"fmt"
	"math"
	"sort"
)

// VaRResult es el output de un cálculo de VaR.
type VaRResult struct {
	VaRUSD          float64  // VaR en USD (positivo = pérdida)
	VaRPct          float64  // VaR como fracción del bankroll
	TotalExposure   float64  // suma de cost bases
	MaxPossibleLoss float64  // peor caso absoluto (todos los contratos → 0/1)
	NumPositions    int
	Breaches        []string // reglas de riesgo violadas (vacío = ok)
}

// zScore devuelve el z-score one-sided para el nivel de confianza dado.
// Niveles canónicos por tabla; el resto via aproximación racional de
// Beasley-Springer-Moro (abreviada) de la inversa de la normal.
func zScore(confidence float64) float64 {
	switch confidence {
	case 0.90:
		return 1.282
	case 0.95:
		return 1.645
	case 0.99:
		return 2.326
	}
	p := 1.0 - confidence
	t := math.Sqrt(-2.0 * math.Log(p))
	const (
		c0, c1, c2 = 2.515517, 0.802853, 0.010328
		d1, d2, d3 = 1.432788, 0.189269, 0.001308
	)
	return t - (c0+c1*t+c2*t*t)/(1.0+d1*t+d2*t*t+d3*t*t*t)
}

// ParametricVaR calcula el VaR paramétrico de un conjunto de posiciones.
//
// Cada posición se modela como Bernoulli (gana el payout entero o pierde
// el cost basis) y el VaR del portfolio se aproxima con la normal. Se
// asume independencia entre posiciones — no hay término de covarianza.
// Es la simplificación paramétrica asumida del diseño; las posiciones
// llevan Category para un futuro modelo correlacionado.
func ParametricVaR(positions []Position, bankroll float64, p VaRParams) VaRResult {
	if len(positions) == 0 {
		return VaRResult{}
	}

	var mu, variance float64
	for _, pos := range positions {
		pWin := pos.CurrentPrice
		if pos.Side == SideNo {
			pWin = 1.0 - pos.CurrentPrice
		}
		lossIfLose := pos.MaxLoss()

		var gainIfWin float64
		if pos.Side == SideYes {
			gainIfWin = pos.Quantity - pos.CostBasis()
		} else {
			gainIfWin = pos.Quantity*pos.EntryPrice - pos.CostBasis()
		}
		gain := math.Max(gainIfWin, 0)

		mu += (1.0-pWin)*lossIfLose - pWin*gain
		variance += pWin * (1.0 - pWin) * (lossIfLose + gain) * (lossIfLose + gain)
	}

	sigma := math.Sqrt(variance)
	z := zScore(p.ConfidenceLevel)
	varUSD := math.Max(mu+z*sigma, 0.0)

	var totalExposure, maxLoss float64
	for _, pos := range positions {
		totalExposure += pos.CostBasis()
		maxLoss += pos.MaxLoss()
	}

	varPct := 0.0
	if bankroll > 0 {
		varPct = varUSD / bankroll
	}

	var breaches []string
	if len(positions) > p.MaxConcurrentPositions {
		breaches = append(breaches, fmt.Sprintf(
			"concurrent_positions(%d) > max(%d)", len(positions), p.MaxConcurrentPositions))
	}
	if totalExposure/bankroll > p.MaxPortfolioRisk {
		breaches = append(breaches, fmt.Sprintf(
			"portfolio_risk(%.2f%%) > max(%.2f%%)",
			totalExposure/bankroll*100, p.MaxPortfolioRisk*100))
	}

	return VaRResult{
		VaRUSD:          round2(varUSD),
		VaRPct:          math.Round(varPct*10000) / 10000,
		TotalExposure:   round2(totalExposure),
		MaxPossibleLoss: round2(maxLoss),
		NumPositions:    len(positions),
		Breaches:        breaches,
	}
}

// HistoricalVaR calcula el VaR histórico de una serie de P&L diarios.
// Devuelve la magnitud de pérdida (positiva) en el percentil de la
// confianza dada; 0 si la serie está vacía o ese percentil no es pérdida.
func HistoricalVaR(dailyReturns []float64, confidence float64) float64 {
	if len(dailyReturns) == 0 {
		return 0.0
	}
	sorted := make([]float64, len(dailyReturns))
	copy(sorted, dailyReturns)
	sort.Float64s(sorted)

	idx := int(math.Floor((1.0 - confidence) * float64(len(sorted))))
	if idx < 0 {
		idx = 0
	}
	return math.Max(-sorted[idx], 0.0)
}

// CheckDailyLoss devuelve true si hay que frenar el trading por pérdida
// diaria. Bankroll no-positivo = halt incondicional (fail-safe).
func CheckDailyLoss(dailyPnL, bankroll float64, p VaRParams) bool {
	if bankroll <= 0 {
		return true
	}
	return dailyPnL/bankroll <= -p.MaxDailyLossFraction
}

// CheckDrawdown devuelve true si se superó el límite de drawdown desde el
// pico de equity. Pico no-positivo = halt incondicional.
func CheckDrawdown(currentEquity, peakEquity float64, p VaRParams) bool {
	if peakEquity <= 0 {
		return true
	}
	dd := (peakEquity - currentEquity) / peakEquity
	return dd >= p.MaxDrawdownFraction
}

// CheckStopLoss devuelve true si una posición tocó su stop-loss.
// Para NO la pérdida se mide contra la distancia a la pérdida total en
// precio 1 (su "entrada" efectiva es 1 − entry).
func CheckStopLoss(pos Position, p VaRParams) bool {
	if pos.EntryPrice <= 0 {
		return true
	}
	lossFrac := (pos.EntryPrice - pos.CurrentPrice) / pos.EntryPrice
	if pos.Side == SideNo {
		lossFrac = (pos.CurrentPrice - pos.EntryPrice) / (1.0 - pos.EntryPrice)
	}
	return lossFrac >= p.StopLossFraction
}
