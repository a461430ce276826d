package domain

// kelly.go — position sizing por criterio de Kelly para mercados binarios.
//
// Implementa:
//   - Kelly clásico: f* = (p·b − q) / b
//   - Fractional Kelly con escalado por tiers de edge
//   - Bet sizing con clamps de bankroll
//   - Kelly multi-outcome para mercados categóricos
//
// Referencias: Kelly 1956; Thorp 2006; arXiv 2412.14144 (Kelly en
// prediction markets).

import (
	"fmt"
	"math"
)

// KellyResult es el resultado de un cálculo de sizing.
type KellyResult struct {
	RawFraction    float64 // fracción Kelly óptima sin escalar
	ScaledFraction float64 // tras multiplicador fraccional y clamps
	BetSize        float64 // importe a apostar en USD
	Edge           float64 // edge estimado (probWin − marketProb)
	ExpectedValue  float64 // EV simplificado: edge × betSize
	Multiplier     float64 // tier fractional-Kelly aplicado
}

// ClassicKelly devuelve la fracción Kelly cruda f* para una apuesta binaria.
//
// probWin es la probabilidad real estimada de ganar, en (0, 1).
// oddsDecimal son las cuotas decimales ofrecidas (2.0 = even money);
// el net payout por dólar arriesgado es oddsDecimal − 1.
//
// Devuelve 0 cuando los inputs están fuera de dominio o el edge es
// no-positivo: input inválido = no apostar, nunca un error.
func ClassicKelly(probWin, oddsDecimal float64) float64 {
	if probWin <= 0 || probWin >= 1 || oddsDecimal <= 1 {
		return 0.0
	}
	b := oddsDecimal - 1.0
	q := 1.0 - probWin
	fStar := (probWin*b - q) / b
	return math.Max(fStar, 0.0)
}

// EdgeForBinary devuelve el edge para un mercado binario:
// probabilidad estimada menos probabilidad implícita del mercado.
// Puede ser negativo.
func EdgeForBinary(probWin, marketProb float64) float64 {
	return probWin - marketProb
}

// kellyMultiplier selecciona el multiplicador fractional-Kelly según los
// tiers de edge. Los tiers se recorren en orden ascendente de umbral y
// gana el último cuyo umbral sea ≤ edge; por debajo de todos los tiers
// se usa BaseFraction.
func kellyMultiplier(edge float64, p KellyParams) float64 {
	multiplier := p.BaseFraction
	for _, tier := range p.EdgeTiers {
		if edge >= tier.MinEdge {
			multiplier = tier.Fraction
		}
	}
	return multiplier
}

// SizeBet calcula el bet size Kelly-óptimo para un mercado binario.
//
// probWin es la probabilidad de YES estimada por el modelo, marketProb el
// precio actual del contrato YES (su probabilidad implícita), bankroll el
// capital disponible en USD.
//
// Si el edge queda por debajo de MinEdge o probWin por debajo de
// MinConfidence, devuelve un resultado a cero que aún reporta el edge.
//
// Nota heredada del diseño original: una vez pasados los gates de
// edge/confianza, la fracción escalada se clampea al suelo MinBetFraction
// INCLUSO si la señal Kelly cruda era ~0 — un trade puede salir forzado
// al tamaño mínimo. Comportamiento preservado a propósito (los tests lo
// fijan); ver DESIGN.md antes de "arreglarlo".
func SizeBet(probWin, marketProb, bankroll float64, p KellyParams) KellyResult {
	edge := EdgeForBinary(probWin, marketProb)
	if edge < p.MinEdge || probWin < p.MinConfidence {
		return KellyResult{Edge: edge}
	}

	// Cuotas decimales implícitas en el precio: comprar YES a marketProb
	// paga 1/marketProb si gana.
	oddsDecimal := 0.0
	if marketProb > 0 {
		oddsDecimal = 1.0 / marketProb
	}
	rawF := ClassicKelly(probWin, oddsDecimal)

	multiplier := kellyMultiplier(edge, p)
	scaledF := rawF * multiplier

	scaledF = math.Max(scaledF, p.MinBetFraction)
	scaledF = math.Min(scaledF, p.MaxBetFraction)

	betUSD := round2(scaledF * bankroll)

	return KellyResult{
		RawFraction:    rawF,
		ScaledFraction: scaledF,
		BetSize:        betUSD,
		Edge:           edge,
		ExpectedValue:  edge * betUSD,
		Multiplier:     multiplier,
	}
}

// MultiOutcomeKelly calcula allocations Kelly para un mercado multi-outcome.
//
// Enfoque simplificado: cada outcome se trata como un binario YES/NO
// independiente, se calcula Kelly por outcome y se normaliza para que la
// suma no supere fraction × bankroll. Devuelve la allocation en USD por
// outcome.
//
// Longitudes distintas de probabilities y marketPrices son un bug del
// caller, no una condición de mercado: error duro.
func MultiOutcomeKelly(probabilities, marketPrices []float64, bankroll, fraction float64) ([]float64, error) {
	n := len(probabilities)
	if n != len(marketPrices) {
		return nil, fmt.Errorf("domain.MultiOutcomeKelly: %d probabilities vs %d market prices", n, len(marketPrices))
	}

	raw := make([]float64, n)
	total := 0.0
	for i, mp := range marketPrices {
		if mp <= 0 || mp >= 1 {
			continue
		}
		raw[i] = ClassicKelly(probabilities[i], 1.0/mp)
		total += raw[i]
	}

	allocations := make([]float64, n)
	if total <= 0 {
		return allocations, nil
	}

	// Escalar hacia abajo para que la allocation total sea ≤ fraction.
	scale := math.Min(fraction/total, 1.0)
	for i, r := range raw {
		allocations[i] = round2(r * scale * bankroll)
	}
	return allocations, nil
}

// round2 redondea a 2 decimales (céntimos de USD).
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
