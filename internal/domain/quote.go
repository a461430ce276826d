package domain

import "time"

// Quote es la forma normalizada de mercado que consume el motor: el core
// nunca habla con un venue directamente, solo ve esta estructura.
type Quote struct {
	MarketID string
	Question string
	Category string

	// YesPrice es el precio del contrato YES = probabilidad implícita
	// del mercado, en (0, 1).
	YesPrice float64

	// ModelProb es la probabilidad de YES estimada por el modelo del
	// caller. El core no opina sobre cómo se produce.
	ModelProb float64

	Volume24h float64
	EndDate   time.Time
	Timestamp time.Time

	// Settled indica que el mercado resolvió; SettlementPrice es 1.0 si
	// resolvió YES, 0.0 si NO.
	Settled         bool
	SettlementPrice float64
}

// DaysToExpiry devuelve los días hasta la resolución del mercado,
// relativos al timestamp de la quote. 0 si EndDate no está definido.
func (q Quote) DaysToExpiry() float64 {
	if q.EndDate.IsZero() {
		return 0
	}
	d := q.EndDate.Sub(q.Timestamp).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
