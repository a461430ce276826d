package domain

import "time"

// DecisionRecord es una decisión tal y como queda registrada en el journal.
type DecisionRecord struct {
	ID        string
	MarketID  string
	Question  string
	Action    Action
	Reason    string
	EdgePct   float64 // edge en porcentaje (8.0 = 8%)
	BetSize   float64 // tamaño de apuesta en USD
	VaRUSD    float64 // VaR de cartera en el momento de la decisión
	CreatedAt time.Time
}
