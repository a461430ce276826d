package domain

// Side es el lado de un contrato binario.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Position es una posición abierta en un mercado de predicción.
// El notional en USD es Quantity × EntryPrice.
type Position struct {
	MarketID     string
	Side         Side
	EntryPrice   float64 // precio pagado por contrato, en (0, 1)
	Quantity     float64 // número de contratos
	CurrentPrice float64 // último precio del mercado, actualizado por el caller
	Category     string  // agrupación opcional para checks de correlación
}

// CostBasis devuelve el coste total de la posición en USD.
func (p Position) CostBasis() float64 {
	return p.Quantity * p.EntryPrice
}

// MarketValue devuelve el valor de mercado actual en USD.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// UnrealizedPnL devuelve el P&L no realizado en USD.
func (p Position) UnrealizedPnL() float64 {
	return p.MarketValue() - p.CostBasis()
}

// MaxLoss devuelve la pérdida en el peor caso: el contrato resuelve a 0
// (YES) o a 1 (NO).
func (p Position) MaxLoss() float64 {
	if p.Side == SideYes {
		return p.CostBasis()
	}
	return p.Quantity * (1.0 - p.EntryPrice)
}
