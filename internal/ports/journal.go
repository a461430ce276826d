package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

// Journal persiste las decisiones de riesgo y los cierres de posición.
type Journal interface {
	// SaveDecision registra la decisión tomada para una cotización.
	SaveDecision(ctx context.Context, quote domain.Quote, decision domain.TradeDecision) error

	// SavePositionClose registra el cierre de una posición con su P&L realizado.
	SavePositionClose(ctx context.Context, pos domain.Position, settlementPrice, pnl float64) error

	// SaveSimulationRun registra los agregados de una simulación Monte Carlo.
	SaveSimulationRun(ctx context.Context, winRate, avgEdge float64, res domain.SimulationResult) error

	// GetDecisions devuelve las decisiones registradas en el rango de tiempo dado.
	GetDecisions(ctx context.Context, from, to time.Time) ([]domain.DecisionRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
