package ports

import (
	"context"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

// Notifier presenta decisiones y resultados de simulación al usuario.
type Notifier interface {
	// NotifyDecision muestra la decisión tomada para una cotización.
	// En la implementación de consola, imprime una línea compacta.
	NotifyDecision(ctx context.Context, quote domain.Quote, decision domain.TradeDecision) error

	// NotifySimulation muestra el informe completo de una simulación.
	NotifySimulation(ctx context.Context, winRate, avgEdge float64, res domain.SimulationResult) error

	// NotifySweep muestra la tabla comparativa de fracciones de Kelly.
	NotifySweep(ctx context.Context, fractions []float64, results []domain.SimulationResult) error
}
