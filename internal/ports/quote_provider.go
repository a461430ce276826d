package ports

import (
	"context"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

// QuoteProvider entrega cotizaciones normalizadas de mercados binarios.
type QuoteProvider interface {
	// Next devuelve la siguiente cotización disponible.
	// Devuelve io.EOF cuando no quedan más cotizaciones.
	Next(ctx context.Context) (domain.Quote, error)
}
