package domain

// Params agrupa todos los parámetros del motor de riesgo.
//
// Valores calibrados a partir de research sobre winners de Polymarket y
// bots de Kalshi. Todos los importes monetarios están en USD, las
// probabilidades en [0, 1].
//
// No hay singleton global: cada Manager/engine recibe su propio Params.
type Params struct {
	// Bankroll inicial en USD.
	Bankroll float64

	Kelly        KellyParams
	VaR          VaRParams
	MonteCarlo   MonteCarloParams
	MarketFilter MarketFilterParams
}

// EdgeTier asocia un edge mínimo con el multiplicador fractional-Kelly a
// usar cuando el edge del trade alcanza ese umbral. Los tiers se evalúan
// en orden ascendente de MinEdge y gana el último que matchea.
type EdgeTier struct {
	MinEdge  float64
	Fraction float64
}

// KellyParams gobierna el position sizing basado en Kelly.
type KellyParams struct {
	// Multiplicador fractional-Kelly base (quarter-Kelly por defecto).
	BaseFraction float64

	// Escalado por tiers de edge. Ordenados por MinEdge ascendente.
	EdgeTiers []EdgeTier

	// Suelo y techo duros de cualquier apuesta como fracción del bankroll.
	MinBetFraction float64
	MaxBetFraction float64

	// Edge mínimo para operar.
	MinEdge float64

	// Confianza mínima del modelo para actuar.
	MinConfidence float64
}

// VaRParams gobierna los límites de Value-at-Risk.
type VaRParams struct {
	// Fracción máxima del bankroll en riesgo entre todas las posiciones.
	MaxPortfolioRisk float64

	// Número máximo de posiciones abiertas simultáneas.
	MaxConcurrentPositions int

	// Correlación máxima entre posiciones abiertas. Declarado pero NO
	// calculado por el motor actual: las posiciones llevan Category para
	// agruparlas, pero ningún check lo consume todavía. Ver DESIGN.md.
	MaxCorrelation float64

	// Pérdida diaria que frena nuevos trades hasta el día siguiente.
	MaxDailyLossFraction float64

	// Drawdown desde el pico de equity que dispara el stop total.
	MaxDrawdownFraction float64

	// Stop-loss por posición como fracción del precio de entrada.
	StopLossFraction float64

	// Nivel de confianza del VaR paramétrico (0.90 / 0.95 / 0.99).
	ConfidenceLevel float64
}

// MonteCarloParams gobierna las simulaciones Monte Carlo.
type MonteCarloParams struct {
	// Número de paths de simulación.
	NumSimulations int

	// Horizonte en días.
	HorizonDays int

	// Trades por día promedio.
	TradesPerDay float64

	// El percentil 10 debe retener al menos esta fracción del bankroll
	// inicial para que la estrategia sea aceptable.
	Min10thPercentileRetention float64

	// ROI anual objetivo en USD absolutos. Solo para reporting.
	TargetYearlyROIUSD float64

	// Seed para reproducibilidad (nil = aleatorio en cada run).
	Seed *uint64
}

// MarketFilterParams filtra mercados antes de evaluarlos siquiera.
// El core no los aplica: los consume la capa de estrategia (paper engine).
type MarketFilterParams struct {
	MinVolume          float64 // volumen 24h mínimo en USD
	MaxDaysToExpiry    float64 // días máximos hasta resolución
	MinProfitAfterFees float64 // edge mínimo tras fees para considerar el mercado
}

// DefaultParams devuelve los parámetros calibrados por defecto.
func DefaultParams() Params {
	seed := uint64(42)
	return Params{
		Bankroll: 5_000,
		Kelly: KellyParams{
			BaseFraction: 0.25,
			EdgeTiers: []EdgeTier{
				{MinEdge: 0.05, Fraction: 0.25}, // 5-10% edge  → quarter-Kelly
				{MinEdge: 0.10, Fraction: 0.35}, // 10-15% edge → 0.35× Kelly
				{MinEdge: 0.15, Fraction: 0.50}, // 15%+  edge  → half-Kelly (cap)
			},
			MinBetFraction: 0.005,
			MaxBetFraction: 0.05,
			MinEdge:        0.05,
			MinConfidence:  0.60,
		},
		VaR: VaRParams{
			MaxPortfolioRisk:       0.20,
			MaxConcurrentPositions: 10,
			MaxCorrelation:         0.70,
			MaxDailyLossFraction:   0.02,
			MaxDrawdownFraction:    0.15,
			StopLossFraction:       0.05,
			ConfidenceLevel:        0.95,
		},
		MonteCarlo: MonteCarloParams{
			NumSimulations:             10_000,
			HorizonDays:                365,
			TradesPerDay:               2.0,
			Min10thPercentileRetention: 0.90,
			TargetYearlyROIUSD:         1_000,
			Seed:                       &seed,
		},
		MarketFilter: MarketFilterParams{
			MinVolume:          200,
			MaxDaysToExpiry:    30,
			MinProfitAfterFees: 0.02,
		},
	}
}

// Clone devuelve una copia profunda, segura para mutar por-run
// (ej. sweeps de Kelly fraction que sobreescriben BaseFraction).
func (p Params) Clone() Params {
	c := p
	c.Kelly.EdgeTiers = make([]EdgeTier, len(p.Kelly.EdgeTiers))
	copy(c.Kelly.EdgeTiers, p.Kelly.EdgeTiers)
	if p.MonteCarlo.Seed != nil {
		seed := *p.MonteCarlo.Seed
		c.MonteCarlo.Seed = &seed
	}
	return c
}
