package domain

// SimulationResult agrega los resultados de todos los paths Monte Carlo.
type SimulationResult struct {
	NumSimulations int
	HorizonDays    int

	// Estadísticas del bankroll terminal.
	MeanFinalBankroll   float64
	MedianFinalBankroll float64
	P10FinalBankroll    float64 // percentil 10 (peor caso razonable)
	P90FinalBankroll    float64 // percentil 90 (mejor caso razonable)
	MinFinalBankroll    float64
	MaxFinalBankroll    float64

	// Estadísticas de ROI relativas al bankroll inicial, en porcentaje.
	MeanROIPct      float64
	MedianROIPct    float64
	P10ROIPct       float64
	ProbPositiveROI float64 // fracción de paths con profit > 0
	ProbTargetROI   float64 // fracción de paths que alcanzan el ROI objetivo

	// Estadísticas de drawdown, en porcentaje.
	MeanMaxDrawdownPct   float64
	MedianMaxDrawdownPct float64
	P90MaxDrawdownPct    float64

	// Sharpe anualizado estimado (simplificado).
	EstimatedSharpe float64

	// Bankrolls terminales crudos, para histogramas downstream.
	TerminalBankrolls []float64
}
