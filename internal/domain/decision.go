package domain

// Action es el resultado terminal de evaluar un trade propuesto.
type Action string

const (
	// ActionTrade aprueba el trade con el tamaño calculado.
	ActionTrade Action = "TRADE"
	// ActionSkip descarta este trade; el trading sigue activo.
	ActionSkip Action = "SKIP"
	// ActionHalt señala suspensión general: ningún trade nuevo hasta que
	// el caller resuelva la condición (reset diario, recuperar drawdown).
	ActionHalt Action = "HALT"
)

// TradeDecision es la decisión final go/no-go para un trade propuesto.
type TradeDecision struct {
	Action Action
	Reason string // explicación legible, pensada para logs/operador
	Kelly  KellyResult
	VaR    VaRResult

	StopLossTriggered bool
	DailyLossHalt     bool
	DrawdownHalt      bool
}
