package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyDecision imprime la decisión en el modo configurado.
func (c *Console) NotifyDecision(_ context.Context, quote domain.Quote, decision domain.TradeDecision) error {
	if c.table {
		c.printDecisionFull(quote, decision)
	} else {
		c.printDecisionCompact(quote, decision)
	}
	return nil
}

// printDecisionCompact imprime lo esencial en una línea.
func (c *Console) printDecisionCompact(quote domain.Quote, d domain.TradeDecision) {
	now := time.Now().Format("15:04:05")
	name := compactName(quote.Question, 40)
	if name == "" {
		name = quote.MarketID
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %-5s %s | %s", now, d.Action, name, d.Reason)
	if d.Action == domain.ActionTrade {
		fmt.Fprintf(&sb, " | var $%.2f (%.1f%%)", d.VaR.VaRUSD, d.VaR.VaRPct*100)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printDecisionFull imprime el desglose completo de Kelly y VaR.
func (c *Console) printDecisionFull(quote domain.Quote, d domain.TradeDecision) {
	now := time.Now().Format("15:04:05")

	fmt.Fprintf(c.out, "\n[%s] %s — %s\n", now, d.Action, d.Reason)
	if quote.Question != "" {
		fmt.Fprintf(c.out, "  Market: %s [%s]\n", truncate(quote.Question, 60), quote.MarketID)
	}

	fmt.Fprintf(c.out, "\n  1. KELLY:\n")
	fmt.Fprintf(c.out, "     edge: %.2f%%  raw: %.4f  multiplier: %.2f\n",
		d.Kelly.Edge*100, d.Kelly.RawFraction, d.Kelly.Multiplier)
	fmt.Fprintf(c.out, "     scaled: %.4f  >>> BET: $%.2f (EV $%.2f)\n",
		d.Kelly.ScaledFraction, d.Kelly.BetSize, d.Kelly.ExpectedValue)

	fmt.Fprintf(c.out, "\n  2. PORTFOLIO VaR:\n")
	fmt.Fprintf(c.out, "     VaR: $%.2f (%.2f%% of bankroll)  exposure: $%.2f\n",
		d.VaR.VaRUSD, d.VaR.VaRPct*100, d.VaR.TotalExposure)
	fmt.Fprintf(c.out, "     max loss: $%.2f  positions: %d\n",
		d.VaR.MaxPossibleLoss, d.VaR.NumPositions)
	for _, b := range d.VaR.Breaches {
		fmt.Fprintf(c.out, "     !! %s\n", b)
	}

	if d.DailyLossHalt {
		fmt.Fprintf(c.out, "\n  >>> HALT: daily loss limit\n")
	}
	if d.DrawdownHalt {
		fmt.Fprintf(c.out, "\n  >>> HALT: max drawdown\n")
	}
	fmt.Fprintln(c.out)
}

// NotifySimulation imprime el informe completo de una simulación Monte Carlo.
func (c *Console) NotifySimulation(_ context.Context, winRate, avgEdge float64, res domain.SimulationResult) error {
	fmt.Fprintf(c.out, "\n========================================================\n")
	fmt.Fprintf(c.out, "  MONTE CARLO — %d paths × %d days\n", res.NumSimulations, res.HorizonDays)
	fmt.Fprintf(c.out, "  assumptions: win rate %.0f%%, avg edge %.0f%%\n", winRate*100, avgEdge*100)
	fmt.Fprintf(c.out, "========================================================\n\n")

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "P10", "Median", "Mean", "P90")
	table.Append(
		"Final bankroll",
		fmt.Sprintf("$%.2f", res.P10FinalBankroll),
		fmt.Sprintf("$%.2f", res.MedianFinalBankroll),
		fmt.Sprintf("$%.2f", res.MeanFinalBankroll),
		fmt.Sprintf("$%.2f", res.P90FinalBankroll),
	)
	table.Append(
		"ROI",
		fmt.Sprintf("%.1f%%", res.P10ROIPct),
		fmt.Sprintf("%.1f%%", res.MedianROIPct),
		fmt.Sprintf("%.1f%%", res.MeanROIPct),
		"-",
	)
	table.Append(
		"Max drawdown",
		"-",
		fmt.Sprintf("%.1f%%", res.MedianMaxDrawdownPct),
		fmt.Sprintf("%.1f%%", res.MeanMaxDrawdownPct),
		fmt.Sprintf("%.1f%%", res.P90MaxDrawdownPct),
	)
	table.Render()

	fmt.Fprintf(c.out, "\n  Range:            $%.2f — $%.2f\n", res.MinFinalBankroll, res.MaxFinalBankroll)
	fmt.Fprintf(c.out, "  P(ROI > 0):       %.1f%%\n", res.ProbPositiveROI*100)
	fmt.Fprintf(c.out, "  P(target ROI):    %.1f%%\n", res.ProbTargetROI*100)
	fmt.Fprintf(c.out, "  Est. Sharpe:      %.2f\n", res.EstimatedSharpe)

	fmt.Fprintf(c.out, "\n  --- VERDICT ---\n")
	switch {
	case res.MedianROIPct > 0 && res.ProbPositiveROI >= 0.75:
		fmt.Fprintf(c.out, "  POSITIVE: strategy is profitable in most paths.\n")
	case res.MedianROIPct > 0:
		fmt.Fprintf(c.out, "  MARGINAL: positive median but high variance. Consider a smaller Kelly fraction.\n")
	default:
		fmt.Fprintf(c.out, "  NEGATIVE: median path loses money. Do NOT trade this configuration.\n")
	}
	fmt.Fprintln(c.out)

	return nil
}

// NotifySweep imprime la tabla comparativa de fracciones de Kelly.
func (c *Console) NotifySweep(_ context.Context, fractions []float64, results []domain.SimulationResult) error {
	if len(fractions) != len(results) {
		return fmt.Errorf("notify.NotifySweep: %d fractions vs %d results", len(fractions), len(results))
	}
	if len(results) == 0 {
		fmt.Fprintln(c.out, "\n  No sweep results available.")
		return nil
	}

	fmt.Fprintf(c.out, "\n=== KELLY FRACTION SWEEP (%d paths × %d days each) ===\n\n",
		results[0].NumSimulations, results[0].HorizonDays)

	table := tablewriter.NewWriter(c.out)
	table.Header("Fraction", "Mean ROI", "Median ROI", "P10 Final", "P90 Final", "Med DD", "Sharpe", "P(target)")

	for i, res := range results {
		table.Append(
			fmt.Sprintf("%.2f", fractions[i]),
			fmt.Sprintf("%.1f%%", res.MeanROIPct),
			fmt.Sprintf("%.1f%%", res.MedianROIPct),
			fmt.Sprintf("$%.0f", res.P10FinalBankroll),
			fmt.Sprintf("$%.0f", res.P90FinalBankroll),
			fmt.Sprintf("%.1f%%", res.MedianMaxDrawdownPct),
			fmt.Sprintf("%.2f", res.EstimatedSharpe),
			fmt.Sprintf("%.0f%%", res.ProbTargetROI*100),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Med DD = median max drawdown | P(target) = prob of hitting the yearly ROI target")
	fmt.Fprintln(c.out)
	return nil
}

// --- helpers ---

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
