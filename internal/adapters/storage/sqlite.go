package storage

// sqlite.go — journal de decisiones en SQLite.
//
// Estrategia:
//   - `decisions`: UNA fila por decisión evaluada (TRADE/SKIP/HALT) con el
//     edge, el tamaño de apuesta y el VaR del momento. Es el registro de
//     auditoría principal.
//   - `position_closes`: una fila por cierre con el P&L realizado.
//   - `simulation_runs`: agregados de cada simulación Monte Carlo, para
//     comparar configuraciones a lo largo del tiempo.
//   - Prune automático al arrancar: decisiones > 30d, cierres y
//     simulaciones > 90d.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

const schema = `
-- Una fila por decisión evaluada
CREATE TABLE IF NOT EXISTS decisions (
    id         TEXT PRIMARY KEY,
    market_id  TEXT NOT NULL,
    question   TEXT,
    action     TEXT NOT NULL,
    reason     TEXT,
    edge_pct   REAL NOT NULL DEFAULT 0,
    bet_size   REAL NOT NULL DEFAULT 0,
    var_usd    REAL NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

-- Una fila por cierre de posición
CREATE TABLE IF NOT EXISTS position_closes (
    id               TEXT PRIMARY KEY,
    market_id        TEXT NOT NULL,
    side             TEXT NOT NULL,
    entry_price      REAL NOT NULL DEFAULT 0,
    quantity         REAL NOT NULL DEFAULT 0,
    settlement_price REAL NOT NULL DEFAULT 0,
    pnl              REAL NOT NULL DEFAULT 0,
    closed_at        DATETIME NOT NULL
);

-- Agregados de cada simulación Monte Carlo
CREATE TABLE IF NOT EXISTS simulation_runs (
    id               TEXT PRIMARY KEY,
    win_rate         REAL NOT NULL,
    avg_edge         REAL NOT NULL,
    num_simulations  INTEGER NOT NULL,
    horizon_days     INTEGER NOT NULL,
    mean_roi_pct     REAL NOT NULL DEFAULT 0,
    median_roi_pct   REAL NOT NULL DEFAULT 0,
    p10_final        REAL NOT NULL DEFAULT 0,
    p90_final        REAL NOT NULL DEFAULT 0,
    prob_positive    REAL NOT NULL DEFAULT 0,
    prob_target      REAL NOT NULL DEFAULT 0,
    estimated_sharpe REAL NOT NULL DEFAULT 0,
    ran_at           DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_at     ON decisions(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_decisions_market ON decisions(market_id);
CREATE INDEX IF NOT EXISTS idx_closes_at        ON position_closes(closed_at DESC);
`

const (
	retentionDecisions = 30 * 24 * time.Hour // decisiones: 30 días
	retentionCloses    = 90 * 24 * time.Hour // cierres y simulaciones: 90 días
)

// SQLiteJournal implementa ports.Journal usando SQLite (pure Go, sin CGo).
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// SaveDecision registra la decisión tomada para una cotización.
func (j *SQLiteJournal) SaveDecision(ctx context.Context, quote domain.Quote, decision domain.TradeDecision) error {
	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO decisions
			(id, market_id, question, action, reason, edge_pct, bet_size, var_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		quote.MarketID,
		quote.Question,
		string(decision.Action),
		decision.Reason,
		decision.Kelly.Edge*100,
		decision.Kelly.BetSize,
		decision.VaR.VaRUSD,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveDecision: insert %s: %w", quote.MarketID, err)
	}
	return nil
}

// SavePositionClose registra el cierre de una posición con su P&L realizado.
func (j *SQLiteJournal) SavePositionClose(ctx context.Context, pos domain.Position, settlementPrice, pnl float64) error {
	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO position_closes
			(id, market_id, side, entry_price, quantity, settlement_price, pnl, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		pos.MarketID,
		string(pos.Side),
		pos.EntryPrice,
		pos.Quantity,
		settlementPrice,
		pnl,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.SavePositionClose: insert %s: %w", pos.MarketID, err)
	}
	return nil
}

// SaveSimulationRun registra los agregados de una simulación Monte Carlo.
func (j *SQLiteJournal) SaveSimulationRun(ctx context.Context, winRate, avgEdge float64, res domain.SimulationResult) error {
	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO simulation_runs
			(id, win_rate, avg_edge, num_simulations, horizon_days,
			 mean_roi_pct, median_roi_pct, p10_final, p90_final,
			 prob_positive, prob_target, estimated_sharpe, ran_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		winRate,
		avgEdge,
		res.NumSimulations,
		res.HorizonDays,
		res.MeanROIPct,
		res.MedianROIPct,
		res.P10FinalBankroll,
		res.P90FinalBankroll,
		res.ProbPositiveROI,
		res.ProbTargetROI,
		res.EstimatedSharpe,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveSimulationRun: insert: %w", err)
	}
	return nil
}

// GetDecisions devuelve las decisiones registradas en el rango de tiempo dado.
// Ordenadas por created_at desc — las más recientes primero.
func (j *SQLiteJournal) GetDecisions(ctx context.Context, from, to time.Time) ([]domain.DecisionRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, market_id, question, action, reason, edge_pct, bet_size, var_usd, created_at
		FROM decisions
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at DESC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetDecisions: query: %w", err)
	}
	defer rows.Close()

	var recs []domain.DecisionRecord
	for rows.Next() {
		var rec domain.DecisionRecord
		var action, createdAt string

		if err := rows.Scan(
			&rec.ID,
			&rec.MarketID,
			&rec.Question,
			&action,
			&rec.Reason,
			&rec.EdgePct,
			&rec.BetSize,
			&rec.VaRUSD,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetDecisions: scan row: %w", err)
		}

		rec.Action = domain.Action(action)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoffDecisions := time.Now().UTC().Add(-retentionDecisions)
	cutoffCloses := time.Now().UTC().Add(-retentionCloses)
	j.db.ExecContext(ctx, `DELETE FROM decisions WHERE created_at < ?`, cutoffDecisions)
	j.db.ExecContext(ctx, `DELETE FROM position_closes WHERE closed_at < ?`, cutoffCloses)
	j.db.ExecContext(ctx, `DELETE FROM simulation_runs WHERE ran_at < ?`, cutoffCloses)
}
