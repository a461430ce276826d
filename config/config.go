package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

// Config es la configuración completa del motor de riesgo.
type Config struct {
	Bankroll   float64          `yaml:"bankroll"`
	Kelly      KellyConfig      `yaml:"kelly"`
	VaR        VaRConfig        `yaml:"var"`
	MonteCarlo MonteCarloConfig `yaml:"montecarlo"`
	Filter     FilterConfig     `yaml:"filter"`
	Storage    StorageConfig    `yaml:"storage"`
	Replay     ReplayConfig     `yaml:"replay"`
	Log        LogConfig        `yaml:"log"`
}

// KellyConfig controla el sizing de apuestas.
type KellyConfig struct {
	BaseFraction   float64          `yaml:"base_fraction"`
	EdgeTiers      []EdgeTierConfig `yaml:"edge_tiers"` // umbrales ascendentes
	MinBetFraction float64          `yaml:"min_bet_fraction"`
	MaxBetFraction float64          `yaml:"max_bet_fraction"`
	MinEdge        float64          `yaml:"min_edge"`
	MinConfidence  float64          `yaml:"min_confidence"`
}

// EdgeTierConfig es un escalón de la tabla edge → fracción de Kelly.
type EdgeTierConfig struct {
	MinEdge  float64 `yaml:"min_edge"`
	Fraction float64 `yaml:"fraction"`
}

// VaRConfig controla los límites de riesgo de cartera.
type VaRConfig struct {
	MaxPortfolioRisk       float64 `yaml:"max_portfolio_risk"`
	MaxConcurrentPositions int     `yaml:"max_concurrent_positions"`
	MaxCorrelation         float64 `yaml:"max_correlation"`
	MaxDailyLoss           float64 `yaml:"max_daily_loss"`
	MaxDrawdown            float64 `yaml:"max_drawdown"`
	StopLoss               float64 `yaml:"stop_loss"`
	ConfidenceLevel        float64 `yaml:"confidence_level"`
}

// MonteCarloConfig controla la simulación de validación.
type MonteCarloConfig struct {
	NumSimulations     int     `yaml:"num_simulations"`
	HorizonDays        int     `yaml:"horizon_days"`
	TradesPerDay       float64 `yaml:"trades_per_day"`
	MinP10Retention    float64 `yaml:"min_p10_retention"`
	TargetYearlyROIUSD float64 `yaml:"target_yearly_roi_usd"`

	// Seed de la simulación. Ausente = 42 (reproducible por defecto);
	// un valor negativo desactiva el seed y usa aleatoriedad del sistema.
	Seed *int64 `yaml:"seed"`
}

// FilterConfig es el pre-filtro de mercados del motor paper.
type FilterConfig struct {
	MinVolume          float64 `yaml:"min_volume"`
	MaxDaysToExpiry    float64 `yaml:"max_days_to_expiry"`
	MinProfitAfterFees float64 `yaml:"min_profit_after_fees"`
}

// StorageConfig controla dónde se persiste el journal.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ReplayConfig controla la reproducción de fixtures.
type ReplayConfig struct {
	Fixtures     string  `yaml:"fixtures"`       // ruta al archivo JSONL
	QuotesPerSec float64 `yaml:"quotes_per_sec"` // 0 = sin pacing
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ToParams mapea la configuración sobre los parámetros del core.
func (c *Config) ToParams() domain.Params {
	p := domain.DefaultParams()

	p.Bankroll = c.Bankroll

	p.Kelly.BaseFraction = c.Kelly.BaseFraction
	p.Kelly.MinBetFraction = c.Kelly.MinBetFraction
	p.Kelly.MaxBetFraction = c.Kelly.MaxBetFraction
	p.Kelly.MinEdge = c.Kelly.MinEdge
	p.Kelly.MinConfidence = c.Kelly.MinConfidence
	if len(c.Kelly.EdgeTiers) > 0 {
		tiers := make([]domain.EdgeTier, 0, len(c.Kelly.EdgeTiers))
		for _, t := range c.Kelly.EdgeTiers {
			tiers = append(tiers, domain.EdgeTier{MinEdge: t.MinEdge, Fraction: t.Fraction})
		}
		p.Kelly.EdgeTiers = tiers
	}

	p.VaR.MaxPortfolioRisk = c.VaR.MaxPortfolioRisk
	p.VaR.MaxConcurrentPositions = c.VaR.MaxConcurrentPositions
	p.VaR.MaxCorrelation = c.VaR.MaxCorrelation
	p.VaR.MaxDailyLossFraction = c.VaR.MaxDailyLoss
	p.VaR.MaxDrawdownFraction = c.VaR.MaxDrawdown
	p.VaR.StopLossFraction = c.VaR.StopLoss
	p.VaR.ConfidenceLevel = c.VaR.ConfidenceLevel

	p.MonteCarlo.NumSimulations = c.MonteCarlo.NumSimulations
	p.MonteCarlo.HorizonDays = c.MonteCarlo.HorizonDays
	p.MonteCarlo.TradesPerDay = c.MonteCarlo.TradesPerDay
	p.MonteCarlo.Min10thPercentileRetention = c.MonteCarlo.MinP10Retention
	p.MonteCarlo.TargetYearlyROIUSD = c.MonteCarlo.TargetYearlyROIUSD
	p.MonteCarlo.Seed = c.seed()

	p.MarketFilter.MinVolume = c.Filter.MinVolume
	p.MarketFilter.MaxDaysToExpiry = c.Filter.MaxDaysToExpiry
	p.MarketFilter.MinProfitAfterFees = c.Filter.MinProfitAfterFees

	return p
}

// seed traduce el seed configurado: ausente = 42, negativo = sin seed.
func (c *Config) seed() *uint64 {
	if c.MonteCarlo.Seed == nil {
		s := uint64(42)
		return &s
	}
	if *c.MonteCarlo.Seed < 0 {
		return nil
	}
	s := uint64(*c.MonteCarlo.Seed)
	return &s
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("RISKD_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// Los defaults numéricos replican la calibración de domain.DefaultParams.
func setDefaults(cfg *Config) {
	if cfg.Bankroll <= 0 {
		cfg.Bankroll = 5000
	}
	if cfg.Kelly.BaseFraction <= 0 {
		cfg.Kelly.BaseFraction = 0.25
	}
	if cfg.Kelly.MinBetFraction <= 0 {
		cfg.Kelly.MinBetFraction = 0.005
	}
	if cfg.Kelly.MaxBetFraction <= 0 {
		cfg.Kelly.MaxBetFraction = 0.05
	}
	if cfg.Kelly.MinEdge <= 0 {
		cfg.Kelly.MinEdge = 0.05
	}
	if cfg.Kelly.MinConfidence <= 0 {
		cfg.Kelly.MinConfidence = 0.60
	}
	if cfg.VaR.MaxPortfolioRisk <= 0 {
		cfg.VaR.MaxPortfolioRisk = 0.20
	}
	if cfg.VaR.MaxConcurrentPositions <= 0 {
		cfg.VaR.MaxConcurrentPositions = 10
	}
	if cfg.VaR.MaxCorrelation <= 0 {
		cfg.VaR.MaxCorrelation = 0.70
	}
	if cfg.VaR.MaxDailyLoss <= 0 {
		cfg.VaR.MaxDailyLoss = 0.02
	}
	if cfg.VaR.MaxDrawdown <= 0 {
		cfg.VaR.MaxDrawdown = 0.15
	}
	if cfg.VaR.StopLoss <= 0 {
		cfg.VaR.StopLoss = 0.05
	}
	if cfg.VaR.ConfidenceLevel <= 0 {
		cfg.VaR.ConfidenceLevel = 0.95
	}
	if cfg.MonteCarlo.NumSimulations <= 0 {
		cfg.MonteCarlo.NumSimulations = 10_000
	}
	if cfg.MonteCarlo.HorizonDays <= 0 {
		cfg.MonteCarlo.HorizonDays = 365
	}
	if cfg.MonteCarlo.TradesPerDay <= 0 {
		cfg.MonteCarlo.TradesPerDay = 2.0
	}
	if cfg.MonteCarlo.MinP10Retention <= 0 {
		cfg.MonteCarlo.MinP10Retention = 0.90
	}
	if cfg.MonteCarlo.TargetYearlyROIUSD <= 0 {
		cfg.MonteCarlo.TargetYearlyROIUSD = 1000
	}
	if cfg.Filter.MinVolume <= 0 {
		cfg.Filter.MinVolume = 200
	}
	if cfg.Filter.MaxDaysToExpiry <= 0 {
		cfg.Filter.MaxDaysToExpiry = 30
	}
	if cfg.Filter.MinProfitAfterFees <= 0 {
		cfg.Filter.MinProfitAfterFees = 0.02
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "predrisk.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
