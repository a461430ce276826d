package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/predrisk/config"
	"github.com/alejandrodnm/predrisk/internal/adapters/notify"
	"github.com/alejandrodnm/predrisk/internal/adapters/storage"
	"github.com/alejandrodnm/predrisk/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	simulate := flag.Bool("simulate", false, "run Monte Carlo validation and exit")
	sweep := flag.String("sweep", "", "comma-separated Kelly fractions to compare (e.g. 0.10,0.25,0.50)")
	paper := flag.Bool("paper", false, "replay quote fixtures through the risk manager")
	fixtures := flag.String("fixtures", "", "path to JSONL quote fixtures (overrides config)")
	winRate := flag.Float64("win-rate", 0.58, "assumed win rate for simulation")
	avgEdge := flag.Float64("avg-edge", 0.08, "assumed average edge for simulation")
	dryRun := flag.Bool("dry-run", false, "skip the SQLite journal")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full decision breakdown (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	params := cfg.ToParams()

	slog.Info("riskd starting",
		"config", *configPath,
		"bankroll", params.Bankroll,
		"simulate", *simulate,
		"sweep", *sweep,
		"paper", *paper,
	)

	var journal ports.Journal
	if !*dryRun {
		j, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer j.Close()
		journal = j
	}

	notifier := notify.NewConsole(*table)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *sweep != "":
		runSweep(ctx, *sweep, *winRate, *avgEdge, params, journal, notifier)
	case *simulate:
		runSimulate(ctx, *winRate, *avgEdge, params, journal, notifier)
	case *paper:
		path := *fixtures
		if path == "" {
			path = cfg.Replay.Fixtures
		}
		runPaper(ctx, path, cfg.Replay.QuotesPerSec, params, journal, notifier)
	default:
		slog.Error("nothing to do: pass -simulate, -sweep or -paper")
		flag.Usage()
		os.Exit(2)
	}

	slog.Info("riskd stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
