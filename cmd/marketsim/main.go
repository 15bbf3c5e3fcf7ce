package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"marketsim/internal/config"
	"marketsim/internal/handler"
	"marketsim/internal/recorder"
	"marketsim/internal/service"
	"marketsim/internal/sim"
)

// vwapWindow is the lookback for the stats VWAP in simulation seconds.
const vwapWindow = 5.0

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		headless   = flag.Bool("headless", false, "Run the full simulation without the HTTP API and print the summary")
		serveAddr  = flag.String("serve", "", "Serve the observation API on this address while stepping in real time")
		ensembleN  = flag.Int("ensemble", 0, "Run N independent simulations with derived seeds and print all summaries")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *serveAddr != "" {
		cfg.Server.Addr = *serveAddr
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	switch {
	case *ensembleN > 0:
		runEnsemble(cfg, *ensembleN, logger)
	case *serveAddr != "":
		runServer(cfg, logger)
	default:
		if !*headless {
			logger.Info("no mode flag given, defaulting to headless run")
		}
		runHeadless(cfg, logger)
	}
}

// newLogger builds a JSON slog logger at the configured level. When a
// log file is configured, output goes to both stdout and a
// size-rotated file.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err == nil {
			w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   cfg.Logging.File,
				MaxSize:    10, // Megabytes
				MaxBackups: 3,
				MaxAge:     28, // Days
				Compress:   true,
			})
		}
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// runHeadless runs the full configured duration as fast as possible and
// prints the summary JSON to stdout.
func runHeadless(cfg *config.Config, logger *slog.Logger) {
	s := sim.New(cfg)
	steps := cfg.Steps()
	logger.Info("starting headless run",
		slog.String("run_id", s.RunID()),
		slog.Int64("seed", cfg.Simulation.Seed),
		slog.Int("steps", steps),
	)

	var rec *recorder.Recorder
	if cfg.Recorder.Dir != "" {
		var err error
		rec, err = recorder.New(cfg.Recorder.Dir, cfg.Recorder.SnapshotInterval)
		if err != nil {
			logger.Error("failed to open recorder", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rec.Close()
	}

	var lastTradeID uint64
	for i := 1; i <= steps; i++ {
		s.Step()
		if rec == nil {
			continue
		}
		trades := s.Trades(lastTradeID)
		if len(trades) > 0 {
			lastTradeID = trades[len(trades)-1].TradeID
		}
		ts := float64(i) * cfg.Simulation.StepSize
		if err := rec.RecordStep(i, ts, s.CurrentPrice(), trades); err != nil {
			logger.Error("recorder write failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	stats := s.Stats()
	if rec != nil {
		if err := rec.WriteSummary(stats); err != nil {
			logger.Error("failed to write summary", slog.String("error", err.Error()))
		}
	}

	printJSON(stats, logger)
	logger.Info("headless run complete",
		slog.Int("total_trades", stats.TotalTrades),
		slog.Int64("final_price_cents", stats.FinalPrice),
	)
}

// runEnsemble fans out n runs over derived seeds and prints every
// summary, in seed order.
func runEnsemble(cfg *config.Config, n int, logger *slog.Logger) {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = cfg.Simulation.Seed + int64(i)
	}

	logger.Info("starting ensemble",
		slog.Int("runs", n),
		slog.Int64("base_seed", cfg.Simulation.Seed),
	)
	start := time.Now()
	results := sim.RunEnsemble(cfg, seeds, cfg.Simulation.Workers)
	logger.Info("ensemble complete", slog.Duration("elapsed", time.Since(start)))

	printJSON(results, logger)
}

// runServer steps the simulation on a real-time ticker while exposing
// the observation API, and shuts down gracefully on SIGINT/SIGTERM.
func runServer(cfg *config.Config, logger *slog.Logger) {
	s := sim.New(cfg)
	statsSvc := service.NewStatsService(s, vwapWindow)
	router := handler.NewRouter(s, statsSvc, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Addr),
			slog.String("run_id", s.RunID()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Step in real time until the configured duration elapses or a
	// shutdown signal arrives; the API stays up either way.
	go func() {
		interval := time.Duration(cfg.Simulation.StepSize * float64(time.Second))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		steps := cfg.Steps()
		for done := 0; done < steps; {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Step()
				done++
			}
		}
		logger.Info("simulation duration complete", slog.Int("steps", steps))
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	printJSON(s.Stats(), logger)
	logger.Info("server stopped")
}

func printJSON(v any, logger *slog.Logger) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("failed to marshal output", slog.String("error", err.Error()))
		return
	}
	os.Stdout.Write(append(data, '\n'))
}
