package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/factory"
	"github.com/pthm-cable/ecosys/game"
	"github.com/pthm-cable/ecosys/notifiers"
)

// result is the document written at the end of a batch run.
type result struct {
	In  game.Snapshot `json:"in"`
	Out game.Snapshot `json:"out"`
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	inputPath := flag.String("input", "", "Scenario file (YAML or JSON)")
	outputPath := flag.String("output", "", "Result file (empty = stdout)")
	simTime := flag.Float64("time", 0, "Simulated seconds to run (0 = use config)")
	dt := flag.Float64("dt", 0, "Step size in seconds (0 = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshots")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	wsAddr := flag.String("ws-addr", "", "Serve step frames over WebSocket at this address (e.g. :8080)")
	list := flag.Bool("list", false, "List the available region, strategy and animal types and exit")
	verbose := flag.Bool("v", false, "Log simulator events at debug level")

	flag.Parse()

	runID := uuid.NewString()

	// Stdout carries the result document, so logs go to stderr.
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("run", runID)
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *list {
		if err := listTypes(os.Stdout); err != nil {
			slog.Error("failed to list types", "error", err)
			os.Exit(1)
		}
		return
	}

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "an -input scenario is required")
		flag.Usage()
		os.Exit(2)
	}

	rngSeed := cfg.Run.Seed
	if *seed != 0 {
		rngSeed = *seed
	}
	until := cfg.Run.Time
	if *simTime > 0 {
		until = *simTime
	}
	step := cfg.Run.DT
	if *dt > 0 {
		step = *dt
	}

	opts := game.Options{}
	if *verbose {
		opts.Observers = append(opts.Observers, game.NewLogObserver(logger))
	}

	var tel *game.Telemetry
	if *outputDir != "" || *snapshotDir != "" || *logStats {
		var err error
		tel, err = game.NewTelemetry(game.TelemetryOptions{
			RunID:       runID,
			Seed:        rngSeed,
			LogStats:    *logStats,
			StatsWindow: *statsWindow,
			OutputDir:   *outputDir,
			SnapshotDir: *snapshotDir,
		})
		if err != nil {
			slog.Error("failed to set up telemetry", "error", err)
			os.Exit(1)
		}
		defer tel.Close()
		opts.Telemetry = tel
	}

	if *wsAddr != "" {
		ws := notifiers.NewWebSocketObserver(runID, 256)
		defer ws.Close()
		stop := serveFrames(*wsAddr, ws)
		defer stop()
		opts.Observers = append(opts.Observers, ws)
	}

	if err := run(*inputPath, *outputPath, rngSeed, until, step, opts, tel); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string, seed int64, until, dt float64, opts game.Options, tel *game.Telemetry) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening scenario: %w", err)
	}
	sc, err := game.LoadScenario(f)
	f.Close()
	if err != nil {
		return err
	}

	sim, err := sc.Build(rand.New(rand.NewSource(seed)), opts)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	slog.Info("starting simulation",
		"seed", seed,
		"time", until,
		"dt", dt,
		"cols", sc.Cols,
		"rows", sc.Rows,
		"animals", len(sim.Animals()),
	)

	start := time.Now()
	res := result{In: sim.Snapshot()}
	if err := sim.Run(until, dt); err != nil {
		return err
	}
	res.Out = sim.Snapshot()

	slog.Info("simulation finished",
		"steps", sim.Steps(),
		"sim_time", sim.Clock(),
		"animals", len(sim.Animals()),
		"elapsed_ms", time.Since(start).Milliseconds(),
		"perf", tel.Perf(),
	)

	if err := tel.WriteJSON("summary.json", summary(sim, tel)); err != nil {
		slog.Error("failed to write summary", "error", err)
	}

	return writeResult(outputPath, res)
}

// summary is the end-of-run overview written next to the CSV logs.
func summary(sim *game.Simulator, tel *game.Telemetry) map[string]any {
	s := map[string]any{
		"steps":    sim.Steps(),
		"sim_time": sim.Clock(),
		"animals":  len(sim.Animals()),
	}
	if lt := tel.Lifetimes(); lt != nil {
		s["tracked"] = lt.Count()
		s["lineages"] = lt.Lineages()
	}
	return s
}

func writeResult(path string, res result) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// listTypes prints every builder with its description and sample data.
func listTypes(w io.Writer) error {
	reg := factory.NewRegistry(rand.New(rand.NewSource(1)))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reg.Info())
}

// serveFrames starts an HTTP server exposing ws at /ws and returns a
// function that shuts it down.
func serveFrames(addr string, ws *notifiers.WebSocketObserver) func() {
	mux := http.NewServeMux()
	mux.Handle("/ws", ws)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		slog.Info("serving frames", "addr", addr, "path", "/ws")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("frame server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
