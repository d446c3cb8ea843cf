package game

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/telemetry"
	"github.com/pthm-cable/ecosys/traits"
)

// TelemetryOptions configures run telemetry.
type TelemetryOptions struct {
	RunID       string
	Seed        int64
	LogStats    bool    // log every window and its perf stats via slog
	StatsWindow float64 // seconds of simulated time per window; 0 uses config
	OutputDir   string  // CSV and config output; empty disables it
	SnapshotDir string  // snapshot on every bookmark; empty disables it

	// StatsCallback, if set, receives every flushed window.
	StatsCallback func(telemetry.WindowStats)
}

// Telemetry bundles the run's collectors. A nil *Telemetry records nothing.
type Telemetry struct {
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	lifetimes *telemetry.LifetimeTracker
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	runID         string
	seed          int64
	logStats      bool
	snapshotDir   string
	statsCallback func(telemetry.WindowStats)
}

// NewTelemetry creates the collectors and, when an output directory is
// set, the CSV files and a copy of the active config.
func NewTelemetry(opts TelemetryOptions) (*Telemetry, error) {
	cfg := config.Cfg()

	window := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		window = opts.StatsWindow
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return &Telemetry{
		collector:     telemetry.NewCollector(window),
		bookmarks:     telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		lifetimes:     telemetry.NewLifetimeTracker(),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:        output,
		runID:         opts.RunID,
		seed:          opts.Seed,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		statsCallback: opts.StatsCallback,
	}, nil
}

// Lifetimes returns the per-animal lifetime tracker.
func (t *Telemetry) Lifetimes() *telemetry.LifetimeTracker {
	if t == nil {
		return nil
	}
	return t.lifetimes
}

// Perf returns the current perf statistics.
func (t *Telemetry) Perf() telemetry.PerfStats {
	if t == nil {
		return telemetry.PerfStats{}
	}
	return t.perf.Stats()
}

// WriteJSON saves v under name in the output directory, if there is one.
func (t *Telemetry) WriteJSON(name string, v any) error {
	if t == nil {
		return nil
	}
	return t.output.WriteJSON(name, v)
}

// Close flushes and closes the output files.
func (t *Telemetry) Close() error {
	if t == nil {
		return nil
	}
	return t.output.Close()
}

func (t *Telemetry) startTick() {
	if t != nil {
		t.perf.StartTick()
	}
}

func (t *Telemetry) phase(ph telemetry.Phase) {
	if t != nil {
		t.perf.StartPhase(ph)
	}
}

func (t *Telemetry) endTick(animals int) {
	if t != nil {
		t.perf.EndTick(animals)
	}
}

func (t *Telemetry) record(ev telemetry.Event) {
	if t == nil {
		return
	}
	t.collector.Record(ev)
	switch ev.Type {
	case telemetry.EventKill:
		t.lifetimes.RecordKill(ev.AnimalID)
	case telemetry.EventConception:
		t.lifetimes.RecordConception(ev.AnimalID)
	}
}

// registerLifetime starts tracking a new animal. Animals with a parent
// count as births.
func (t *Telemetry) registerLifetime(tick int32, now float64, g *components.Genome, parentID uint32) {
	if t == nil {
		return
	}
	t.lifetimes.Register(g.ID, tick, now, g.Kind, parentID)
	if parentID != 0 {
		t.lifetimes.RecordChild(parentID)
		t.collector.Record(telemetry.NewBirthEvent(tick, g.ID, parentID, g.Diet))
	}
}

func (t *Telemetry) recordDeath(tick int32, now float64, g *components.Genome, age float64) {
	if t == nil {
		return
	}
	t.collector.Record(telemetry.NewDeathEvent(tick, g.ID, g.Diet, age))
	ls := t.lifetimes.Remove(g.ID)
	if ls == nil {
		return
	}
	if err := t.output.WriteDeath(telemetry.NewDeathRecord(g.ID, ls, now, age)); err != nil {
		slog.Error("failed to write death", "error", err)
	}
}

// flushTelemetry closes the stats window once it is due, then handles
// bookmarks.
func (s *Simulator) flushTelemetry() {
	t := s.telemetry
	if t == nil || !t.collector.ShouldFlush(s.clock) {
		return
	}

	stats := t.collector.Flush(s.steps, s.clock, s.sample())
	perfStats := t.perf.Stats()

	if t.statsCallback != nil {
		t.statsCallback(stats)
	}

	if t.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if t.output != nil {
		if err := t.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := t.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range t.bookmarks.Check(stats) {
		if t.logStats {
			bm.LogBookmark()
		}
		if t.output != nil {
			if err := t.output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if t.snapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// sample measures the population for the closing window and updates peak
// energies.
func (s *Simulator) sample() telemetry.Sample {
	var sm telemetry.Sample
	for _, e := range s.live {
		if !s.store.Living(e) {
			continue
		}
		g := s.store.Genome(e)
		v := s.store.Vitals(e)
		if g.Diet == traits.Herbivore {
			sm.Herbivores++
			sm.HerbivoreEnergies = append(sm.HerbivoreEnergies, v.Energy)
		} else {
			sm.Carnivores++
			sm.CarnivoreEnergies = append(sm.CarnivoreEnergies, v.Energy)
		}
		sm.Desires = append(sm.Desires, v.Desire)
		s.telemetry.lifetimes.UpdateEnergy(g.ID, v.Energy)
	}
	for d := range s.grid.Regions() {
		if d.Info.Bounded {
			sm.DynamicFood += d.Info.Food
		}
	}
	return sm
}

// saveSnapshot writes the current state to the snapshot directory.
func (s *Simulator) saveSnapshot(bookmark *telemetry.Bookmark) {
	snap, err := s.TelemetrySnapshot(bookmark)
	if err != nil {
		slog.Error("failed to build snapshot", "error", err)
		return
	}
	path, err := telemetry.SaveSnapshot(snap, s.telemetry.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", s.steps)
}

// TelemetrySnapshot wraps the world snapshot with the run metadata and
// the lifetime stats of every live animal.
func (s *Simulator) TelemetrySnapshot(bookmark *telemetry.Bookmark) (*telemetry.Snapshot, error) {
	state, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	snap := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Tick:     s.steps,
		SimTime:  s.clock,
		State:    state,
		Bookmark: bookmark,
	}
	if t := s.telemetry; t != nil {
		snap.RunID = t.runID
		snap.RNGSeed = t.seed
		for _, e := range s.live {
			id := s.store.Genome(e).ID
			if ls := t.lifetimes.Get(id).ToJSON(id); ls != nil {
				snap.Lifetimes = append(snap.Lifetimes, *ls)
			}
		}
	}
	return snap, nil
}
