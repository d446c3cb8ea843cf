package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/traits"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPredatorRecovery BookmarkType = "predator_recovery"
	BookmarkPreyCrash        BookmarkType = "prey_crash"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
	BookmarkExtinction       BookmarkType = "extinction"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	SimTime     float64      `csv:"sim_time" json:"sim_time"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"sim_time", b.SimTime,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPredMin      int // minimum carnivore count in recent history
	recentPreyPeak     int // peak herbivore count in recent history
	stableWindowsCount int // consecutive windows with stable populations
	extinct            map[traits.Diet]bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	cfg := config.Cfg().Bookmarks
	if historySize < cfg.StableEcosystem.StableWindows {
		historySize = cfg.StableEcosystem.StableWindows
	}
	if historySize < 4 {
		historySize = 4
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		extinct:     make(map[traits.Diet]bool),
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkPredatorRecovery,
			bd.checkPreyCrash,
			bd.checkStableEcosystem,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}
	bookmarks = append(bookmarks, bd.checkExtinction(stats)...)

	bd.addToHistory(stats)

	if stats.Carnivores < bd.recentPredMin || bd.recentPredMin == 0 {
		bd.recentPredMin = stats.Carnivores
	}
	if stats.Herbivores > bd.recentPreyPeak {
		bd.recentPreyPeak = stats.Herbivores
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	if n > size {
		n = size
	}
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats WindowStats) *Bookmark {
	cfg := bd.cfg.PredatorRecovery
	if bd.recentPredMin == 0 || bd.recentPredMin > cfg.MinPopulation {
		return nil
	}

	threshold := bd.recentPredMin * cfg.RecoveryMultiplier
	if stats.Carnivores >= threshold && stats.Carnivores >= cfg.MinFinal {
		oldMin := bd.recentPredMin
		bd.recentPredMin = stats.Carnivores

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTime,
			Description: fmt.Sprintf("Carnivore population recovered from %d to %d", oldMin, stats.Carnivores),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPreyCrash(stats WindowStats) *Bookmark {
	cfg := bd.cfg.PreyCrash
	if bd.recentPreyPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Herbivores)/float64(bd.recentPreyPeak)
	if drop > cfg.DropPercent && stats.Herbivores < bd.recentPreyPeak-cfg.MinDrop {
		oldPeak := bd.recentPreyPeak
		bd.recentPreyPeak = stats.Herbivores

		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTime,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Herbivores),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	cfg := bd.cfg.StableEcosystem
	if stats.Herbivores < cfg.MinPrey || stats.Carnivores < cfg.MinPred {
		bd.stableWindowsCount = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	prey := make([]float64, len(window))
	pred := make([]float64, len(window))
	for i, h := range window {
		prey[i] = float64(h.Herbivores)
		pred[i] = float64(h.Carnivores)
	}

	// squared coefficient of variation
	if cv2(prey) < cfg.CVThreshold && cv2(pred) < cfg.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == cfg.StableWindows {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTime,
			Description: fmt.Sprintf("Stable ecosystem with %d herbivores, %d carnivores over %d windows", stats.Herbivores, stats.Carnivores, cfg.StableWindows),
		}
	}

	return nil
}

// checkExtinction fires once when a diet's population reaches zero after
// having been present, and re-arms if it comes back.
func (bd *BookmarkDetector) checkExtinction(stats WindowStats) []Bookmark {
	var out []Bookmark
	for _, d := range []struct {
		diet traits.Diet
		now  int
		prev func(WindowStats) int
	}{
		{traits.Herbivore, stats.Herbivores, func(w WindowStats) int { return w.Herbivores }},
		{traits.Carnivore, stats.Carnivores, func(w WindowStats) int { return w.Carnivores }},
	} {
		if d.now > 0 {
			bd.extinct[d.diet] = false
			continue
		}
		last := bd.recent(1)
		if bd.extinct[d.diet] || len(last) == 0 || d.prev(last[0]) == 0 {
			continue
		}
		bd.extinct[d.diet] = true
		out = append(out, Bookmark{
			Type:        BookmarkExtinction,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTime,
			Description: fmt.Sprintf("%s population died out", d.diet),
		})
	}
	return out
}

func cv2(xs []float64) float64 {
	mean, variance := stat.PopMeanVariance(xs, nil)
	if mean == 0 {
		return 0
	}
	return variance / (mean * mean)
}
