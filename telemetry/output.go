package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/ecosys/config"
)

// csvTable appends records of one type to a CSV file, writing the header
// with the first record.
type csvTable[T any] struct {
	name   string
	file   *os.File
	header bool
}

func openTable[T any](dir, name string) (*csvTable[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvTable[T]{name: name, file: f}, nil
}

func (t *csvTable[T]) append(rec T) error {
	records := []T{rec}
	var err error
	if t.header {
		err = gocsv.MarshalWithoutHeaders(records, t.file)
	} else {
		err = gocsv.Marshal(records, t.file)
		t.header = err == nil
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", t.name, err)
	}
	return nil
}

func (t *csvTable[T]) close() error {
	if t == nil {
		return nil
	}
	return t.file.Close()
}

// DeathRecord is one row of deaths.csv: an animal's lifetime stats at the
// moment it was pruned.
type DeathRecord struct {
	ID          uint32  `csv:"id"`
	Kind        string  `csv:"kind"`
	ParentID    uint32  `csv:"parent_id"`
	BirthTime   float64 `csv:"birth_time"`
	DeathTime   float64 `csv:"death_time"`
	Age         float64 `csv:"age"`
	Kills       int     `csv:"kills"`
	Conceptions int     `csv:"conceptions"`
	Children    int     `csv:"children"`
	PeakEnergy  float64 `csv:"peak_energy"`
}

// NewDeathRecord builds a deaths.csv row from tracked lifetime stats.
func NewDeathRecord(id uint32, ls *LifetimeStats, now, age float64) DeathRecord {
	return DeathRecord{
		ID:          id,
		Kind:        ls.Kind.Key(),
		ParentID:    ls.ParentID,
		BirthTime:   ls.BirthTime,
		DeathTime:   now,
		Age:         age,
		Kills:       ls.Kills,
		Conceptions: ls.Conceptions,
		Children:    ls.Children,
		PeakEnergy:  ls.PeakEnergy,
	}
}

// OutputManager writes a run's CSV logs and JSON documents into one directory.
// A nil *OutputManager discards everything.
type OutputManager struct {
	dir       string
	telemetry *csvTable[WindowStats]
	perf      *csvTable[PerfStatsCSV]
	bookmarks *csvTable[Bookmark]
	deaths    *csvTable[DeathRecord]
}

// NewOutputManager creates dir and the CSV files in it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = openTable[WindowStats](dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = openTable[PerfStatsCSV](dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarks, err = openTable[Bookmark](dir, "bookmarks.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.deaths, err = openTable[DeathRecord](dir, "deaths.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the active configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.append(stats)
}

// WritePerf appends the perf stats of the window ending at windowEnd to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.append(stats.ToCSV(windowEnd))
}

// WriteBookmark appends to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.append(b)
}

// WriteDeath appends to deaths.csv.
func (om *OutputManager) WriteDeath(r DeathRecord) error {
	if om == nil {
		return nil
	}
	return om.deaths.append(r)
}

// WriteJSON saves v as indented JSON under name in the output directory.
func (om *OutputManager) WriteJSON(name string, v any) error {
	if om == nil {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every file that was opened.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(
		om.telemetry.close(),
		om.perf.close(),
		om.bookmarks.close(),
		om.deaths.close(),
	)
}
