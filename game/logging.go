package game

import (
	"log/slog"

	"github.com/pthm-cable/ecosys/systems"
)

// LogObserver logs simulator lifecycle events at debug level.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an observer writing to logger, or to the default
// logger when nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger.With("component", "simulator")}
}

func (l *LogObserver) OnRegister(time float64, m MapInfo, animals []AnimalInfo) {
	l.logger.Debug("observer registered",
		"time", time,
		"cols", m.Cols(),
		"rows", m.Rows(),
		"width", m.Width(),
		"height", m.Height(),
		"animals", len(animals),
	)
}

func (l *LogObserver) OnReset(time float64, m MapInfo, animals []AnimalInfo) {
	l.logger.Debug("simulator reset",
		"time", time,
		"cols", m.Cols(),
		"rows", m.Rows(),
		"width", m.Width(),
		"height", m.Height(),
	)
}

func (l *LogObserver) OnAnimalAdded(time float64, _ MapInfo, animals []AnimalInfo, a AnimalInfo) {
	l.logger.Debug("animal added",
		"time", time,
		"id", a.ID,
		"kind", a.Kind.String(),
		"pos", a.Pos.String(),
		"animals", len(animals),
	)
}

func (l *LogObserver) OnRegionSet(row, col int, _ MapInfo, r systems.RegionInfo) {
	l.logger.Debug("region set", "row", row, "col", col, "type", r.Type)
}

func (l *LogObserver) OnAdvanced(time float64, _ MapInfo, animals []AnimalInfo, dt float64) {
	l.logger.Debug("advanced", "time", time, "dt", dt, "animals", len(animals))
}
