package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies a section of the simulation step.
type Phase uint8

const (
	PhasePrune Phase = iota
	PhaseUpdate
	PhaseMigrate
	PhaseRegions
	PhaseBirths
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"prune", "update", "migrate", "regions", "births", "telemetry"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// PerfSample holds timing data for a single step.
type PerfSample struct {
	Step    time.Duration
	Phases  [numPhases]time.Duration
	Animals int // live animals when the step ended
}

// PerfCollector keeps the last windowSize step samples in a ring.
type PerfCollector struct {
	samples []PerfSample
	next    int
	count   int

	current    PerfSample
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over windowSize steps.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{samples: make([]PerfSample, windowSize)}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	p.stepStart = time.Now()
	p.current = PerfSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = ph, now, true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < numPhases {
		p.current.Phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick records the step with the number of animals it processed.
func (p *PerfCollector) EndTick(animals int) {
	now := time.Now()
	p.closePhase(now)
	p.inPhase = false

	p.current.Step = now.Sub(p.stepStart)
	p.current.Animals = animals
	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

// PerfStats aggregates the samples in the window.
type PerfStats struct {
	Steps    int
	AvgStep  time.Duration
	P50Step  time.Duration
	P95Step  time.Duration
	MaxStep  time.Duration
	PhasePct [numPhases]float64 // share of total step time

	StepsPerSecond float64
	NsPerAnimal    float64 // mean step time divided by mean live animals
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.count == 0 {
		return PerfStats{}
	}

	durations := make([]float64, p.count)
	var total time.Duration
	var phases [numPhases]time.Duration
	var animals int
	for i, s := range p.samples[:p.count] {
		durations[i] = float64(s.Step)
		total += s.Step
		animals += s.Animals
		for ph, d := range s.Phases {
			phases[ph] += d
		}
	}
	slices.Sort(durations)

	n := float64(p.count)
	st := PerfStats{
		Steps:   p.count,
		AvgStep: total / time.Duration(p.count),
		P50Step: time.Duration(stat.Quantile(0.5, stat.Empirical, durations, nil)),
		P95Step: time.Duration(stat.Quantile(0.95, stat.Empirical, durations, nil)),
		MaxStep: time.Duration(durations[len(durations)-1]),
	}
	if total > 0 {
		for ph, d := range phases {
			st.PhasePct[ph] = float64(d) / float64(total) * 100
		}
	}
	if st.AvgStep > 0 {
		st.StepsPerSecond = float64(time.Second) / float64(st.AvgStep)
	}
	if animals > 0 {
		st.NsPerAnimal = float64(st.AvgStep) / (float64(animals) / n)
	}
	return st
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("p95_step_us", s.P95Step.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
		slog.Float64("ns_per_animal", s.NsPerAnimal),
	}
	for ph := range numPhases {
		if s.PhasePct[ph] > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgStepUS    int64   `csv:"avg_step_us"`
	P50StepUS    int64   `csv:"p50_step_us"`
	P95StepUS    int64   `csv:"p95_step_us"`
	MaxStepUS    int64   `csv:"max_step_us"`
	StepsPerSec  float64 `csv:"steps_per_sec"`
	NsPerAnimal  float64 `csv:"ns_per_animal"`
	PrunePct     float64 `csv:"prune_pct"`
	UpdatePct    float64 `csv:"update_pct"`
	MigratePct   float64 `csv:"migrate_pct"`
	RegionsPct   float64 `csv:"regions_pct"`
	BirthsPct    float64 `csv:"births_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgStepUS:    s.AvgStep.Microseconds(),
		P50StepUS:    s.P50Step.Microseconds(),
		P95StepUS:    s.P95Step.Microseconds(),
		MaxStepUS:    s.MaxStep.Microseconds(),
		StepsPerSec:  s.StepsPerSecond,
		NsPerAnimal:  s.NsPerAnimal,
		PrunePct:     s.PhasePct[PhasePrune],
		UpdatePct:    s.PhasePct[PhaseUpdate],
		MigratePct:   s.PhasePct[PhaseMigrate],
		RegionsPct:   s.PhasePct[PhaseRegions],
		BirthsPct:    s.PhasePct[PhaseBirths],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
