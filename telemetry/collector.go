package telemetry

import "github.com/pthm-cable/ecosys/traits"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDuration float64

	// Current window tracking
	windowStartTick int32
	windowStartTime float64

	// Event counters for current window
	herbBirths  int
	carnBirths  int
	herbDeaths  int
	carnDeaths  int
	kills       int
	conceptions int
	lifespanSum float64
}

// NewCollector creates a new stats collector.
// windowDuration: how long each stats window lasts in simulated time.
func NewCollector(windowDuration float64) *Collector {
	if windowDuration <= 0 {
		windowDuration = 1
	}
	return &Collector{windowDuration: windowDuration}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		if ev.Diet == traits.Herbivore {
			c.herbBirths++
		} else {
			c.carnBirths++
		}
	case EventDeath:
		if ev.Diet == traits.Herbivore {
			c.herbDeaths++
		} else {
			c.carnDeaths++
		}
		c.lifespanSum += ev.Age
	case EventKill:
		c.kills++
	case EventConception:
		c.conceptions++
	}
}

// ShouldFlush returns true if enough time has passed to flush the window.
func (c *Collector) ShouldFlush(now float64) bool {
	return now-c.windowStartTime >= c.windowDuration
}

// Sample is the population state measured at the end of a window.
type Sample struct {
	Herbivores, Carnivores int

	HerbivoreEnergies []float64
	CarnivoreEnergies []float64
	Desires           []float64

	DynamicFood float64 // remaining stock over all bounded regions
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(tick int32, now float64, s Sample) WindowStats {
	herbMean, herbP10, herbP50, herbP90 := ComputeEnergyStats(s.HerbivoreEnergies)
	carnMean, carnP10, carnP50, carnP90 := ComputeEnergyStats(s.CarnivoreEnergies)
	desireMean, desireStd := ComputeSpread(s.Desires)

	var lifespan float64
	if deaths := c.herbDeaths + c.carnDeaths; deaths > 0 {
		lifespan = c.lifespanSum / float64(deaths)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		SimTime:         now,

		Herbivores: s.Herbivores,
		Carnivores: s.Carnivores,

		HerbivoreBirths: c.herbBirths,
		CarnivoreBirths: c.carnBirths,
		HerbivoreDeaths: c.herbDeaths,
		CarnivoreDeaths: c.carnDeaths,
		Kills:           c.kills,
		Conceptions:     c.conceptions,
		MeanLifespan:    lifespan,

		HerbivoreEnergyMean: herbMean,
		HerbivoreEnergyP10:  herbP10,
		HerbivoreEnergyP50:  herbP50,
		HerbivoreEnergyP90:  herbP90,

		CarnivoreEnergyMean: carnMean,
		CarnivoreEnergyP10:  carnP10,
		CarnivoreEnergyP50:  carnP50,
		CarnivoreEnergyP90:  carnP90,

		DesireMean: desireMean,
		DesireStd:  desireStd,

		DynamicFood: s.DynamicFood,
	}

	// Reset for next window
	c.windowStartTick = tick
	c.windowStartTime = now
	c.herbBirths = 0
	c.carnBirths = 0
	c.herbDeaths = 0
	c.carnDeaths = 0
	c.kills = 0
	c.conceptions = 0
	c.lifespanSum = 0

	return stats
}

// WindowDuration returns the simulated time per window.
func (c *Collector) WindowDuration() float64 {
	return c.windowDuration
}
