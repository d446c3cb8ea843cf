package components

// Vitals tracks an animal's metabolic state.
// Energy and Desire stay within [0, max]; Age never decreases.
type Vitals struct {
	Energy float64
	Age    float64 // seconds
	Desire float64
}

// SetEnergy stores e clamped to [0, max].
func (v *Vitals) SetEnergy(e, max float64) {
	v.Energy = clamp(e, 0, max)
}

// SetDesire stores d clamped to [0, max].
func (v *Vitals) SetDesire(d, max float64) {
	v.Desire = clamp(d, 0, max)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
