package systems

import (
	"math/rand"
)

// clampInt clamps an int value between min and max.
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clampFloat clamps a float64 value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// ceilDiv returns a/b rounded up, for positive operands.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// Jitter returns value scaled by a uniform factor in [1-tolerance, 1+tolerance).
func Jitter(rng *rand.Rand, value, tolerance float64) float64 {
	t := (rng.Float64() - 0.5) * 2 * tolerance
	return value * (1 + t)
}
