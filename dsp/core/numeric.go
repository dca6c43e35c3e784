package core

import "math"

const defaultEpsilon = 1e-12

// FullScale is the magnitude used as 0 dBFS for 16-bit PCM.
const FullScale = 32768.0

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampInt16 rounds value to the nearest integer and saturates it to the int16 range.
func ClampInt16(value float64) int16 {
	if math.IsNaN(value) {
		return 0
	}
	r := math.Round(value)
	if r > math.MaxInt16 {
		return math.MaxInt16
	}
	if r < math.MinInt16 {
		return math.MinInt16
	}
	return int16(r)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// MillisToFrames converts a duration in milliseconds to a frame count at sampleRate,
// rounded to the nearest frame.
func MillisToFrames(ms float64, sampleRate int) int {
	return int(math.Round(ms * 0.001 * float64(sampleRate)))
}
