package testutil

import (
	"math"
	"math/rand"
)

// Sine16 generates a deterministic mono int16 sine wave.
func Sine16(freqHz, sampleRate, amplitude float64, length int) []int16 {
	out := make([]int16, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = int16(math.Round(amplitude * math.Sin(step*float64(i))))
	}
	return out
}

// Harmonic16 generates a deterministic tone with a fundamental and decaying
// overtones, closer to a voiced signal than a pure sine.
func Harmonic16(freqHz, sampleRate, amplitude float64, overtones, length int) []int16 {
	out := make([]int16, length)
	step := 2 * math.Pi * freqHz / sampleRate
	norm := 0.0
	for k := 1; k <= overtones+1; k++ {
		norm += 1 / float64(k)
	}
	for i := range out {
		v := 0.0
		for k := 1; k <= overtones+1; k++ {
			v += math.Sin(step*float64(k*i)) / float64(k)
		}
		out[i] = int16(math.Round(amplitude * v / norm))
	}
	return out
}

// Noise16 generates white noise with a fixed seed for reproducibility.
func Noise16(seed int64, amplitude float64, length int) []int16 {
	out := make([]int16, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = int16(math.Round((rng.Float64()*2 - 1) * amplitude))
	}
	return out
}

// Silence returns length zero samples.
func Silence(length int) []int16 {
	return make([]int16, length)
}

// Concat joins signals back to back.
func Concat(parts ...[]int16) []int16 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]int16, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Interleave builds an interleaved multi-channel signal from equally long
// per-channel signals.
func Interleave(channels ...[]int16) []int16 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]int16, frames*len(channels))
	for f := range frames {
		for c, ch := range channels {
			out[f*len(channels)+c] = ch[f]
		}
	}
	return out
}

// Float converts int16 samples to float64 without scaling.
func Float(x []int16) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}
