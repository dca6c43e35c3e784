// Package level measures signal levels of PCM material relative to 16-bit
// full scale. The stretch engine uses it to tell silence from signal.
package level

import (
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
)

// Level holds level statistics of a block of samples.
//
//nolint:revive
type Level struct {
	Length        int
	RMS           float64 // in int16 units
	RMS_dBFS      float64
	Peak          float64 // max(|x|) in int16 units
	Peak_dBFS     float64
	CrestFactor   float64 // peak / RMS (linear)
	ZeroCrossings int
}

// toDBFS converts an amplitude in int16 units to dB relative to full scale.
// Returns -Inf for zero values.
func toDBFS(value float64) float64 {
	return core.LinearToDB(math.Abs(value) / core.FullScale)
}

func emptyLevel() Level {
	return Level{
		RMS_dBFS:  math.Inf(-1),
		Peak_dBFS: math.Inf(-1),
	}
}

// Measure computes level statistics for float64 samples in the int16 domain.
func Measure(signal []float64) Level {
	if len(signal) == 0 {
		return emptyLevel()
	}

	var (
		sumSq float64
		peak  float64
		zc    int
	)
	for i, x := range signal {
		sumSq += x * x
		if a := math.Abs(x); a > peak {
			peak = a
		}
		if i > 0 && signal[i-1]*x < 0 {
			zc++
		}
	}

	rms := math.Sqrt(sumSq / float64(len(signal)))
	crest := 0.0
	if rms > 0 {
		crest = peak / rms
	}

	return Level{
		Length:        len(signal),
		RMS:           rms,
		RMS_dBFS:      toDBFS(rms),
		Peak:          peak,
		Peak_dBFS:     toDBFS(peak),
		CrestFactor:   crest,
		ZeroCrossings: zc,
	}
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// RMSdBFS returns the RMS level of int16-domain samples in dBFS.
// An empty or all-zero block yields -Inf.
func RMSdBFS(signal []float64) float64 {
	return toDBFS(RMS(signal))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}

// Meter accumulates level statistics over interleaved int16 chunks of any
// size, e.g. while a file is decoded.
type Meter struct {
	n          int
	sumSq      float64
	peak       float64
	zc         int
	lastSample float64
}

// NewMeter creates an empty Meter.
func NewMeter() *Meter {
	return &Meter{}
}

// Update adds samples to the running statistics.
func (m *Meter) Update(samples []int16) {
	for _, s := range samples {
		x := float64(s)
		m.n++
		m.sumSq += x * x
		if a := math.Abs(x); a > m.peak {
			m.peak = a
		}
		if m.n > 1 && m.lastSample*x < 0 {
			m.zc++
		}
		m.lastSample = x
	}
}

// Result returns the statistics of everything seen since the last Reset.
func (m *Meter) Result() Level {
	if m.n == 0 {
		return emptyLevel()
	}

	rms := math.Sqrt(m.sumSq / float64(m.n))
	crest := 0.0
	if rms > 0 {
		crest = m.peak / rms
	}

	return Level{
		Length:        m.n,
		RMS:           rms,
		RMS_dBFS:      toDBFS(rms),
		Peak:          m.peak,
		Peak_dBFS:     toDBFS(m.peak),
		CrestFactor:   crest,
		ZeroCrossings: m.zc,
	}
}

// Reset clears all accumulated data.
func (m *Meter) Reset() {
	*m = Meter{}
}
