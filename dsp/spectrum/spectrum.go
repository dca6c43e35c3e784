package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-stretch/dsp/window"
)

const (
	minFFTSize = 64
	maxFFTSize = 1 << 16
)

var (
	errShortInput  = errors.New("spectrum: input shorter than minimum fft size")
	errSampleRate  = errors.New("spectrum: sample rate must be > 0")
	errFFTSize     = errors.New("spectrum: fft size must be a power of two >= 64")
	errInputLength = errors.New("spectrum: input length does not match fft size")
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

// Magnitude returns |X[k]| for each complex spectrum bin.
//
// Scratch buffers are pooled internally, so in steady state this allocates
// only the output slice.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Magnitude(out, re, im)
	scratchPool.Put(buf)

	return out
}

// Peak describes the strongest spectral component of a frame.
type Peak struct {
	// Frequency is the parabolically interpolated peak frequency in Hz.
	Frequency float64
	// Bin is the index of the strongest bin.
	Bin int
	// Magnitude is the window-gain corrected linear amplitude of Bin.
	Magnitude float64
}

// Analyzer computes Hann-windowed magnitude spectra of a fixed size.
// An Analyzer is not safe for concurrent use.
type Analyzer struct {
	size int
	plan *algofft.Plan[complex128]
	win  []float64
	gain float64
	in   []complex128
	out  []complex128
	re   []float64
	im   []float64
	mag  []float64
}

// NewAnalyzer creates an analyzer for frames of size samples.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < minFFTSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", errFFTSize, size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: init fft plan: %w", err)
	}

	win := window.Generate(window.TypeHann, size, window.WithPeriodic())

	gain, err := window.CoherentGain(win)
	if err != nil {
		return nil, fmt.Errorf("spectrum: window gain: %w", err)
	}

	half := size/2 + 1

	return &Analyzer{
		size: size,
		plan: plan,
		win:  win,
		gain: gain,
		in:   make([]complex128, size),
		out:  make([]complex128, size),
		re:   make([]float64, half),
		im:   make([]float64, half),
		mag:  make([]float64, half),
	}, nil
}

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// Magnitudes returns the single-sided amplitude spectrum of x, which must
// hold exactly Size samples. The returned slice is reused by the next call.
func (a *Analyzer) Magnitudes(x []float64) ([]float64, error) {
	if len(x) != a.size {
		return nil, fmt.Errorf("%w: %d != %d", errInputLength, len(x), a.size)
	}

	for i, v := range x {
		a.in[i] = complex(v*a.win[i], 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	for k := range a.mag {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)
	vecmath.ScaleBlock(a.mag, a.mag, 2/(float64(a.size)*a.gain))

	return a.mag, nil
}

// Peak returns the strongest component of x above DC.
func (a *Analyzer) Peak(x []float64, sampleRate float64) (Peak, error) {
	if sampleRate <= 0 {
		return Peak{}, errSampleRate
	}

	mag, err := a.Magnitudes(x)
	if err != nil {
		return Peak{}, err
	}

	best := 1
	for k := 2; k < len(mag); k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}

	binHz := sampleRate / float64(a.size)
	freq := float64(best) * binHz

	if best > 0 && best < len(mag)-1 {
		freq = (float64(best) + parabolicOffset(mag[best-1], mag[best], mag[best+1])) * binHz
	}

	return Peak{Frequency: freq, Bin: best, Magnitude: mag[best]}, nil
}

// PeakFrequency returns the dominant frequency of x in Hz. It analyses the
// centred largest power-of-two frame that fits in x, up to 65536 samples.
func PeakFrequency(x []float64, sampleRate float64) (float64, error) {
	if len(x) < minFFTSize {
		return 0, fmt.Errorf("%w: %d", errShortInput, len(x))
	}

	size := minFFTSize
	for size*2 <= len(x) && size*2 <= maxFFTSize {
		size *= 2
	}

	a, err := NewAnalyzer(size)
	if err != nil {
		return 0, err
	}

	start := (len(x) - size) / 2

	p, err := a.Peak(x[start:start+size], sampleRate)
	if err != nil {
		return 0, err
	}

	return p.Frequency, nil
}

// parabolicOffset returns the vertex offset in bins of the parabola through
// three neighbouring magnitudes, in [-0.5, 0.5].
func parabolicOffset(left, centre, right float64) float64 {
	den := left - 2*centre + right
	if den == 0 {
		return 0
	}

	p := 0.5 * (left - right) / den

	return math.Max(-0.5, math.Min(0.5, p))
}
