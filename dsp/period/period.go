package period

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-stretch/dsp/core"
)

const (
	// ConfidenceFloor is the minimum score for a period to be reported.
	ConfidenceFloor = 0.50
	// TieEpsilon is the score margin within which a shorter peak wins.
	TieEpsilon = 0.01
	// FastAccept is the coarse score at which ModeFast stops searching.
	FastAccept = 0.90
	// AutoShortcut is the score at which ModeAuto stops searching.
	AutoShortcut = 0.97

	minLowerHz = 20.0
)

var (
	errSampleRate = errors.New("period: sample rate must be > 0")
	errFrequency  = errors.New("period: invalid frequency range")
	errMode       = errors.New("period: unknown detection mode")
)

// Mode selects the lag search strategy.
type Mode int

const (
	ModeAuto Mode = iota
	ModeFast
	ModeNormal
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeFast:
		return "fast"
	case ModeNormal:
		return "normal"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts "auto", "fast" or "normal" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "fast":
		return ModeFast, nil
	case "normal":
		return ModeNormal, nil
	default:
		return ModeAuto, fmt.Errorf("%w: %q", errMode, s)
	}
}

// Period is a detected fundamental period.
type Period struct {
	// Start is the first sample of the analyzed span.
	Start int
	// Length is the period in samples.
	Length int
	// Confidence is the normalized correlation at Length, in [0,1].
	Confidence float64
}

// Detector finds the fundamental period of mono blocks.
// A Detector reuses scratch memory and is not safe for concurrent use.
type Detector struct {
	sampleRate int
	minLag     int
	maxLag     int
	mode       Mode

	prod   []float64
	energy []float64
	scores []float64
	peaks  []int
}

// New creates a detector for periods between sampleRate/upperHz and
// sampleRate/lowerHz samples.
func New(sampleRate int, lowerHz, upperHz float64, mode Mode) (*Detector, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", errSampleRate, sampleRate)
	}

	nyquist := float64(sampleRate) / 2
	if math.IsNaN(lowerHz) || math.IsNaN(upperHz) || lowerHz < minLowerHz || upperHz <= lowerHz || upperHz > nyquist {
		return nil, fmt.Errorf("%w: lower=%g upper=%g nyquist=%g", errFrequency, lowerHz, upperHz, nyquist)
	}

	if mode < ModeAuto || mode > ModeNormal {
		return nil, fmt.Errorf("%w: %d", errMode, int(mode))
	}

	return &Detector{
		sampleRate: sampleRate,
		minLag:     max(int(math.Floor(float64(sampleRate)/upperHz)), 2),
		maxLag:     int(math.Ceil(float64(sampleRate) / lowerHz)),
		mode:       mode,
	}, nil
}

// MinLag returns the shortest period searched, in samples.
func (d *Detector) MinLag() int { return d.minLag }

// MaxLag returns the longest period searched, in samples.
func (d *Detector) MaxLag() int { return d.maxLag }

// Mode returns the search strategy.
func (d *Detector) Mode() Mode { return d.mode }

// SampleRate returns the sample rate in Hz.
func (d *Detector) SampleRate() int { return d.sampleRate }

// MinLength returns the shortest block Detect can analyse.
func (d *Detector) MinLength() int { return 2*d.minLag + 1 }

// Detect estimates the period of x. It returns ok == false when x is too
// short, silent or not periodic enough.
func (d *Detector) Detect(x []float64) (Period, bool) {
	if len(x) < d.MinLength() {
		return Period{}, false
	}

	// Scores are evaluated on [lo, hi] so that every candidate in
	// [minLag, maxLag] has both neighbours.
	lo := max(d.minLag-1, 1)
	hi := min(d.maxLag+1, len(x)/2)
	if hi-lo < 2 {
		return Period{}, false
	}

	m := len(x) - hi

	d.prepare(x, m)
	if d.energy[m] == 0 {
		return Period{}, false
	}

	d.scores = core.EnsureLen(d.scores, hi-lo+1)
	for i := range d.scores {
		d.scores[i] = math.NaN()
	}

	var (
		lag int
		ok  bool
	)

	switch d.mode {
	case ModeFast:
		lag, ok = d.searchFast(x, m, lo, hi)
	case ModeAuto:
		lag, ok = d.searchAuto(x, m, lo, hi)
	default:
		lag, ok = d.searchAll(x, m, lo, hi)
	}

	if !ok {
		return Period{}, false
	}

	conf := core.Clamp(d.score(x, m, lo, lag), 0, 1)
	if conf < ConfidenceFloor {
		return Period{}, false
	}

	return Period{Length: lag, Confidence: conf}, true
}

// prepare builds the running energy table energy[k] = sum of x[0:k]^2.
func (d *Detector) prepare(x []float64, m int) {
	d.prod = core.EnsureLen(d.prod, m)

	d.energy = core.EnsureLen(d.energy, len(x)+1)
	d.energy[0] = 0
	for i, v := range x {
		d.energy[i+1] = d.energy[i] + v*v
	}
}

// score returns the normalized correlation of x[0:m] and x[lag:lag+m],
// caching it in the scores table.
func (d *Detector) score(x []float64, m, lo, lag int) float64 {
	if s := d.scores[lag-lo]; !math.IsNaN(s) {
		return s
	}

	e0 := d.energy[m]
	el := d.energy[lag+m] - d.energy[lag]

	s := 0.0
	if e0 > 0 && el > 0 {
		vecmath.MulBlock(d.prod, x[:m], x[lag:lag+m])

		sum := 0.0
		for _, p := range d.prod {
			sum += p
		}

		s = sum / math.Sqrt(e0*el)
	}

	d.scores[lag-lo] = s

	return s
}

func (d *Detector) isPeak(x []float64, m, lo, lag int) bool {
	s := d.score(x, m, lo, lag)
	return s >= d.score(x, m, lo, lag-1) && s > d.score(x, m, lo, lag+1)
}

// searchAll evaluates every lag and applies the shortest-within-epsilon rule.
func (d *Detector) searchAll(x []float64, m, lo, hi int) (int, bool) {
	best := -1.0
	d.peaks = d.peaks[:0]

	for lag := lo + 1; lag < hi; lag++ {
		if lag < d.minLag || lag > d.maxLag || !d.isPeak(x, m, lo, lag) {
			continue
		}

		d.peaks = append(d.peaks, lag)
		best = math.Max(best, d.scores[lag-lo])
	}

	for _, lag := range d.peaks {
		if d.scores[lag-lo] >= best-TieEpsilon {
			return lag, true
		}
	}

	return 0, false
}

// searchAuto walks lags upwards and stops at the first very strong peak.
func (d *Detector) searchAuto(x []float64, m, lo, hi int) (int, bool) {
	for lag := lo + 1; lag < hi; lag++ {
		if lag < d.minLag || lag > d.maxLag {
			continue
		}

		if d.isPeak(x, m, lo, lag) && d.scores[lag-lo] >= AutoShortcut {
			return lag, true
		}
	}

	return d.searchAll(x, m, lo, hi)
}

// searchFast samples lags on a coarse grid, accepts the first strong coarse
// peak and refines it at full resolution.
func (d *Detector) searchFast(x []float64, m, lo, hi int) (int, bool) {
	stride := min(max(d.minLag/8, 2), 4)

	first := max(d.minLag, lo+stride)
	last := min(d.maxLag, hi-stride)

	for lag := first; lag <= last; lag += stride {
		s := d.score(x, m, lo, lag)
		if s < FastAccept {
			continue
		}

		if s < d.score(x, m, lo, lag-stride) || s <= d.score(x, m, lo, lag+stride) {
			continue
		}

		bestLag := lag
		for r := max(lag-stride, d.minLag); r <= min(lag+stride, d.maxLag); r++ {
			if d.score(x, m, lo, r) > d.scores[bestLag-lo] {
				bestLag = r
			}
		}

		return bestLag, true
	}

	return d.searchAll(x, m, lo, hi)
}
