// Package segment splits an analysis window into silence, harmonic and noise
// spans.
package segment

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-stretch/dsp/period"
	"github.com/cwbudde/algo-stretch/stats/level"
)

var (
	errDetector    = errors.New("segment: detector must not be nil")
	errBlockFrames = errors.New("segment: block size must be > 0")
	errThreshold   = errors.New("segment: threshold must be <= 0 dBFS")
)

// Kind classifies a segment.
type Kind int

const (
	KindSilence Kind = iota
	KindHarmonic
	KindNoise
)

func (k Kind) String() string {
	switch k {
	case KindSilence:
		return "silence"
	case KindHarmonic:
		return "harmonic"
	case KindNoise:
		return "noise"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Segment is a contiguous span of an analysis window.
type Segment struct {
	Start  int
	Length int
	Kind   Kind
	// Period is set for harmonic segments only. Its Start is relative to
	// the analysis window.
	Period period.Period
}

// End returns the first frame after the segment.
func (s Segment) End() int { return s.Start + s.Length }

// Classifier labels blocks of a mono analysis signal.
// It shares the detector's scratch memory and is not safe for concurrent use.
type Classifier struct {
	det         *period.Detector
	blockFrames int
	thresholdDB float64
}

// New creates a classifier. Blocks quieter than thresholdDB (RMS, dBFS) are
// treated as silence.
func New(det *period.Detector, blockFrames int, thresholdDB float64) (*Classifier, error) {
	if det == nil {
		return nil, errDetector
	}

	if blockFrames <= 0 {
		return nil, fmt.Errorf("%w: %d", errBlockFrames, blockFrames)
	}

	if math.IsNaN(thresholdDB) || thresholdDB > 0 {
		return nil, fmt.Errorf("%w: %g", errThreshold, thresholdDB)
	}

	return &Classifier{det: det, blockFrames: blockFrames, thresholdDB: thresholdDB}, nil
}

// BlockFrames returns the size of a classification block.
func (c *Classifier) BlockFrames() int { return c.blockFrames }

// Classify appends the segments of x to dst and returns the extended slice.
// The appended segments are contiguous and cover x exactly.
func (c *Classifier) Classify(dst []Segment, x []float64) []Segment {
	if len(x) == 0 {
		return dst
	}

	blocks := max(len(x)/c.blockFrames, 1)

	runStart := 0
	runSilent := c.silent(x, 0, blocks)

	for b := 1; b < blocks; b++ {
		s := c.silent(x, b, blocks)
		if s == runSilent {
			continue
		}

		start := b * c.blockFrames
		dst = c.emit(dst, x, runStart, start, runSilent)
		runStart = start
		runSilent = s
	}

	return c.emit(dst, x, runStart, len(x), runSilent)
}

// silent reports whether block b is below the threshold. The last block
// absorbs the remainder of x.
func (c *Classifier) silent(x []float64, b, blocks int) bool {
	start := b * c.blockFrames
	end := start + c.blockFrames
	if b == blocks-1 {
		end = len(x)
	}

	return level.RMSdBFS(x[start:end]) < c.thresholdDB
}

func (c *Classifier) emit(dst []Segment, x []float64, start, end int, silent bool) []Segment {
	seg := Segment{Start: start, Length: end - start, Kind: KindNoise}

	switch {
	case silent:
		seg.Kind = KindSilence
	default:
		if p, ok := c.det.Detect(x[start:end]); ok {
			p.Start = start
			seg.Kind = KindHarmonic
			seg.Period = p
		}
	}

	return append(dst, seg)
}
