package stretch

import (
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/segment"
	"github.com/cwbudde/algo-stretch/dsp/window"
)

// unityTolerance is how close to 1 a ratio must be to copy audio unchanged.
const unityTolerance = 1e-6

// processWindow stretches one analysis window of interleaved frames and
// appends the result to dst. Only the first realFrames frames count towards
// the length target; the rest is padding.
func (s *Stream) processWindow(dst, frames []int16, realFrames int) []int16 {
	n := len(frames) / s.channels

	s.mono = core.EnsureLen(s.mono, n)
	core.MixToMono(s.mono, frames, s.channels)

	s.segs = s.classifier.Classify(s.segs[:0], s.mono)
	s.stats.Windows++

	for _, seg := range s.segs {
		counted := min(max(realFrames-seg.Start, 0), seg.Length)
		src := frames[seg.Start*s.channels : seg.End()*s.channels]

		before := len(dst)
		dst = s.processSegment(dst, src, seg, counted)
		produced := (len(dst) - before) / s.channels

		s.log.Tracef("window %d: %v [%d,%d) period %d conf %.3f -> %d frames (target %.1f)",
			s.stats.Windows, seg.Kind, seg.Start, seg.End(), seg.Period.Length, seg.Period.Confidence,
			produced, s.target)
	}

	return dst
}

// processSegment advances the length target by the segment's counted frames
// and appends as many output frames as are needed to meet it.
func (s *Stream) processSegment(dst, src []int16, seg segment.Segment, counted int) []int16 {
	ratio := s.ratio
	if seg.Kind == segment.KindSilence {
		ratio = s.gapRatio
	}

	switch seg.Kind {
	case segment.KindSilence:
		s.stats.Silence++
	case segment.KindHarmonic:
		s.stats.Harmonic++
	default:
		s.stats.Noise++
	}

	s.target += float64(counted) * ratio
	need := s.target - float64(s.produced)
	n := seg.Length

	before := len(dst)

	switch {
	case core.NearlyEqual(ratio, 1, unityTolerance):
		dst = append(dst, src...)
	case seg.Kind == segment.KindSilence:
		dst = s.repeatFrames(dst, src, n, roundFrames(need))
	case seg.Kind == segment.KindHarmonic:
		dst = s.splice(dst, src, n, seg.Period.Length, need, window.CurveLinear)
	case s.params.Noise == NoiseResample:
		dst = s.resampleFrames(dst, src, n, roundFrames(need))
	default:
		dst = s.splice(dst, src, n, s.noiseBlock, need, window.CurveEqualPower)
	}

	s.produced += int64((len(dst) - before) / s.channels)

	return dst
}

// splice inserts or deletes whole blocks of p frames so that the segment's
// output gets as close to need frames as the segment allows.
func (s *Stream) splice(dst, src []int16, n, p int, need float64, curve window.Curve) []int16 {
	k := int(math.Round((need - float64(n)) / float64(p)))
	l := fadeLength(p)

	var planned int
	s.edits, planned = planEdits(s.edits[:0], n, p, l, k)

	if planned == 0 {
		return append(dst, src...)
	}

	if planned > 0 {
		s.stats.Insertions += planned
	} else {
		s.stats.Deletions -= planned
	}

	return s.spliceFrames(dst, src, n, p, s.edits, planned > 0, s.crossfader(curve, l))
}

func roundFrames(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}

	return int(math.Round(v))
}
