package stretch

import (
	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/interp"
	"github.com/cwbudde/algo-stretch/dsp/window"
)

// edit is one splice site: count periods are repeated (insertion) or
// removed (deletion) starting at frame pos.
type edit struct {
	pos   int
	count int
}

// fadeLength returns the crossfade length used with period p.
func fadeLength(p int) int {
	return max(1, p/2)
}

// planEdits spreads up to |k| period edits over a segment of n frames.
// Positive k inserts, negative k deletes. Each site sits in the middle of its
// own equal share of the segment, so sites never overlap. The returned count
// is the signed number of periods actually planned; it is smaller in
// magnitude than k when the segment cannot host all of them.
func planEdits(dst []edit, n, p, l, k int) ([]edit, int) {
	if k == 0 || p <= 0 || n < p+l {
		return dst, 0
	}

	insert := k > 0
	if !insert {
		k = -k
	}

	for ; k > 0; k-- {
		for q := min(k, n/(p+l)); q >= 1; q-- {
			share := n / q
			most := (k + q - 1) / q

			span := p + l
			if !insert {
				span = most*p + l
			}

			if span > share {
				continue
			}

			for i := range q {
				count := k / q
				if i < k%q {
					count++
				}

				if !insert {
					span = count*p + l
				}

				start := i * n / q
				dst = append(dst, edit{pos: start + (share-span)/2, count: count})
			}

			if !insert {
				return dst, -k
			}

			return dst, k
		}
	}

	return dst, 0
}

// spliceFrames appends src, lengthened or shortened by the planned edits,
// to dst. src holds n interleaved frames.
func (s *Stream) spliceFrames(dst, src []int16, n, p int, edits []edit, insert bool, x *window.Crossfader) []int16 {
	ch := s.channels
	l := x.Len()
	cur := 0

	for _, e := range edits {
		if insert {
			dst = append(dst, src[cur*ch:(e.pos+p)*ch]...)

			for r := range e.count {
				dst = s.crossfade(dst, src, e.pos+p, e.pos, x)
				if r < e.count-1 {
					dst = append(dst, src[(e.pos+l)*ch:(e.pos+p)*ch]...)
				}
			}

			cur = e.pos + l

			continue
		}

		dst = append(dst, src[cur*ch:e.pos*ch]...)
		dst = s.crossfade(dst, src, e.pos, e.pos+e.count*p, x)
		cur = e.pos + e.count*p + l
	}

	return append(dst, src[cur*ch:n*ch]...)
}

// crossfade appends x.Len() frames fading from src[from:] into src[to:].
func (s *Stream) crossfade(dst, src []int16, from, to int, x *window.Crossfader) []int16 {
	ch := s.channels
	l := x.Len()
	base := len(dst)

	dst = append(dst, src[from*ch:(from+l)*ch]...)

	s.fadeFrom = core.EnsureLen(s.fadeFrom, l)
	s.fadeTo = core.EnsureLen(s.fadeTo, l)
	s.fadeMix = core.EnsureLen(s.fadeMix, l)

	for c := range ch {
		core.ChannelToFloat(s.fadeFrom, src[from*ch:(from+l)*ch], c, ch)
		core.ChannelToFloat(s.fadeTo, src[to*ch:(to+l)*ch], c, ch)

		// Lengths match the crossfader by construction.
		_ = x.Mix(s.fadeMix, s.fadeFrom, s.fadeTo)

		core.FloatToChannel(dst[base:], s.fadeMix, c, ch)
	}

	return dst
}

// crossfader returns the cached fade pair for curve and length l.
func (s *Stream) crossfader(curve window.Curve, l int) *window.Crossfader {
	key := fadeKey{curve: curve, length: l}
	if x, ok := s.fades[key]; ok {
		return x
	}

	// l >= 1 and curve is a known constant, so construction cannot fail.
	x, _ := window.NewCrossfader(curve, l)
	s.fades[key] = x

	return x
}

type fadeKey struct {
	curve  window.Curve
	length int
}

// repeatFrames appends src (n frames) stretched to outFrames by repeating or
// dropping whole frames.
func (s *Stream) repeatFrames(dst, src []int16, n, outFrames int) []int16 {
	ch := s.channels
	for i := range outFrames {
		j := interp.NearestIndex(i, n, outFrames)
		dst = append(dst, src[j*ch:(j+1)*ch]...)
	}

	return dst
}

// resampleFrames appends src (n frames) resampled to outFrames with cubic
// Hermite interpolation, channel by channel.
func (s *Stream) resampleFrames(dst, src []int16, n, outFrames int) []int16 {
	if outFrames <= 0 {
		return dst
	}

	ch := s.channels
	base := len(dst)
	dst = append(dst, make([]int16, outFrames*ch)...)

	s.resIn = core.EnsureLen(s.resIn, n)
	s.resOut = core.EnsureLen(s.resOut, outFrames)

	for c := range ch {
		core.ChannelToFloat(s.resIn, src[:n*ch], c, ch)
		interp.Resample(s.resOut, s.resIn)
		core.FloatToChannel(dst[base:], s.resOut, c, ch)
	}

	return dst
}
