// Package stretch changes the duration of 16-bit PCM audio without changing
// its pitch, using time-domain harmonic scaling.
//
// A [Stream] consumes interleaved samples chunk by chunk. Audio is processed
// in fixed analysis windows; each window is split into silence, harmonic and
// noise segments (see package segment). Harmonic segments are lengthened or
// shortened by whole pitch periods joined with short crossfades, noise is
// spliced in fixed blocks (or resampled), and silence is simply repeated or
// dropped. A fractional length target is carried across segments and windows
// so the total output converges to input length times the ratio.
//
// Typical use:
//
//	s, err := stretch.New(44100, 2, stretch.Parameters{Ratio: 1.25})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	for chunk := range chunks {
//		out, err := s.Feed(chunk)
//		...
//	}
//	tail, err := s.Finish()
//
// A Stream is not safe for concurrent use. Independent streams share no state.
package stretch
