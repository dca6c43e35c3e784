// Package period estimates the fundamental period of a block of audio by
// normalized cross-correlation.
//
// The [Detector] searches lags between sampleRate/upperHz and
// sampleRate/lowerHz. Every lag is compared over the same number of samples,
// so scores of different lags are directly comparable. Among the local maxima
// of the score curve the shortest one scoring within [TieEpsilon] of the best
// wins, which keeps the detector on the fundamental instead of a multiple of
// it.
//
// Three search strategies are available:
//
//   - [ModeNormal]: evaluate every lag.
//   - [ModeFast]:   coarse stride, accept the first strong peak, then refine.
//   - [ModeAuto]:   every lag in ascending order, stopping at the first very
//     strong peak.
//
// Failing to find a period is a normal outcome reported by the ok result of
// [Detector.Detect], not an error.
package period
