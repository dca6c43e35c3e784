// Package interp provides interpolation primitives used to fit audio segments
// to an exact length.
//
// [Resample] stretches or squeezes a block with 4-point cubic Hermite
// interpolation ([Hermite4]) so that its first and last samples land on the
// first and last output positions. [NearestIndex] gives the same end-point
// aligned mapping for whole-frame repetition.
package interp
