package window

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Curve identifies the shape of a crossfade.
type Curve int

const (
	// CurveLinear sums to unity gain for correlated material.
	CurveLinear Curve = iota
	// CurveEqualPower keeps constant energy for uncorrelated material.
	CurveEqualPower
)

func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveEqualPower:
		return "equal-power"
	default:
		return fmt.Sprintf("curve(%d)", int(c))
	}
}

// Fades returns the fade-in and fade-out gain tables of length n. Sample
// positions are taken at bin centres, so neither table reaches exactly 0 or 1
// and the two tables are mirror images of each other.
func Fades(c Curve, n int) (in, out []float64, err error) {
	if err := validateLength(n); err != nil {
		return nil, nil, err
	}

	in = make([]float64, n)
	out = make([]float64, n)

	for i := range n {
		x := (float64(i) + 0.5) / float64(n)

		switch c {
		case CurveLinear:
			in[i] = x
			out[i] = 1 - x
		case CurveEqualPower:
			in[i] = math.Sin(0.5 * math.Pi * x)
			out[i] = math.Cos(0.5 * math.Pi * x)
		default:
			return nil, nil, fmt.Errorf("%w: %d", errUnknownCurve, int(c))
		}
	}

	return in, out, nil
}

// Crossfader mixes two equally long signals through a fixed fade pair.
// A Crossfader is not safe for concurrent use.
type Crossfader struct {
	curve   Curve
	in      []float64
	out     []float64
	scratch []float64
}

// NewCrossfader precomputes fade tables of length n.
func NewCrossfader(c Curve, n int) (*Crossfader, error) {
	in, out, err := Fades(c, n)
	if err != nil {
		return nil, err
	}

	return &Crossfader{
		curve:   c,
		in:      in,
		out:     out,
		scratch: make([]float64, n),
	}, nil
}

// Len returns the crossfade length in samples.
func (x *Crossfader) Len() int { return len(x.in) }

// Curve returns the fade shape.
func (x *Crossfader) Curve() Curve { return x.curve }

// Mix writes from*fadeOut + to*fadeIn into dst. All three slices must have
// the crossfader's length; dst may alias from.
func (x *Crossfader) Mix(dst, from, to []float64) error {
	n := len(x.in)
	if len(dst) != n || len(from) != n || len(to) != n {
		return errMismatchedLength
	}

	vecmath.MulBlock(x.scratch, to, x.in)
	vecmath.MulBlock(dst, from, x.out)
	vecmath.AddBlockInPlace(dst, x.scratch)

	return nil
}
