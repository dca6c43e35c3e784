package interp

import "math"

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// NearestIndex maps output position i of an outLen block onto an index of an
// inLen block. End points map onto end points.
func NearestIndex(i, inLen, outLen int) int {
	if inLen <= 1 || outLen <= 1 {
		return 0
	}

	idx := int(math.Round(float64(i) * float64(inLen-1) / float64(outLen-1)))

	return min(max(idx, 0), inLen-1)
}

// Resample fills dst with src stretched to len(dst) samples. Neighbours
// outside src are clamped to its edge samples.
func Resample(dst, src []float64) {
	if len(dst) == 0 {
		return
	}

	if len(src) == 0 {
		clear(dst)
		return
	}

	if len(src) == 1 || len(dst) == 1 {
		for i := range dst {
			dst[i] = src[0]
		}
		return
	}

	step := float64(len(src)-1) / float64(len(dst)-1)
	for i := range dst {
		pos := float64(i) * step
		idx := int(math.Floor(pos))
		frac := pos - float64(idx)

		dst[i] = Hermite4(frac, clampAt(src, idx-1), clampAt(src, idx), clampAt(src, idx+1), clampAt(src, idx+2))
	}
}

func clampAt(x []float64, idx int) float64 {
	if idx < 0 {
		return x[0]
	}
	if idx >= len(x) {
		return x[len(x)-1]
	}
	return x[idx]
}
