package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
// Contents are not preserved when a new slice has to be allocated.
func EnsureLen[T any](buf []T, n int) []T {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]T, n)
}

// ChannelToFloat copies channel c of the interleaved src into dst as float64
// in the int16 domain (no scaling). dst must hold len(src)/channels values.
func ChannelToFloat(dst []float64, src []int16, c, channels int) {
	for i := range len(src) / channels {
		dst[i] = float64(src[i*channels+c])
	}
}

// FloatToChannel rounds and clamps src into channel c of the interleaved
// dst. dst must hold len(src)*channels samples.
func FloatToChannel(dst []int16, src []float64, c, channels int) {
	for i, v := range src {
		dst[i*channels+c] = ClampInt16(v)
	}
}

// MixToMono averages interleaved frames into dst, one value per frame.
// dst must hold len(src)/channels values.
func MixToMono(dst []float64, src []int16, channels int) {
	if channels <= 1 {
		ChannelToFloat(dst, src, 0, 1)
		return
	}
	inv := 1 / float64(channels)
	frames := len(src) / channels
	for f := range frames {
		sum := 0
		base := f * channels
		for c := range channels {
			sum += int(src[base+c])
		}
		dst[f] = float64(sum) * inv
	}
}
