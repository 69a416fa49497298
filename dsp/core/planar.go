package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// EnsurePlanar returns a planar buffer of channels spans of n frames each,
// reusing the spans of buf where their capacity allows.
func EnsurePlanar(buf [][]float64, channels, n int) [][]float64 {
	if channels <= 0 {
		return buf[:0]
	}
	if cap(buf) < channels {
		grown := make([][]float64, channels)
		copy(grown, buf)
		buf = grown
	}
	buf = buf[:channels]
	for c := range buf {
		buf[c] = EnsureLen(buf[c], n)
	}
	return buf
}

// ZeroPlanar sets every span of buf to 0.
func ZeroPlanar(buf [][]float64) {
	for _, span := range buf {
		Zero(span)
	}
}

// Deinterleave splits frames of interleaved samples into planar dst, which
// must hold len(dst) spans of at least frames samples. It returns the number
// of frames written.
func Deinterleave(dst [][]float64, src []float64) int {
	channels := len(dst)
	if channels == 0 {
		return 0
	}
	frames := len(src) / channels
	for c := range dst {
		if len(dst[c]) < frames {
			frames = len(dst[c])
		}
	}
	for i := range frames {
		for c := range dst {
			dst[c][i] = src[i*channels+c]
		}
	}
	return frames
}

// Interleave writes frames of planar src into dst as interleaved samples and
// returns the number of frames written.
func Interleave(dst []float64, src [][]float64, frames int) int {
	channels := len(src)
	if channels == 0 {
		return 0
	}
	if limit := len(dst) / channels; frames > limit {
		frames = limit
	}
	for c := range src {
		if len(src[c]) < frames {
			frames = len(src[c])
		}
	}
	for i := range frames {
		for c := range src {
			dst[i*channels+c] = src[c][i]
		}
	}
	return frames
}
