package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// PlanarSine returns channels sine spans of length frames. Channel c runs
// at freqHz*(c+1) so channel mix-ups show in comparisons.
func PlanarSine(channels int, freqHz, sampleRate, amplitude float64, length int) [][]float64 {
	out := make([][]float64, channels)
	for c := range out {
		out[c] = DeterministicSine(freqHz*float64(c+1), sampleRate, amplitude, length)
	}

	return out
}

// PlanarNoise returns channels independent noise spans seeded from seed.
func PlanarNoise(seed int64, channels int, amplitude float64, length int) [][]float64 {
	out := make([][]float64, channels)
	for c := range out {
		out[c] = DeterministicNoise(seed+int64(c), amplitude, length)
	}

	return out
}

// Slice returns frames [begin, end) of every channel of src without copying.
func Slice(src [][]float64, begin, end int) [][]float64 {
	out := make([][]float64, len(src))
	for c := range src {
		out[c] = src[c][begin:end]
	}

	return out
}
