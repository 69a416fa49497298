package vocoder

import (
	"testing"

	"github.com/cwbudde/algo-stretch/dsp/grain"
)

func benchmarkGrain(b *testing.B, pitch float64) {
	e, _ := New(48000, 2)

	chunk := e.Specify(10000.5, pitch)

	data := make([]float64, 2*chunk.Len())
	for i := range data {
		data[i] = 0.25
	}

	in := grain.Input{
		Chunk:         chunk,
		Data:          data,
		ChannelStride: chunk.Len(),
		Position:      10000.5,
		Pitch:         pitch,
		Hop:           float64(e.SynthesisHop()),
	}
	out := make([]float64, 2*e.SynthesisHop())

	b.ResetTimer()

	for range b.N {
		_ = e.Analyse(in)
		e.Synthesise(out, e.SynthesisHop(), e.SynthesisHop())
	}
}

func BenchmarkGrainUnityPitch(b *testing.B) { benchmarkGrain(b, 1) }

func BenchmarkGrainFifthUp(b *testing.B) { benchmarkGrain(b, 1.4983) }
