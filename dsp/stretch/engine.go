package stretch

import (
	"github.com/cwbudde/algo-stretch/dsp/grain"
	"github.com/cwbudde/algo-stretch/dsp/vocoder"
)

type (
	// InputChunk is the half-open span of source frames a grain needs.
	InputChunk = grain.Chunk
	// Engine is the transform a Stretcher drives.
	Engine = grain.Engine
	// EngineFactory creates an Engine for a sample rate and channel count.
	EngineFactory = grain.Factory
)

func (o options) engineFactory() EngineFactory {
	if o.factory != nil {
		return o.factory
	}

	return func(sampleRate, channels int) (Engine, error) {
		e, err := vocoder.New(sampleRate, channels,
			vocoder.WithWindow(o.windowType),
			vocoder.WithLog2SynthesisHopAdjust(o.log2HopAdjust),
		)
		if err != nil {
			return nil, err
		}

		return e, nil
	}
}
