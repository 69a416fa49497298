package stretch

import "github.com/cwbudde/algo-stretch/dsp/window"

// Option configures a Stretcher or Stream at construction.
type Option func(*options)

type options struct {
	log2HopAdjust int
	windowType    window.Type
	factory       EngineFactory
}

func defaultOptions() options {
	return options{windowType: window.TypeHann}
}

// WithLog2SynthesisHopAdjust shortens the synthesis hop of the default
// engine by a power of two. 0 is the default; -1 and -2 trade CPU for
// smoother output.
func WithLog2SynthesisHopAdjust(n int) Option {
	return func(o *options) {
		o.log2HopAdjust = n
	}
}

// WithWindow selects the window of the default engine.
func WithWindow(t window.Type) Option {
	return func(o *options) {
		o.windowType = t
	}
}

// WithEngine replaces the default phase-vocoder engine. The hop adjust and
// window options do not apply to a custom engine.
func WithEngine(factory EngineFactory) Option {
	return func(o *options) {
		o.factory = factory
	}
}
