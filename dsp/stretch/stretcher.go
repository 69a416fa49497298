package stretch

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/dsp/grain"
)

// Stretcher drives one transform engine through the grain cycle.
//
// A Stretcher never allocates output storage and never retains caller
// buffers past a call. It is not safe for concurrent use.
type Stretcher struct {
	sampleRate    int
	channels      int
	engine        Engine
	hop           int
	latencyGrains int

	state state

	// Grain history since the last preroll or reset grain. history is a ring
	// over the last latencyGrains+1 analysed grains, indexed by grain number.
	grains  int
	first   Request
	history []Request
	prev    Request
	hasPrev bool

	current Request
	chunk   InputChunk
	hopIn   float64
}

// New creates a Stretcher for sampleRate Hz and channels channels.
func New(sampleRate, channels int, opts ...Option) (*Stretcher, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrConstruction, sampleRate)
	}

	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", ErrConstruction, channels)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	engine, err := o.engineFactory()(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}

	if engine == nil {
		return nil, fmt.Errorf("%w: engine factory returned no engine", ErrConstruction)
	}

	if engine.Channels() != channels || engine.SynthesisHop() <= 0 || engine.Latency() < 0 {
		return nil, fmt.Errorf("%w: engine reports %d channels, hop %d, latency %d",
			ErrConstruction, engine.Channels(), engine.SynthesisHop(), engine.Latency())
	}

	latencyGrains := engine.Latency() / engine.SynthesisHop()

	return &Stretcher{
		sampleRate:    sampleRate,
		channels:      channels,
		engine:        engine,
		hop:           engine.SynthesisHop(),
		latencyGrains: latencyGrains,
		history:       make([]Request, latencyGrains+1),
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (s *Stretcher) SampleRate() int { return s.sampleRate }

// Channels returns the channel count.
func (s *Stretcher) Channels() int { return s.channels }

// MaxInputFrameCount bounds the length of any span SpecifyGrain returns.
func (s *Stretcher) MaxInputFrameCount() int { return s.engine.MaxInputFrameCount() }

// ChannelStride is a channel stride large enough for every grain, suitable
// for sizing one reusable analysis buffer of Channels()*ChannelStride()
// samples.
func (s *Stretcher) ChannelStride() int { return s.engine.MaxInputFrameCount() }

// SynthesisHop returns the number of output frames each grain produces.
func (s *Stretcher) SynthesisHop() int { return s.hop }

// Latency returns the number of output frames between the first output
// frame of a grain and the frame aligned with that grain's centre.
func (s *Stretcher) Latency() int { return s.engine.Latency() }

// IsFlushed reports whether the engine holds no overlap-add output that has
// not been synthesised yet.
func (s *Stretcher) IsFlushed() bool { return s.engine.Flushed() }

// Preroll validates req and restarts the Stretcher at req.Position as if
// newly constructed. It is legal in any state and does not modify req.
func (s *Stretcher) Preroll(req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	next, _ := transition(s.state, opPreroll)

	s.restart(req)
	s.state = next

	return nil
}

// SpecifyGrain returns the source span the grain for req needs. The span may
// begin before frame 0 or end past the end of the source; the caller
// supplies zeros there or mutes those frames. A flush request (NaN position)
// yields an empty span.
//
// If req.Reset is set, carried-over synthesis state is discarded as if
// Preroll had been called.
func (s *Stretcher) SpecifyGrain(req Request) (InputChunk, error) {
	next, err := transition(s.state, opSpecifyGrain)
	if err != nil {
		return InputChunk{}, err
	}

	if err := req.Validate(); err != nil {
		return InputChunk{}, err
	}

	if req.Reset {
		s.restart(req)
	}

	s.current = req
	s.hopIn = s.analysisHop(req)

	if req.IsFlush() {
		s.chunk = InputChunk{}
	} else {
		s.chunk = s.engine.Specify(req.Position, req.Pitch)
	}

	s.state = next

	return s.chunk, nil
}

// AnalyseGrain feeds the specified grain. data holds Channels() spans,
// channel n starting at data[n*channelStride], each covering the whole span
// returned by SpecifyGrain. A nil data analyses the grain as silence.
func (s *Stretcher) AnalyseGrain(data []float64, channelStride int) error {
	return s.AnalyseGrainMuted(data, channelStride, 0, 0)
}

// AnalyseGrainMuted is AnalyseGrain where the first muteHead and the last
// muteTail frames of the span are silence. Muted frames are not read, so
// each channel only needs Len()-muteTail frames; this lets a caller at the
// end of its input pass a short buffer.
func (s *Stretcher) AnalyseGrainMuted(data []float64, channelStride, muteHead, muteTail int) error {
	next, err := transition(s.state, opAnalyseGrain)
	if err != nil {
		return err
	}

	length := s.chunk.Len()
	if muteHead < 0 || muteTail < 0 || muteHead+muteTail > length {
		return fmt.Errorf("%w: mute counts %d and %d do not fit a %d-frame grain",
			ErrBufferSize, muteHead, muteTail, length)
	}

	if data != nil {
		need := length - muteTail
		if channelStride < need {
			return fmt.Errorf("%w: channel stride %d below the %d frames the grain needs",
				ErrBufferSize, channelStride, need)
		}

		if want := (s.channels-1)*channelStride + need; len(data) < want {
			return fmt.Errorf("%w: grain data holds %d samples, need %d", ErrBufferSize, len(data), want)
		}
	}

	in := grain.Input{
		Chunk:         s.chunk,
		Data:          data,
		ChannelStride: channelStride,
		MuteHead:      muteHead,
		MuteTail:      muteTail,
		Position:      s.current.Position,
		Pitch:         s.current.Pitch,
		Hop:           s.hopIn,
		Silent:        s.current.IsFlush(),
	}

	if err := s.engine.Analyse(in); err != nil {
		return fmt.Errorf("stretch: engine analysis failed: %w", err)
	}

	if s.grains == 0 {
		s.first = s.current
	}

	s.history[s.grains%len(s.history)] = s.current
	s.prev = s.current
	s.hasPrev = !s.current.IsFlush()
	s.state = next

	return nil
}

// SynthesiseGrain writes the output of the analysed grain into out and sets
// out.FrameCount and out.Request. out must hold Channels() spans of
// out.ChannelStride frames. When the capacity is smaller than SynthesisHop
// the frames that do not fit are dropped.
func (s *Stretcher) SynthesiseGrain(out *OutputChunk) error {
	next, err := transition(s.state, opSynthesiseGrain)
	if err != nil {
		return err
	}

	if out == nil || out.ChannelStride <= 0 || len(out.Data) < s.channels*out.ChannelStride {
		return fmt.Errorf("%w: output chunk must hold %d channels", ErrBufferSize, s.channels)
	}

	out.FrameCount = s.engine.Synthesise(out.Data, out.ChannelStride, out.Capacity())

	aligned := s.grains - s.latencyGrains
	out.Request[0] = s.alignedRequest(aligned)
	out.Request[1] = s.alignedRequest(aligned + 1)

	s.grains++
	s.state = next

	return nil
}

// Next advances req to the following grain: the position moves by
// Speed*SynthesisHop source frames and Reset is cleared. A flush position
// stays NaN.
func (s *Stretcher) Next(req *Request) error {
	next, err := transition(s.state, opNext)
	if err != nil {
		return err
	}

	if req == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	req.Position += req.Speed * float64(s.hop)
	req.Reset = false
	s.state = next

	return nil
}

func (s *Stretcher) restart(req Request) {
	s.engine.Reset()
	s.grains = 0
	s.first = req
	s.prev = Request{}
	s.hasPrev = false
	clear(s.history)
	s.chunk = InputChunk{}
}

// analysisHop is the source distance from the previous analysed grain to
// req, or Speed*SynthesisHop when there is no previous grain. A value <= 0
// makes the engine restart phase tracking.
func (s *Stretcher) analysisHop(req Request) float64 {
	if req.IsFlush() {
		return 0
	}

	if !s.hasPrev {
		return req.Speed * float64(s.hop)
	}

	return req.Position - s.prev.Position
}

// alignedRequest returns the request of grain number g. Grains before the
// first are extrapolated backwards from it and grains not analysed yet
// forwards from the current one.
func (s *Stretcher) alignedRequest(g int) Request {
	var (
		r     Request
		steps int
	)

	switch {
	case g < 0:
		r, steps = s.first, g
	case g > s.grains:
		r, steps = s.history[s.grains%len(s.history)], g-s.grains
	default:
		return s.history[g%len(s.history)]
	}

	r.Reset = false
	r.Position += float64(steps) * r.Speed * float64(s.hop)

	return r
}
