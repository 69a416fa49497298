package stretch

import (
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
)

// Stream runs a Stretcher behind block-sized calls.
//
// Input is appended to an internal FIFO addressed by absolute frame, grains
// are cut from it as soon as their span is complete, and synthesised frames
// wait in a second FIFO until a Process call asks for them. The concatenated
// output does not depend on how the caller splits its input into blocks.
//
// Stream copies everything it keeps; caller slices are never retained.
type Stream struct {
	stretcher *Stretcher
	channels  int

	input  *buffer.Planar
	output *buffer.Planar

	request   Request
	prerolled bool
	requested float64
	appended  int

	analysis []float64
	chunk    OutputChunk
	views    [][]float64

	// segments maps the frames in output to source positions, one entry per
	// synthesised chunk still (partly) queued.
	segments []segment
	tail     float64
}

type segment struct {
	frames   int
	consumed int
	begin    float64
	end      float64
}

func (g segment) position() float64 {
	return g.begin + (g.end-g.begin)*float64(g.consumed)/float64(g.frames)
}

// NewStream creates a Stream. maxInputFrameCount is the nominal block size
// used to pre-size the internal FIFOs; larger blocks are accepted and grow
// them.
func NewStream(sampleRate, channels, maxInputFrameCount int, opts ...Option) (*Stream, error) {
	if maxInputFrameCount <= 0 {
		return nil, fmt.Errorf("%w: block size must be positive, got %d", ErrConstruction, maxInputFrameCount)
	}

	st, err := New(sampleRate, channels, opts...)
	if err != nil {
		return nil, err
	}

	stride := st.ChannelStride()
	hop := st.SynthesisHop()

	s := &Stream{
		stretcher: st,
		channels:  channels,
		input:     buffer.NewPlanar(channels, maxInputFrameCount+stride),
		output:    buffer.NewPlanar(channels, maxInputFrameCount+hop),
		analysis:  make([]float64, channels*stride),
		chunk: OutputChunk{
			Data:          make([]float64, channels*hop),
			ChannelStride: hop,
		},
		views: make([][]float64, channels),
	}

	for c := range s.views {
		s.views[c] = s.chunk.Data[c*hop : (c+1)*hop]
	}

	s.request = initialRequest()

	return s, nil
}

// SampleRate returns the sample rate in Hz.
func (s *Stream) SampleRate() int { return s.stretcher.SampleRate() }

// Channels returns the channel count.
func (s *Stream) Channels() int { return s.channels }

// InputPosition returns the total number of input frames appended since
// construction or Reset.
func (s *Stream) InputPosition() int { return s.appended }

// OutputPosition returns the source position, in input frames, aligned with
// the next frame Process will hand out. It is negative during run-in and 0
// before the first call.
func (s *Stream) OutputPosition() float64 {
	if len(s.segments) == 0 {
		return s.tail
	}

	return s.segments[0].position()
}

// Latency returns the delay between input and output in input frames at the
// current speed.
func (s *Stream) Latency() float64 {
	return float64(s.stretcher.Latency()) * s.request.Speed
}

// Reset drops all buffered input and output and restarts the stream at
// position 0. The next Process call prerolls again.
func (s *Stream) Reset() {
	s.input.Reset()
	s.output.Reset()
	s.request = initialRequest()
	s.prerolled = false
	s.requested = 0
	s.appended = 0
	s.segments = s.segments[:0]
	s.tail = 0
}

// Process appends inputFrameCount frames of input and writes up to
// outputFrameCount frames into output, returning the number written.
//
// The speed for this call is inputFrameCount/outputFrameCount. The
// fractional part of outputFrameCount carries over, so the total returned
// over many calls tracks the sum of the requested lengths. A nil input
// appends silence. Fewer frames are returned while not enough input has
// arrived; that is not an error.
//
// On error nothing is appended or consumed.
func (s *Stream) Process(input, output [][]float64, inputFrameCount int, outputFrameCount, pitch float64) (int, error) {
	if inputFrameCount <= 0 {
		return 0, fmt.Errorf("%w: input frame count must be positive, got %d", ErrInvalidRequest, inputFrameCount)
	}

	if !(outputFrameCount > 0) || math.IsInf(outputFrameCount, 0) {
		return 0, fmt.Errorf("%w: output frame count must be positive and finite, got %v",
			ErrInvalidRequest, outputFrameCount)
	}

	req := s.request
	req.Speed = float64(inputFrameCount) / outputFrameCount
	req.Pitch = pitch

	if err := req.Validate(); err != nil {
		return 0, err
	}

	if err := s.checkBuffers(input, output, inputFrameCount, outputFrameCount); err != nil {
		return 0, err
	}

	if !s.prerolled {
		if err := s.stretcher.Preroll(req); err != nil {
			return 0, err
		}

		s.prerolled = true
	}

	s.request = req
	s.input.Append(input, inputFrameCount)
	s.appended += inputFrameCount

	target := int(math.Floor(s.requested+outputFrameCount) - math.Floor(s.requested))
	s.requested += outputFrameCount

	for s.output.Len() < target {
		more, err := s.processGrain()
		if err != nil {
			return 0, err
		}

		if !more {
			break
		}
	}

	n := s.output.Read(output, target)
	s.consume(n)

	return n, nil
}

func (s *Stream) checkBuffers(input, output [][]float64, inputFrameCount int, outputFrameCount float64) error {
	if input != nil {
		if len(input) != s.channels {
			return fmt.Errorf("%w: input has %d channels, want %d", ErrBufferSize, len(input), s.channels)
		}

		for c, span := range input {
			if len(span) < inputFrameCount {
				return fmt.Errorf("%w: input channel %d holds %d frames, want %d",
					ErrBufferSize, c, len(span), inputFrameCount)
			}
		}
	}

	if len(output) != s.channels {
		return fmt.Errorf("%w: output has %d channels, want %d", ErrBufferSize, len(output), s.channels)
	}

	need := math.Ceil(outputFrameCount)
	for c, span := range output {
		if float64(len(span)) < need {
			return fmt.Errorf("%w: output channel %d holds %d frames, want %.0f",
				ErrBufferSize, c, len(span), need)
		}
	}

	return nil
}

// processGrain runs one grain cycle. It reports false when the input FIFO
// does not hold the next grain's span yet.
func (s *Stream) processGrain() (bool, error) {
	chunk, err := s.stretcher.SpecifyGrain(s.request)
	if err != nil {
		return false, err
	}

	if chunk.End > s.input.End() {
		return false, nil
	}

	stride := s.stretcher.ChannelStride()
	s.input.CopyRange(s.analysis, stride, chunk.Begin, chunk.End)

	muteHead := min(max(-chunk.Begin, 0), chunk.Len())
	if err := s.stretcher.AnalyseGrainMuted(s.analysis, stride, muteHead, 0); err != nil {
		return false, err
	}

	if err := s.stretcher.SynthesiseGrain(&s.chunk); err != nil {
		return false, err
	}

	s.output.Append(s.views, s.chunk.FrameCount)

	if s.chunk.FrameCount > 0 {
		s.segments = append(s.segments, segment{
			frames: s.chunk.FrameCount,
			begin:  s.chunk.Request[0].Position,
			end:    s.chunk.Request[1].Position,
		})
		s.tail = s.chunk.Request[1].Position
	}

	if err := s.stretcher.Next(&s.request); err != nil {
		return false, err
	}

	// No future grain starts more than one maximal span before its centre,
	// and centres only move forward.
	s.input.DiscardBefore(int(math.Floor(s.request.Position)) - stride)

	return true, nil
}

// consume advances the output position map past n delivered frames.
func (s *Stream) consume(n int) {
	done := 0
	for n > 0 && done < len(s.segments) {
		g := &s.segments[done]

		take := min(n, g.frames-g.consumed)
		g.consumed += take
		n -= take

		if g.consumed == g.frames {
			done++
		}
	}

	s.segments = slices.Delete(s.segments, 0, done)
}

func initialRequest() Request {
	return Request{Speed: 1, Pitch: 1, Reset: true}
}
