package vocoder

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-stretch/dsp/grain"
	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// frameRateDivisor picks a frame of roughly 21 ms: the frame size is the
	// next power of two above sampleRate/frameRateDivisor.
	frameRateDivisor = 48

	minFrameSize = 64
	maxFrameSize = 16384

	minLog2SynthesisHopAdjust = -2
	maxLog2SynthesisHopAdjust = 0

	maxSampleRate = 1 << 20
	maxChannels   = 64

	normFloor = 1e-12
)

// Option configures an Engine at construction.
type Option func(*config)

type config struct {
	windowType    window.Type
	log2HopAdjust int
	frameSize     int
}

// WithWindow selects the analysis/synthesis window. The default is Hann.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.windowType = t
	}
}

// WithLog2SynthesisHopAdjust shortens the synthesis hop by a power of two:
// 0 uses a quarter frame, -1 an eighth, -2 a sixteenth. Smaller hops cost
// more CPU and give smoother output.
func WithLog2SynthesisHopAdjust(n int) Option {
	return func(c *config) {
		c.log2HopAdjust = n
	}
}

// WithFrameSize overrides the sample-rate derived frame size. size must be a
// power of two in [64, 16384].
func WithFrameSize(size int) Option {
	return func(c *config) {
		c.frameSize = size
	}
}

type channelState struct {
	prevPhase []float64
	sumPhase  []float64
	acc       []float64
	primed    bool
}

// Engine is a multi-channel phase-vocoder grain engine.
//
// Each grain is resampled by the pitch ratio onto one frame (4-point Hermite
// interpolation), windowed and transformed. Phases are propagated from the
// analysis hop to the fixed synthesis hop with identity phase locking
// (Laroche & Dolson 1999), and the resynthesised frame is overlap-added into
// a per-channel accumulator. Each grain releases one synthesis hop of
// output, normalised by the window's overlap power sum.
//
// Engine is not safe for concurrent use.
type Engine struct {
	sampleRate   int
	channels     int
	frameSize    int
	synthesisHop int
	windowType   window.Type

	plan    *algofft.Plan[complex128]
	window  []float64
	invNorm []float64
	omega   []float64

	chans     []channelState
	remaining int

	// Work buffers shared by all channels.
	frame      []float64
	spectrum   []complex128
	timeFrame  []complex128
	re         []float64
	im         []float64
	magnitudes []float64
	phases     []float64
	instFreqs  []float64
	peakBins   []int
}

var _ grain.Engine = (*Engine)(nil)

// New creates an engine for sampleRate Hz and channels channels.
func New(sampleRate, channels int, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 || sampleRate > maxSampleRate {
		return nil, fmt.Errorf("vocoder: sample rate must be in [1, %d]: %d", maxSampleRate, sampleRate)
	}

	if channels <= 0 || channels > maxChannels {
		return nil, fmt.Errorf("vocoder: channel count must be in [1, %d]: %d", maxChannels, channels)
	}

	cfg := config{windowType: window.TypeHann}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.frameSize == 0 {
		cfg.frameSize = frameSizeFor(sampleRate)
	}

	if cfg.frameSize < minFrameSize || cfg.frameSize > maxFrameSize || !isPowerOf2(cfg.frameSize) {
		return nil, fmt.Errorf("vocoder: frame size must be a power of two in [%d, %d]: %d",
			minFrameSize, maxFrameSize, cfg.frameSize)
	}

	if cfg.log2HopAdjust < minLog2SynthesisHopAdjust || cfg.log2HopAdjust > maxLog2SynthesisHopAdjust {
		return nil, fmt.Errorf("vocoder: log2 synthesis hop adjust must be in [%d, %d]: %d",
			minLog2SynthesisHopAdjust, maxLog2SynthesisHopAdjust, cfg.log2HopAdjust)
	}

	e := &Engine{
		sampleRate:   sampleRate,
		channels:     channels,
		frameSize:    cfg.frameSize,
		synthesisHop: (cfg.frameSize / 4) >> -cfg.log2HopAdjust,
		windowType:   cfg.windowType,
	}

	if err := e.buildState(); err != nil {
		return nil, err
	}

	return e, nil
}

// SampleRate returns the sample rate in Hz.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Channels returns the channel count.
func (e *Engine) Channels() int { return e.channels }

// FrameSize returns the FFT frame size.
func (e *Engine) FrameSize() int { return e.frameSize }

// SynthesisHop returns the number of output frames released per grain.
func (e *Engine) SynthesisHop() int { return e.synthesisHop }

// WindowType returns the analysis/synthesis window shape.
func (e *Engine) WindowType() window.Type { return e.windowType }

// Latency returns half a frame: a grain's centre leaves the accumulator that
// many output frames after the grain's first output frame.
func (e *Engine) Latency() int { return e.frameSize / 2 }

// MaxInputFrameCount returns the longest span Specify reports, reached at
// the highest pitch ratio.
func (e *Engine) MaxInputFrameCount() int {
	return int(math.Ceil(grain.MaxPitch*float64(e.frameSize))) + 4
}

// Specify returns the source span a grain centred on position needs.
//
// The grain reads frameSize points spaced pitch frames apart around
// position. With pitch 1 on a whole-frame position the points are source
// frames and the span is exactly one frame; otherwise it carries one guard
// frame before and two after for the Hermite kernel.
func (e *Engine) Specify(position, pitch float64) grain.Chunk {
	half := e.frameSize / 2
	if isExact(position, pitch) {
		begin := int(position) - half

		return grain.Chunk{Begin: begin, End: begin + e.frameSize}
	}

	first := position - float64(half)*pitch
	last := first + float64(e.frameSize-1)*pitch

	return grain.Chunk{
		Begin: int(math.Floor(first)) - 1,
		End:   int(math.Floor(last)) + 3,
	}
}

// Analyse shifts the accumulators by one synthesis hop and overlap-adds the
// resynthesised grain. A Silent grain only shifts, letting pending output
// drain, and restarts phase tracking for the next grain.
func (e *Engine) Analyse(in grain.Input) error {
	if err := e.validateInput(&in); err != nil {
		return err
	}

	e.shift()

	if in.Silent {
		for c := range e.chans {
			e.chans[c].primed = false
		}

		return nil
	}

	hop := in.Hop / in.Pitch
	for c := range e.chans {
		e.resample(c, &in)

		if err := e.analyseChannel(&e.chans[c], hop); err != nil {
			return err
		}
	}

	e.remaining = e.frameSize

	return nil
}

// Synthesise writes the next min(capacity, SynthesisHop) output frames.
// Frames beyond capacity are dropped.
func (e *Engine) Synthesise(data []float64, channelStride, capacity int) int {
	n := min(e.synthesisHop, capacity)
	if n <= 0 || channelStride < n || len(data) < (e.channels-1)*channelStride+n {
		return 0
	}

	for c := range e.chans {
		vecmath.MulBlock(data[c*channelStride:c*channelStride+n], e.chans[c].acc[:n], e.invNorm[:n])
	}

	e.remaining = max(e.remaining-e.synthesisHop, 0)

	return n
}

// Flushed reports whether every overlap-added frame has been synthesised.
func (e *Engine) Flushed() bool { return e.remaining == 0 }

// Reset clears phase tracking and the overlap-add accumulators.
func (e *Engine) Reset() {
	for c := range e.chans {
		ch := &e.chans[c]
		clear(ch.prevPhase)
		clear(ch.sumPhase)
		clear(ch.acc)
		ch.primed = false
	}

	e.remaining = 0
}

func (e *Engine) validateInput(in *grain.Input) error {
	if in.Silent {
		return nil
	}

	if !(in.Pitch >= grain.MinPitch && in.Pitch <= grain.MaxPitch) {
		return fmt.Errorf("vocoder: pitch must be in [%g, %g]: %g", grain.MinPitch, grain.MaxPitch, in.Pitch)
	}

	if math.IsNaN(in.Position) || math.IsInf(in.Position, 0) {
		return fmt.Errorf("vocoder: grain position must be finite: %g", in.Position)
	}

	length := in.Chunk.Len()
	if in.MuteHead < 0 || in.MuteTail < 0 || in.MuteHead+in.MuteTail > length {
		return fmt.Errorf("vocoder: mute counts %d+%d exceed grain length %d", in.MuteHead, in.MuteTail, length)
	}

	if in.Data == nil {
		return nil
	}

	need := length - in.MuteTail
	if in.ChannelStride < need || len(in.Data) < (e.channels-1)*in.ChannelStride+need {
		return fmt.Errorf("vocoder: grain data holds %d samples at stride %d, need %d frames x %d channels",
			len(in.Data), in.ChannelStride, need, e.channels)
	}

	return nil
}

func (e *Engine) shift() {
	keep := e.frameSize - e.synthesisHop
	for c := range e.chans {
		acc := e.chans[c].acc
		copy(acc, acc[e.synthesisHop:])
		clear(acc[keep:])
	}
}

func (e *Engine) analyseChannel(ch *channelState, hop float64) error {
	half := e.frameSize / 2

	vecmath.MulBlockInPlace(e.frame, e.window)

	for i, v := range e.frame {
		e.spectrum[i] = complex(v, 0)
	}

	err := e.plan.Forward(e.spectrum, e.spectrum)
	if err != nil {
		return fmt.Errorf("vocoder: forward FFT failed: %w", err)
	}

	for k := 0; k <= half; k++ {
		e.re[k] = real(e.spectrum[k])
		e.im[k] = imag(e.spectrum[k])
	}

	vecmath.Magnitude(e.magnitudes, e.re, e.im)

	fresh := !ch.primed || hop <= 0
	for k := 0; k <= half; k++ {
		phase := math.Atan2(e.im[k], e.re[k])
		e.phases[k] = phase

		if fresh {
			e.instFreqs[k] = e.omega[k]
			continue
		}

		delta := wrapPhase(phase - ch.prevPhase[k] - e.omega[k]*hop)
		e.instFreqs[k] = e.omega[k] + delta/hop
	}

	if fresh {
		copy(ch.sumPhase, e.phases)
	} else {
		e.lockPhases(ch)
	}

	copy(ch.prevPhase, e.phases)
	ch.primed = true

	for k := 0; k <= half; k++ {
		e.spectrum[k] = complex(
			e.magnitudes[k]*math.Cos(ch.sumPhase[k]),
			e.magnitudes[k]*math.Sin(ch.sumPhase[k]),
		)
	}

	// Mirror for real-valued IFFT.
	e.spectrum[0] = complex(real(e.spectrum[0]), 0)

	e.spectrum[half] = complex(real(e.spectrum[half]), 0)
	for k := 1; k < half; k++ {
		v := e.spectrum[k]
		e.spectrum[e.frameSize-k] = complex(real(v), -imag(v))
	}

	err = e.plan.Inverse(e.timeFrame, e.spectrum)
	if err != nil {
		return fmt.Errorf("vocoder: inverse FFT failed: %w", err)
	}

	for i := range e.frame {
		e.frame[i] = real(e.timeFrame[i])
	}

	vecmath.MulBlockInPlace(e.frame, e.window)
	vecmath.AddBlockInPlace(ch.acc, e.frame)

	return nil
}

// lockPhases advances peak bins by their instantaneous frequency and keeps
// every other bin's analysis phase offset to its nearest peak.
func (e *Engine) lockPhases(ch *channelState) {
	half := e.frameSize / 2
	hop := float64(e.synthesisHop)

	e.peakBins = e.peakBins[:0]
	for k := 1; k < half; k++ {
		if e.magnitudes[k] >= e.magnitudes[k-1] && e.magnitudes[k] > e.magnitudes[k+1] {
			e.peakBins = append(e.peakBins, k)
		}
	}

	if len(e.peakBins) == 0 {
		for k := 0; k <= half; k++ {
			ch.sumPhase[k] += e.instFreqs[k] * hop
		}

		return
	}

	for _, pk := range e.peakBins {
		ch.sumPhase[pk] += e.instFreqs[pk] * hop
	}

	peakIdx := 0
	for k := 0; k <= half; k++ {
		for peakIdx+1 < len(e.peakBins) {
			if absInt(e.peakBins[peakIdx+1]-k) < absInt(e.peakBins[peakIdx]-k) {
				peakIdx++
			} else {
				break
			}
		}

		pk := e.peakBins[peakIdx]
		if k != pk {
			ch.sumPhase[k] = ch.sumPhase[pk] + (e.phases[k] - e.phases[pk])
		}
	}
}

func (e *Engine) buildState() error {
	plan, err := algofft.NewPlan64(e.frameSize)
	if err != nil {
		return fmt.Errorf("vocoder: failed to create FFT plan: %w", err)
	}

	e.plan = plan

	e.window = window.Generate(e.windowType, e.frameSize, window.WithPeriodic())
	if len(e.window) != e.frameSize {
		return fmt.Errorf("vocoder: window generation failed for size %d", e.frameSize)
	}

	norm, err := window.OverlapPowerSum(e.window, e.synthesisHop)
	if err != nil {
		return fmt.Errorf("vocoder: %w", err)
	}

	e.invNorm = make([]float64, e.synthesisHop)
	for i, s := range norm {
		if s > normFloor {
			e.invNorm[i] = 1 / s
		}
	}

	bins := e.frameSize/2 + 1

	e.omega = make([]float64, bins)
	for k := range bins {
		e.omega[k] = 2 * math.Pi * float64(k) / float64(e.frameSize)
	}

	e.chans = make([]channelState, e.channels)
	for c := range e.chans {
		e.chans[c] = channelState{
			prevPhase: make([]float64, bins),
			sumPhase:  make([]float64, bins),
			acc:       make([]float64, e.frameSize),
		}
	}

	e.frame = make([]float64, e.frameSize)
	e.spectrum = make([]complex128, e.frameSize)
	e.timeFrame = make([]complex128, e.frameSize)
	e.re = make([]float64, bins)
	e.im = make([]float64, bins)
	e.magnitudes = make([]float64, bins)
	e.phases = make([]float64, bins)
	e.instFreqs = make([]float64, bins)
	e.peakBins = make([]int, 0, bins)

	return nil
}

func frameSizeFor(sampleRate int) int {
	target := (sampleRate + frameRateDivisor - 1) / frameRateDivisor

	size := 256
	for size < target && size < maxFrameSize {
		size <<= 1
	}

	return size
}

func isExact(position, pitch float64) bool {
	return pitch == 1 && position == math.Trunc(position)
}

func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	return x - math.Pi
}

func isPowerOf2(v int) bool {
	return v > 0 && (v&(v-1)) == 0
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
