package grain

const (
	// MinPitch and MaxPitch bound the pitch ratio a grain may request.
	// MaxPitch also bounds the longest input span an engine reports.
	MinPitch = 0.25
	MaxPitch = 4.0
)

// Chunk is a half-open span [Begin, End) of absolute source frames.
// Consecutive chunks usually overlap and are centred on the grain position.
type Chunk struct {
	Begin int
	End   int
}

// Len returns the number of frames in the span, or 0 for an inverted span.
func (c Chunk) Len() int {
	if c.End <= c.Begin {
		return 0
	}

	return c.End - c.Begin
}

// IsEmpty reports whether the span holds no frames.
func (c Chunk) IsEmpty() bool { return c.Len() == 0 }

// Contains reports whether frame lies inside the span.
func (c Chunk) Contains(frame int) bool { return frame >= c.Begin && frame < c.End }

// Input describes one analysis grain handed to an Engine.
//
// Data holds one span per channel; channel n starts at Data[n*ChannelStride]
// and its first frame is source frame Chunk.Begin. The first MuteHead and the
// last MuteTail frames of the chunk are silence and are never read, so Data
// only has to cover Chunk.Len()-MuteTail frames per channel. A nil Data is a
// fully muted grain.
type Input struct {
	Chunk         Chunk
	Data          []float64
	ChannelStride int
	MuteHead      int
	MuteTail      int

	// Position is the grain centre in source frames.
	Position float64
	// Pitch is the frequency multiplier for this grain.
	Pitch float64
	// Hop is the source distance from the previous analysed grain. A value
	// <= 0 means there is no usable previous grain and phase tracking
	// restarts.
	Hop float64
	// Silent marks a flush grain: nothing is analysed, pending output drains.
	Silent bool
}

// Engine is the transform behind a Stretcher. It owns all per-channel
// analysis and synthesis state. Implementations are not safe for concurrent
// use.
type Engine interface {
	// Channels returns the channel count the engine was built for.
	Channels() int
	// MaxInputFrameCount bounds Chunk.Len() over all legal requests.
	MaxInputFrameCount() int
	// SynthesisHop is the number of output frames produced per grain.
	SynthesisHop() int
	// Latency is the number of output frames between the start of a grain's
	// output and the frame aligned with that grain's centre.
	Latency() int
	// Specify returns the source span needed for a grain at position.
	Specify(position, pitch float64) Chunk
	// Analyse consumes one grain.
	Analyse(in Input) error
	// Synthesise writes up to capacity frames of output for the last grain
	// into data (channel n at data[n*channelStride]) and returns the count.
	Synthesise(data []float64, channelStride, capacity int) int
	// Flushed reports whether all overlap-add output has been emitted.
	Flushed() bool
	// Reset discards all analysis and synthesis state.
	Reset()
}

// Factory constructs an Engine for a sample rate and channel count.
type Factory func(sampleRate, channels int) (Engine, error)
