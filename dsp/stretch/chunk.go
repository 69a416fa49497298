package stretch

import "fmt"

// OutputChunk is a borrowed view over caller memory that SynthesiseGrain
// writes into. Channel n starts at Data[n*ChannelStride]; the capacity is
// ChannelStride frames per channel.
//
// FrameCount and Request describe the last synthesis only and are stale
// once the chunk is reused.
type OutputChunk struct {
	Data          []float64
	ChannelStride int

	// FrameCount is the number of valid frames per channel.
	FrameCount int
	// Request[0] is the request whose grain centre lines up with the first
	// frame of the chunk, Request[1] the one aligned with the frame after the
	// last. Before the first grain reaches the output the positions are
	// extrapolated backwards at the first grain's speed.
	Request [2]Request
}

// NewOutputChunk wraps data with the given channel stride. The stride is the
// capacity and must be positive and no larger than data.
func NewOutputChunk(data []float64, channelStride int) (*OutputChunk, error) {
	if channelStride <= 0 || len(data) < channelStride {
		return nil, fmt.Errorf("%w: output chunk needs capacity > 0, got stride %d over %d samples",
			ErrBufferSize, channelStride, len(data))
	}

	return &OutputChunk{Data: data, ChannelStride: channelStride}, nil
}

// Capacity returns the number of frames each channel can hold.
func (c *OutputChunk) Capacity() int { return c.ChannelStride }

// Channel returns the valid frames of channel n.
func (c *OutputChunk) Channel(n int) []float64 {
	start := n * c.ChannelStride
	return c.Data[start : start+c.FrameCount]
}
