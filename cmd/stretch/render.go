package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-stretch/dsp/stretch"
	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/cwbudde/algo-stretch/internal/audiofile"
)

// maxIdleBlocks bounds the number of consecutive flush blocks that may
// return no output before rendering gives up.
const maxIdleBlocks = 64

type renderSettings struct {
	blockSize int
	speed     float64
	pitch     float64
	window    window.Type
	hopAdjust int
}

// render streams clip through a Stream block by block, the way a real-time
// caller would. The stream's latency is trimmed from the start and the tail
// is flushed with silent blocks, so the result holds round(frames/speed)
// frames aligned with the input.
func render(clip *audiofile.Clip, rs renderSettings, logger *slog.Logger) ([][]float64, error) {
	channels := len(clip.Channels)
	frames := clip.Frames()

	s, err := stretch.NewStream(clip.SampleRate, channels, rs.blockSize,
		stretch.WithWindow(rs.window),
		stretch.WithLog2SynthesisHopAdjust(rs.hopAdjust),
	)
	if err != nil {
		return nil, err
	}

	want := int(math.Round(float64(frames) / rs.speed))
	outLen := float64(rs.blockSize) / rs.speed

	scratch := make([][]float64, channels)
	tail := make([][]float64, channels)
	result := make([][]float64, channels)

	for c := range channels {
		scratch[c] = make([]float64, int(math.Ceil(outLen)))
		tail[c] = make([]float64, rs.blockSize)
		result[c] = make([]float64, 0, want)
	}

	skip := -1
	idle := 0

	for pos := 0; len(result[0]) < want; pos += rs.blockSize {
		in := blockAt(clip.Channels, tail, pos, rs.blockSize)

		n, err := s.Process(in, scratch, rs.blockSize, outLen, rs.pitch)
		if err != nil {
			return nil, fmt.Errorf("process block at frame %d: %w", pos, err)
		}

		if skip < 0 {
			skip = int(math.Round(s.Latency() / rs.speed))
			logger.Debug("stream primed",
				slog.Float64("latency_input_frames", s.Latency()),
				slog.Int("skipped_output_frames", skip),
			)
		}

		start := min(skip, n)
		skip -= start

		for c := range channels {
			result[c] = append(result[c], scratch[c][start:n]...)
		}

		if n == 0 && pos >= frames {
			idle++
			if idle > maxIdleBlocks {
				return nil, fmt.Errorf("stream stalled after %d output frames", len(result[0]))
			}
		} else {
			idle = 0
		}
	}

	for c := range result {
		result[c] = result[c][:want]
	}

	logger.Debug("rendered",
		slog.Int("input_frames", frames),
		slog.Int("output_frames", want),
		slog.Int("input_position", s.InputPosition()),
		slog.Float64("output_position", s.OutputPosition()),
	)

	return result, nil
}

// blockAt returns the block of src starting at pos. A block running past the
// end is copied into tail and zero-padded; a block wholly past the end is
// nil, which the stream treats as silence.
func blockAt(src, tail [][]float64, pos, size int) [][]float64 {
	frames := 0
	if len(src) > 0 {
		frames = len(src[0])
	}

	switch {
	case pos+size <= frames:
		block := make([][]float64, len(src))
		for c := range src {
			block[c] = src[c][pos : pos+size]
		}

		return block
	case pos < frames:
		for c := range src {
			n := copy(tail[c], src[c][pos:])
			clear(tail[c][n:])
		}

		return tail
	default:
		return nil
	}
}
