package audiofile

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// DecodeFLAC reads a native FLAC stream.
func DecodeFLAC(r io.Reader) (*Clip, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	bits := int(stream.Info.BitsPerSample)

	if channels <= 0 || stream.Info.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidFile, channels, stream.Info.SampleRate)
	}

	if bits <= 0 || bits > 32 {
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bits)
	}

	scale := 1 / intScale(bits)

	out := make([][]float64, channels)
	if n := stream.Info.NSamples; n > 0 {
		for c := range out {
			out[c] = make([]float64, 0, n)
		}
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("parse FLAC frame: %w", err)
		}

		for c := range channels {
			for _, s := range frame.Subframes[c].Samples[:frame.BlockSize] {
				out[c] = append(out[c], float64(s)*scale)
			}
		}
	}

	return &Clip{SampleRate: int(stream.Info.SampleRate), Channels: out}, nil
}
