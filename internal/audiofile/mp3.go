package audiofile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// mp3Channels is fixed: the decoder always emits interleaved 16-bit stereo.
const mp3Channels = 2

// DecodeMP3 reads an MPEG-1/2 Layer III stream.
func DecodeMP3(r io.Reader) (*Clip, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	samples := make([]int, len(raw)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}

	return &Clip{
		SampleRate: d.SampleRate(),
		Channels:   planarFromInts(samples, mp3Channels, 16),
	}, nil
}
