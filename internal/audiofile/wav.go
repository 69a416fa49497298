package audiofile

import (
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DecodeWAV reads a PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM WAV stream", ErrInvalidFile)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav samples: %w", err)
	}

	channels := buf.Format.NumChannels
	bits := int(d.BitDepth)

	if channels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidFile, channels, buf.Format.SampleRate)
	}

	if err := checkBitDepth(bits); err != nil {
		return nil, err
	}

	return &Clip{
		SampleRate: buf.Format.SampleRate,
		Channels:   planarFromInts(buf.Data, channels, bits),
	}, nil
}

// EncodeWAV writes clip as PCM WAV with bitDepth 16, 24 or 32. Samples are
// clipped to full scale.
func EncodeWAV(w io.WriteSeeker, clip *Clip, bitDepth int) error {
	if err := checkBitDepth(bitDepth); err != nil {
		return err
	}

	channels := len(clip.Channels)
	if channels == 0 || clip.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidFile, channels, clip.SampleRate)
	}

	frames := clip.Frames()
	interleaved := make([]float64, frames*channels)
	core.Interleave(interleaved, clip.Channels, frames)

	peak := intScale(bitDepth) - 1
	data := make([]int, len(interleaved))

	for i, v := range interleaved {
		data[i] = int(math.Round(core.Clamp(v, -1, 1) * peak))
	}

	enc := wav.NewEncoder(w, clip.SampleRate, bitDepth, channels, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: clip.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}

	return nil
}

func checkBitDepth(bits int) error {
	switch bits {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrBitDepth, bits)
	}
}
