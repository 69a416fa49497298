package audiofile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat reports a file extension with no decoder.
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	// ErrInvalidFile reports data the decoder could not make sense of.
	ErrInvalidFile = errors.New("audiofile: invalid file")
	// ErrBitDepth reports an unsupported PCM bit depth.
	ErrBitDepth = errors.New("audiofile: unsupported bit depth")
)

// Clip is a decoded piece of audio in planar layout.
type Clip struct {
	SampleRate int
	Channels   [][]float64
}

// Frames returns the number of frames per channel.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}

	return len(c.Channels[0])
}

// Format identifies a container/codec by its usual extension.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "wav", "wave":
		return FormatWAV, nil
	case "mp3":
		return FormatMP3, nil
	case "flac":
		return FormatFLAC, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load decodes the file at path.
func Load(path string) (*Clip, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open %s: %w", path, err)
	}
	defer f.Close()

	var clip *Clip

	switch format {
	case FormatWAV:
		clip, err = DecodeWAV(f)
	case FormatMP3:
		clip, err = DecodeMP3(f)
	case FormatFLAC:
		clip, err = DecodeFLAC(f)
	}

	if err != nil {
		return nil, fmt.Errorf("audiofile: decode %s: %w", path, err)
	}

	return clip, nil
}

// Save writes clip to path as PCM WAV with the given bit depth.
func Save(path string, clip *Clip, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: create %s: %w", path, err)
	}

	if err := EncodeWAV(f, clip, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("audiofile: encode %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("audiofile: close %s: %w", path, err)
	}

	return nil
}

// intScale returns the full-scale magnitude of a signed bits-wide sample.
func intScale(bits int) float64 {
	return float64(int64(1) << (bits - 1))
}

// planarFromInts converts interleaved integer samples to planar floats.
func planarFromInts(data []int, channels, bits int) [][]float64 {
	frames := len(data) / channels
	scale := 1 / intScale(bits)

	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, frames)
	}

	for i := range frames {
		for c := range channels {
			out[c][i] = float64(data[i*channels+c]) * scale
		}
	}

	return out
}
