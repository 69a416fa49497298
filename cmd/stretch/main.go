// Command stretch changes the speed and pitch of an audio file.
//
// Usage:
//
//	stretch [flags] input.{wav,mp3,flac} output.wav
//
// Settings come from the defaults, then an optional YAML preset (-config),
// then flags given explicitly on the command line.
//
// Examples:
//
//	stretch -speed 0.75 in.wav slow.wav
//	stretch -semitones 3 in.flac up.wav
//	stretch -config preset.yaml -bits 24 in.mp3 out.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/algo-stretch/internal/audiofile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

type invocation struct {
	preset Preset
	input  string
	output string
}

func run(args []string, stderr io.Writer) int {
	inv, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	logger, err := newLogger(stderr, inv.preset.LogLevel, inv.preset.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if err := stretchFile(inv, logger); err != nil {
		logger.Error("stretch failed", slog.String("error", err.Error()))
		return 1
	}

	return 0
}

func parseArgs(args []string, stderr io.Writer) (invocation, error) {
	fs := flag.NewFlagSet("stretch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := DefaultPreset()
	config := fs.String("config", "", "YAML preset file")
	speed := fs.Float64("speed", def.Speed, "playback speed ratio, (0, 100]")
	pitch := fs.Float64("pitch", def.Pitch, "pitch ratio, (0, 100]")
	semitones := fs.Float64("semitones", def.Semitones, "pitch offset in semitones, combined with -pitch")
	block := fs.Int("block", def.BlockSize, "input frames per processing block")
	win := fs.String("window", def.Window, "analysis window: hann, hamming, blackman, blackman-harris, tukey")
	hopAdjust := fs.Int("hop-adjust", def.HopAdjust, "log2 synthesis hop adjustment, -2..0")
	bits := fs.Int("bits", def.BitDepth, "output bit depth: 16, 24 or 32")
	logLevel := fs.String("log-level", def.LogLevel, "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", def.LogFormat, "log format: text or json")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: stretch [flags] input.{wav,mp3,flac} output.wav\n\n")
		fmt.Fprintf(stderr, "Changes the speed and pitch of an audio file independently.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return invocation{}, err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return invocation{}, fmt.Errorf("expected input and output paths, got %d arguments", fs.NArg())
	}

	p, err := LoadPreset(*config)
	if err != nil {
		return invocation{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "speed":
			p.Speed = *speed
		case "pitch":
			p.Pitch = *pitch
		case "semitones":
			p.Semitones = *semitones
		case "block":
			p.BlockSize = *block
		case "window":
			p.Window = *win
		case "hop-adjust":
			p.HopAdjust = *hopAdjust
		case "bits":
			p.BitDepth = *bits
		case "log-level":
			p.LogLevel = *logLevel
		case "log-format":
			p.LogFormat = *logFormat
		}
	})

	if err := p.Validate(); err != nil {
		return invocation{}, err
	}

	return invocation{preset: p, input: fs.Arg(0), output: fs.Arg(1)}, nil
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return level, fmt.Errorf("unknown log level %q", name)
	}

	return level, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func stretchFile(inv invocation, logger *slog.Logger) error {
	p := inv.preset
	started := time.Now()

	clip, err := audiofile.Load(inv.input)
	if err != nil {
		return err
	}

	logger.Info("loaded input",
		slog.String("path", inv.input),
		slog.Int("sample_rate", clip.SampleRate),
		slog.Int("channels", len(clip.Channels)),
		slog.Int("frames", clip.Frames()),
	)

	wt, err := p.WindowType()
	if err != nil {
		return err
	}

	out, err := render(clip, renderSettings{
		blockSize: p.BlockSize,
		speed:     p.Speed,
		pitch:     p.PitchRatio(),
		window:    wt,
		hopAdjust: p.HopAdjust,
	}, logger)
	if err != nil {
		return err
	}

	result := &audiofile.Clip{SampleRate: clip.SampleRate, Channels: out}
	if err := audiofile.Save(inv.output, result, p.BitDepth); err != nil {
		return err
	}

	logger.Info("wrote output",
		slog.String("path", inv.output),
		slog.Int("frames", result.Frames()),
		slog.Int("bit_depth", p.BitDepth),
		slog.Duration("elapsed", time.Since(started)),
	)

	return nil
}
