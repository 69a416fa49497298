package main

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/cwbudde/algo-stretch/internal/audiofile"
	"github.com/cwbudde/algo-stretch/internal/testutil"
)

func writePreset(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func writeInput(t *testing.T, sampleRate, channels, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "in.wav")
	clip := &audiofile.Clip{
		SampleRate: sampleRate,
		Channels:   testutil.PlanarSine(channels, 330, float64(sampleRate), 0.5, frames),
	}

	if err := audiofile.Save(path, clip, 16); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	return path
}

func TestParseArgsDefaults(t *testing.T) {
	inv, err := parseArgs([]string{"in.wav", "out.wav"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs() error: %v", err)
	}

	if inv.preset != DefaultPreset() {
		t.Fatalf("preset = %+v, want defaults", inv.preset)
	}

	if inv.input != "in.wav" || inv.output != "out.wav" {
		t.Fatalf("paths = %q, %q", inv.input, inv.output)
	}
}

func TestParseArgsFlagsOverridePreset(t *testing.T) {
	preset := writePreset(t, "speed: 0.5\npitch: 2\nblock_size: 256\nwindow: blackman\nbit_depth: 24\n")

	inv, err := parseArgs([]string{"-config", preset, "-speed", "1.25", "-log-format", "json", "a.flac", "b.wav"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs() error: %v", err)
	}

	p := inv.preset
	if p.Speed != 1.25 {
		t.Fatalf("Speed = %v, want flag value 1.25", p.Speed)
	}

	if p.Pitch != 2 || p.BlockSize != 256 || p.BitDepth != 24 || p.LogFormat != "json" {
		t.Fatalf("preset = %+v", p)
	}

	if wt, _ := p.WindowType(); wt != window.TypeBlackman {
		t.Fatalf("WindowType() = %v, want blackman", wt)
	}
}

func TestParseArgsRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing output", []string{"in.wav"}},
		{"zero speed", []string{"-speed", "0", "in.wav", "out.wav"}},
		{"speed above limit", []string{"-speed", "101", "in.wav", "out.wav"}},
		{"pitch beyond engine range", []string{"-pitch", "8", "in.wav", "out.wav"}},
		{"semitones beyond engine range", []string{"-semitones", "30", "in.wav", "out.wav"}},
		{"unknown window", []string{"-window", "kaiser", "in.wav", "out.wav"}},
		{"bad bit depth", []string{"-bits", "12", "in.wav", "out.wav"}},
		{"bad block", []string{"-block", "0", "in.wav", "out.wav"}},
		{"bad log level", []string{"-log-level", "loud", "in.wav", "out.wav"}},
		{"bad log format", []string{"-log-format", "xml", "in.wav", "out.wav"}},
		{"unknown flag", []string{"-tempo", "2", "in.wav", "out.wav"}},
		{"missing preset", []string{"-config", "/nonexistent/preset.yaml", "in.wav", "out.wav"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArgs(tt.args, io.Discard); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadPresetRejectsMalformedYAML(t *testing.T) {
	if _, err := LoadPreset(writePreset(t, "speed: [1, 2\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPitchRatio(t *testing.T) {
	p := DefaultPreset()
	p.Pitch = 1.5
	p.Semitones = -12

	if got := p.PitchRatio(); math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("PitchRatio() = %v, want 0.75", got)
	}
}

func TestRenderLength(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	clip := &audiofile.Clip{
		SampleRate: 22050,
		Channels:   testutil.PlanarSine(2, 220, 22050, 0.5, 10000),
	}

	for _, tt := range []struct {
		speed, pitch float64
		block        int
	}{
		{1, 1, 512},
		{0.75, 1, 1000},
		{1.5, 0.8, 300},
		{2, 1.26, 4096},
	} {
		out, err := render(clip, renderSettings{
			blockSize: tt.block,
			speed:     tt.speed,
			pitch:     tt.pitch,
			window:    window.TypeHann,
		}, logger)
		if err != nil {
			t.Fatalf("render(speed %v) error: %v", tt.speed, err)
		}

		want := int(math.Round(10000 / tt.speed))
		if len(out) != 2 || len(out[0]) != want || len(out[1]) != want {
			t.Fatalf("render(speed %v) = %d x %d frames, want 2 x %d", tt.speed, len(out), len(out[0]), want)
		}

		testutil.RequirePlanarFinite(t, out)
	}
}

func TestRenderUnityIsAligned(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	clip := &audiofile.Clip{
		SampleRate: 44100,
		Channels:   [][]float64{testutil.DeterministicNoise(8, 0.5, 8192)},
	}

	out, err := render(clip, renderSettings{blockSize: 1024, speed: 1, pitch: 1, window: window.TypeHann}, logger)
	if err != nil {
		t.Fatalf("render() error: %v", err)
	}

	// Interior frames come back unchanged and in place.
	testutil.RequireSliceNearlyEqual(t, out[0][1024:7168], clip.Channels[0][1024:7168], 1e-6)
}

func TestBlockAt(t *testing.T) {
	src := [][]float64{{1, 2, 3, 4, 5}}
	tail := [][]float64{make([]float64, 4)}

	if got := blockAt(src, tail, 0, 4); len(got[0]) != 4 || got[0][3] != 4 {
		t.Fatalf("blockAt(0) = %v", got)
	}

	got := blockAt(src, tail, 4, 4)
	testutil.RequireSliceNearlyEqual(t, got[0], []float64{5, 0, 0, 0}, 0)

	if got := blockAt(src, tail, 8, 4); got != nil {
		t.Fatalf("blockAt(past end) = %v, want nil", got)
	}
}

func TestRunEndToEnd(t *testing.T) {
	in := writeInput(t, 22050, 1, 22050)
	out := filepath.Join(t.TempDir(), "out.wav")

	var logs bytes.Buffer
	if code := run([]string{"-speed", "0.5", "-semitones", "-2", "-log-format", "json", in, out}, &logs); code != 0 {
		t.Fatalf("run() = %d, logs:\n%s", code, logs.String())
	}

	clip, err := audiofile.Load(out)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if clip.SampleRate != 22050 || clip.Frames() != 44100 {
		t.Fatalf("output = %d Hz, %d frames, want 22050 Hz, 44100 frames", clip.SampleRate, clip.Frames())
	}

	if rms := testutil.RMS(clip.Channels[0][4096:40000]); rms < 0.1 {
		t.Fatalf("output RMS = %v, want a sounding signal", rms)
	}

	if !strings.Contains(logs.String(), `"msg":"wrote output"`) {
		t.Fatalf("missing completion log, got:\n%s", logs.String())
	}
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()

	if code := run([]string{"only-one.wav"}, io.Discard); code != 2 {
		t.Fatalf("run(missing output) = %d, want 2", code)
	}

	var logs bytes.Buffer
	if code := run([]string{filepath.Join(dir, "missing.wav"), filepath.Join(dir, "out.wav")}, &logs); code != 1 {
		t.Fatalf("run(missing input) = %d, want 1", code)
	}

	if !strings.Contains(logs.String(), "stretch failed") {
		t.Fatalf("missing error log, got:\n%s", logs.String())
	}

	if code := run([]string{"-h"}, io.Discard); code != 0 {
		t.Fatalf("run(-h) = %d, want 0", code)
	}
}
