package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cwbudde/algo-stretch/dsp/grain"
	"github.com/cwbudde/algo-stretch/dsp/window"
	"gopkg.in/yaml.v3"
)

// maxRatio bounds speed and pitch at the command line.
const maxRatio = 100

// Preset holds every processing setting. It can be loaded from YAML and
// individual fields overridden by flags.
type Preset struct {
	Speed     float64 `yaml:"speed"`
	Pitch     float64 `yaml:"pitch"`
	Semitones float64 `yaml:"semitones"`
	BlockSize int     `yaml:"block_size"`
	Window    string  `yaml:"window"`
	HopAdjust int     `yaml:"hop_adjust"`
	BitDepth  int     `yaml:"bit_depth"`
	LogLevel  string  `yaml:"log_level"`
	LogFormat string  `yaml:"log_format"`
}

// DefaultPreset leaves the audio unchanged.
func DefaultPreset() Preset {
	return Preset{
		Speed:     1,
		Pitch:     1,
		BlockSize: 1024,
		Window:    window.TypeHann.String(),
		BitDepth:  16,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadPreset reads a YAML preset on top of the defaults. An empty path
// returns the defaults.
func LoadPreset(path string) (Preset, error) {
	p := DefaultPreset()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, fmt.Errorf("preset file not found: %w", err)
		}

		return p, fmt.Errorf("failed to read preset file: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse preset file: %w", err)
	}

	return p, nil
}

// PitchRatio combines the pitch ratio with the semitone offset.
func (p Preset) PitchRatio() float64 {
	return p.Pitch * math.Pow(2, p.Semitones/12)
}

// WindowType resolves the window name.
func (p Preset) WindowType() (window.Type, error) {
	return window.ParseType(p.Window)
}

// Validate checks every field.
func (p Preset) Validate() error {
	var problems []string

	if !(p.Speed > 0 && p.Speed <= maxRatio) {
		problems = append(problems, fmt.Sprintf("speed must be in (0, %d], got %v", maxRatio, p.Speed))
	}

	if !(p.Pitch > 0 && p.Pitch <= maxRatio) {
		problems = append(problems, fmt.Sprintf("pitch must be in (0, %d], got %v", maxRatio, p.Pitch))
	} else if r := p.PitchRatio(); !(r >= grain.MinPitch && r <= grain.MaxPitch) {
		problems = append(problems, fmt.Sprintf("effective pitch ratio must be in [%g, %g], got %.4f",
			grain.MinPitch, grain.MaxPitch, r))
	}

	if p.BlockSize <= 0 {
		problems = append(problems, fmt.Sprintf("block_size must be positive, got %d", p.BlockSize))
	}

	if _, err := p.WindowType(); err != nil {
		problems = append(problems, err.Error())
	}

	switch p.BitDepth {
	case 16, 24, 32:
	default:
		problems = append(problems, fmt.Sprintf("bit_depth must be 16, 24 or 32, got %d", p.BitDepth))
	}

	if _, err := parseLevel(p.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	switch p.LogFormat {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format must be text or json, got %q", p.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}

	return nil
}
