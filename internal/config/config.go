// Package config loads stretch presets from YAML files.
//
// A preset names any subset of the stretch parameters:
//
//	ratio: 1.25
//	gap_ratio: 0.8
//	lower_freq: 70
//	upper_freq: 300
//	buffer_ms: 20
//	threshold_gap_db: -45
//	detection: fast        # auto, fast or normal
//	double_range: false
//	noise: blocks          # blocks or resample
//
// Keys left out keep their current value when the preset is applied.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/cwbudde/algo-stretch/dsp/period"
	"github.com/cwbudde/algo-stretch/dsp/stretch"
)

// Preset is a partial set of stretch parameters.
type Preset struct {
	Ratio          *float64 `yaml:"ratio"`
	GapRatio       *float64 `yaml:"gap_ratio"`
	LowerFreq      *float64 `yaml:"lower_freq"`
	UpperFreq      *float64 `yaml:"upper_freq"`
	BufferMs       *float64 `yaml:"buffer_ms"`
	ThresholdGapDB *float64 `yaml:"threshold_gap_db"`
	Detection      string   `yaml:"detection"`
	DoubleRange    *bool    `yaml:"double_range"`
	Noise          string   `yaml:"noise"`
}

// Load reads a preset file.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config: preset %s not found", path)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return p, nil
}

// Parse decodes a preset document. Unknown keys are rejected.
func Parse(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.UnmarshalWithOptions(data, &p, yaml.DisallowUnknownField()); err != nil {
		return nil, err
	}

	return &p, nil
}

// Apply copies every key set in the preset onto params. Parameters are not
// validated here; stretch.New does that.
func (p *Preset) Apply(params *stretch.Parameters) error {
	setFloat(&params.Ratio, p.Ratio)
	setFloat(&params.GapRatio, p.GapRatio)
	setFloat(&params.LowerFreqHz, p.LowerFreq)
	setFloat(&params.UpperFreqHz, p.UpperFreq)
	setFloat(&params.BufferMs, p.BufferMs)
	setFloat(&params.GapThresholdDB, p.ThresholdGapDB)

	if p.DoubleRange != nil {
		params.ExtendedRange = *p.DoubleRange
	}

	if p.Detection != "" {
		mode, err := period.ParseMode(p.Detection)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		params.Detection = mode
	}

	if p.Noise != "" {
		noise, err := stretch.ParseNoiseMode(p.Noise)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		params.Noise = noise
	}

	return nil
}

// Save writes params as a complete preset file.
func Save(path string, params stretch.Parameters) error {
	doc := Preset{
		Ratio:          &params.Ratio,
		GapRatio:       &params.GapRatio,
		LowerFreq:      &params.LowerFreqHz,
		UpperFreq:      &params.UpperFreqHz,
		BufferMs:       &params.BufferMs,
		ThresholdGapDB: &params.GapThresholdDB,
		Detection:      params.Detection.String(),
		DoubleRange:    &params.ExtendedRange,
		Noise:          params.Noise.String(),
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: marshal preset: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}

	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
