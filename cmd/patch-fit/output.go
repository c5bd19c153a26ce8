package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-patchfit/anneal"
	"github.com/cwbudde/algo-patchfit/feature"
	"github.com/cwbudde/algo-patchfit/patch"
)

type report struct {
	Search      string  `json:"search"`
	Evaluations int     `json:"evaluations"`
	ElapsedS    float64 `json:"elapsed_s"`
	BestEnergy  float64 `json:"best_energy"`

	PitchHz         float64 `json:"pitch_hz"`
	DetectedOctave  int     `json:"detected_octave"`
	DetectedRelease float64 `json:"detected_release"`
	Amplitude       float64 `json:"amplitude"`
	Duration        float64 `json:"duration"`
	SampleRate      int     `json:"sample_rate"`
	IsFM            bool    `json:"is_fm"`
	IsOrganic       bool    `json:"is_organic"`
	IsWide          bool    `json:"is_wide"`

	Params patch.Params `json:"params"`
}

func writeReport(path, search string, desc *feature.Descriptor, result anneal.Result, elapsed float64) error {
	r := report{
		Search:          search,
		Evaluations:     result.Steps,
		ElapsedS:        elapsed,
		BestEnergy:      result.Energy,
		PitchHz:         desc.PitchHz,
		DetectedOctave:  desc.DetectedOctave,
		DetectedRelease: desc.DetectedRelease,
		Amplitude:       desc.Amplitude,
		Duration:        desc.Duration,
		SampleRate:      desc.SampleRate,
		IsFM:            desc.IsFM,
		IsOrganic:       desc.IsOrganic,
		IsWide:          desc.IsWide,
		Params:          result.Params,
	}
	b, err := json.MarshalIndent(&r, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
