// Package preset persists fitted patches as JSON so results round-trip
// between the fit tools and an external playback engine.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-patchfit/patch"
)

// File is the JSON schema for patch presets. Pointer fields are partial
// overrides: absent fields keep their defaults.
type File struct {
	Oscillator      *string  `json:"oscillator"`
	FilterFreq      *float64 `json:"filter_freq"`
	FilterQ         *float64 `json:"filter_q"`
	Distortion      *float64 `json:"distortion"`
	Attack          *float64 `json:"attack"`
	Decay           *float64 `json:"decay"`
	Sustain         *float64 `json:"sustain"`
	Release         *float64 `json:"release"`
	ChorusWet       *float64 `json:"chorus_wet"`
	LockedFrequency *float64 `json:"locked_frequency"`
}

// LoadJSON loads a preset file and applies it on top of default params.
func LoadJSON(path string) (patch.Params, error) {
	p := patch.NewDefaultParams()
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return p, err
	}
	if err := ApplyFile(&p, &f); err != nil {
		return p, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset onto an existing parameter set,
// validating every present field against its declared range.
func ApplyFile(dst *patch.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.Oscillator != nil {
		osc, err := patch.ParseOscillatorType(*f.Oscillator)
		if err != nil {
			return err
		}
		dst.Oscillator = osc
	}

	bounded := []struct {
		val *float64
		dst *float64
		r   patch.Range
	}{
		{f.FilterFreq, &dst.FilterFreq, patch.FilterFreqRange},
		{f.FilterQ, &dst.FilterQ, patch.FilterQRange},
		{f.Distortion, &dst.Distortion, patch.DistortionRange},
		{f.Attack, &dst.Attack, patch.AttackRange},
		{f.Decay, &dst.Decay, patch.DecayRange},
		{f.Sustain, &dst.Sustain, patch.SustainRange},
		{f.Release, &dst.Release, patch.ReleaseRange},
		{f.ChorusWet, &dst.ChorusWet, patch.ChorusWetRange},
	}
	for _, b := range bounded {
		if b.val == nil {
			continue
		}
		if *b.val < b.r.Min || *b.val > b.r.Max {
			return fmt.Errorf("%s = %v outside [%v, %v]", b.r.Name, *b.val, b.r.Min, b.r.Max)
		}
		*b.dst = *b.val
	}

	if f.LockedFrequency != nil {
		if *f.LockedFrequency <= 0 {
			return fmt.Errorf("locked_frequency must be > 0")
		}
		dst.LockedFrequency = *f.LockedFrequency
	}
	return nil
}

// SaveJSON writes params as a complete preset file, creating parent
// directories as needed.
func SaveJSON(path string, p patch.Params) error {
	osc := p.Oscillator.String()
	f := File{
		Oscillator:      &osc,
		FilterFreq:      &p.FilterFreq,
		FilterQ:         &p.FilterQ,
		Distortion:      &p.Distortion,
		Attack:          &p.Attack,
		Decay:           &p.Decay,
		Sustain:         &p.Sustain,
		Release:         &p.Release,
		ChorusWet:       &p.ChorusWet,
		LockedFrequency: &p.LockedFrequency,
	}
	b, err := json.MarshalIndent(&f, "", "  ")
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
