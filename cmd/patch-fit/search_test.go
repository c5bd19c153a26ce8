package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-patchfit/anneal"
	"github.com/cwbudde/algo-patchfit/feature"
	"github.com/cwbudde/algo-patchfit/patch"
)

func TestParamsFromNormalizedStaysInBounds(t *testing.T) {
	base := patch.NewDefaultParams()
	for _, pos := range [][]float64{
		{0, 0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1, 1},
		{-2, 3, 0.5, 0.25, 1.5, -0.1},
		{0.5}, // short vector: missing dims default to range minimum
	} {
		p := paramsFromNormalized(pos, base)
		checks := []struct {
			v float64
			r patch.Range
		}{
			{p.FilterFreq, patch.FilterFreqRange},
			{p.FilterQ, patch.FilterQRange},
			{p.Distortion, patch.DistortionRange},
			{p.Attack, patch.AttackRange},
			{p.Decay, patch.DecayRange},
			{p.Sustain, patch.SustainRange},
		}
		for _, c := range checks {
			if c.v < c.r.Min || c.v > c.r.Max {
				t.Fatalf("pos %v: %s = %v outside [%v, %v]", pos, c.r.Name, c.v, c.r.Min, c.r.Max)
			}
		}
	}
}

func TestParamsFromNormalizedPreservesBase(t *testing.T) {
	base := patch.NewDefaultParams()
	base.Oscillator = patch.Square
	base.Release = 2.5
	base.ChorusWet = 0.5
	base.LockedFrequency = 220

	p := paramsFromNormalized([]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, base)
	if p.Oscillator != patch.Square || p.Release != 2.5 || p.ChorusWet != 0.5 || p.LockedFrequency != 220 {
		t.Fatalf("base fields not preserved: %+v", p)
	}
}

func TestNewMayflyConfigRejectsUnknownVariant(t *testing.T) {
	if _, err := newMayflyConfig("simplex", 10, 6, 20); err == nil {
		t.Fatal("expected error for unknown variant")
	}
	cfg, err := newMayflyConfig("desma", 10, 6, 20)
	if err != nil {
		t.Fatalf("newMayflyConfig: %v", err)
	}
	if cfg.ProblemSize != 6 || cfg.MaxIterations != 20 || cfg.NPop != 10 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestWriteReport(t *testing.T) {
	desc := &feature.Descriptor{
		PitchHz:         440,
		DetectedOctave:  4,
		DetectedRelease: 0.5,
		Amplitude:       0.3,
		Duration:        1.2,
		SampleRate:      44100,
		IsWide:          true,
	}
	result := anneal.Result{
		Params: patch.NewDefaultParams(),
		Energy: 0.0123,
		Steps:  200,
	}
	path := filepath.Join(t.TempDir(), "sub", "report.json")
	if err := writeReport(path, "anneal", desc, result, 1.5); err != nil {
		t.Fatalf("writeReport: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var r report
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if r.Search != "anneal" || r.BestEnergy != 0.0123 || r.Evaluations != 200 {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.PitchHz != 440 || !r.IsWide {
		t.Fatalf("descriptor fields missing: %+v", r)
	}
}
