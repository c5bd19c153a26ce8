// Package engine maps analysis descriptors onto engine-facing configuration.
// The playback engine itself is an external collaborator; this package only
// produces the values it consumes.
package engine

import (
	"github.com/cwbudde/algo-patchfit/feature"
	"github.com/cwbudde/algo-patchfit/patch"
)

// wideChorusWet is applied when the sample is classified spectrally wide.
const wideChorusWet = 0.5

// Sink is the configuration surface an external playback engine exposes.
type Sink interface {
	Set(params patch.Params)
}

// Delta is the engine configuration derived from one descriptor. Only the
// fields a descriptor can speak to are present; everything else is left to
// the engine's current state.
type Delta struct {
	Release         float64 `json:"release"`
	ChorusWet       float64 `json:"chorus_wet"`
	HasChorus       bool    `json:"has_chorus"`
	LockedFrequency float64 `json:"locked_frequency"`
}

// Configure maps a descriptor onto engine configuration: the measured
// release drives the release envelope, a wide spectrum switches in a fixed
// chorus amount, and the detected pitch becomes the locked fundamental for
// spectral estimation. Deliberately simple; the optimizer refines the rest.
func Configure(d *feature.Descriptor) Delta {
	delta := Delta{
		Release:         d.DetectedRelease,
		LockedFrequency: d.PitchHz,
	}
	if d.IsWide {
		delta.ChorusWet = wideChorusWet
		delta.HasChorus = true
	}
	return delta
}

// Apply writes the delta onto a parameter set, seeding the starting point
// for a search. Chorus is untouched when the sample was not wide.
func (d Delta) Apply(p *patch.Params) {
	p.Release = patch.ReleaseRange.Clamp(d.Release)
	p.LockedFrequency = d.LockedFrequency
	if d.HasChorus {
		p.ChorusWet = patch.ChorusWetRange.Clamp(d.ChorusWet)
	}
}
