// Package feature extracts timbral descriptors from a decoded PCM sample:
// pitch, octave, decay time, amplitude, and a set of boolean gatekeeper
// classifications used by callers to pick a synthesis strategy.
package feature

import (
	"errors"

	"github.com/cwbudde/algo-patchfit/dsp"
)

// Validation failures surfaced by Analyze.
var (
	ErrInvalidInput       = errors.New("invalid input buffer")
	ErrSilentAudio        = errors.New("audio below silence threshold")
	ErrDecode             = errors.New("buffer is not valid PCM")
	ErrDegenerateSpectrum = errors.New("degenerate spectrum")
)

// DualSnapshot holds spectra taken at two temporal positions of the sample.
// The pitch spectra use a wide window for frequency resolution; the texture
// spectra use a narrow window for shape metrics.
type DualSnapshot struct {
	EarlyPitch   *dsp.Spectrum `json:"early_pitch"`
	EarlyTexture *dsp.Spectrum `json:"early_texture"`
	LatePitch    *dsp.Spectrum `json:"late_pitch"`
	LateTexture  *dsp.Spectrum `json:"late_texture"`
}

// Descriptor is the result of one sample analysis.
type Descriptor struct {
	PitchHz         float64 `json:"pitch_hz"`
	DetectedOctave  int     `json:"detected_octave"`
	DetectedRelease float64 `json:"detected_release"`
	Amplitude       float64 `json:"amplitude"`
	Duration        float64 `json:"duration"`
	SampleRate      int     `json:"sample_rate"`

	IsFM      bool `json:"is_fm"`
	IsOrganic bool `json:"is_organic"`
	IsWide    bool `json:"is_wide"`

	Snapshot DualSnapshot `json:"snapshot"`
}
