// Package patch defines the synthesizer parameter set and the closed-form
// spectral model used to score candidate patches without rendering audio.
package patch

import "fmt"

// OscillatorType selects the harmonic amplitude law of the modeled oscillator.
type OscillatorType int

const (
	Sawtooth OscillatorType = iota
	Square
	Triangle
	Other
)

func (o OscillatorType) String() string {
	switch o {
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Other:
		return "other"
	}
	return fmt.Sprintf("OscillatorType(%d)", int(o))
}

// ParseOscillatorType maps a waveform name onto the closed enumeration.
func ParseOscillatorType(name string) (OscillatorType, error) {
	switch name {
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "square":
		return Square, nil
	case "triangle":
		return Triangle, nil
	case "other", "sine":
		return Other, nil
	}
	return Other, fmt.Errorf("unknown oscillator type %q", name)
}

// harmonicAmplitude returns the relative amplitude of harmonic h (1-based)
// for this oscillator type.
func (o OscillatorType) harmonicAmplitude(h int) float64 {
	switch o {
	case Sawtooth:
		return 1.0 / float64(h)
	case Square:
		if h%2 == 1 {
			return 1.0 / float64(h)
		}
		return 0
	case Triangle:
		if h%2 == 1 {
			return 1.0 / float64(h*h)
		}
		return 0
	case Other:
		if h == 1 {
			return 1.0
		}
		return 0
	}
	return 0
}

// Params holds one synthesizer patch.
type Params struct {
	Oscillator OscillatorType `json:"oscillator"`
	FilterFreq float64        `json:"filter_freq"`
	FilterQ    float64        `json:"filter_q"`
	Distortion float64        `json:"distortion"`
	Attack     float64        `json:"attack"`
	Decay      float64        `json:"decay"`
	Sustain    float64        `json:"sustain"`
	Release    float64        `json:"release"`
	ChorusWet  float64        `json:"chorus_wet"`

	// LockedFrequency is the fundamental used for spectral estimation.
	// It is set by the bridge and never optimized.
	LockedFrequency float64 `json:"locked_frequency"`
}

// Range bounds one scalar parameter.
type Range struct {
	Name string
	Min  float64
	Max  float64
}

// Declared parameter bounds. The first six are the knobs the optimizer may
// mutate; release and chorus wet belong to the bridge.
var (
	FilterFreqRange = Range{Name: "filter_freq", Min: 200, Max: 8000}
	FilterQRange    = Range{Name: "filter_q", Min: 0.5, Max: 10}
	DistortionRange = Range{Name: "distortion", Min: 0, Max: 0.8}
	AttackRange     = Range{Name: "attack", Min: 0.001, Max: 0.5}
	DecayRange      = Range{Name: "decay", Min: 0.01, Max: 1}
	SustainRange    = Range{Name: "sustain", Min: 0.1, Max: 1}
	ReleaseRange    = Range{Name: "release", Min: 0.01, Max: 5}
	ChorusWetRange  = Range{Name: "chorus_wet", Min: 0, Max: 1}
)

// Clamp limits v to the range bounds.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Span returns the width of the range.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// NewDefaultParams creates a neutral starting patch.
func NewDefaultParams() Params {
	return Params{
		Oscillator:      Sawtooth,
		FilterFreq:      2000,
		FilterQ:         1,
		Distortion:      0,
		Attack:          0.01,
		Decay:           0.2,
		Sustain:         0.7,
		Release:         0.3,
		ChorusWet:       0,
		LockedFrequency: 440,
	}
}

// Clamp forces every bounded field into its declared range.
func (p Params) Clamp() Params {
	p.FilterFreq = FilterFreqRange.Clamp(p.FilterFreq)
	p.FilterQ = FilterQRange.Clamp(p.FilterQ)
	p.Distortion = DistortionRange.Clamp(p.Distortion)
	p.Attack = AttackRange.Clamp(p.Attack)
	p.Decay = DecayRange.Clamp(p.Decay)
	p.Sustain = SustainRange.Clamp(p.Sustain)
	p.Release = ReleaseRange.Clamp(p.Release)
	p.ChorusWet = ChorusWetRange.Clamp(p.ChorusWet)
	return p
}
