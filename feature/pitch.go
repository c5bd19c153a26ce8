package feature

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-patchfit/dsp"
)

// Pitch detection searches this band only; anything outside is treated as
// rumble or overtone content.
const (
	pitchSearchLowHz  = 50.0
	pitchSearchHighHz = 2000.0
)

// detectPitch finds the dominant frequency in the pitch search band and
// refines it with 3-point parabolic interpolation around the peak bin.
func detectPitch(s *dsp.Spectrum) (float64, error) {
	peakBin := -1
	peakMag := 0.0
	for k, f := range s.Frequencies {
		if f <= pitchSearchLowHz || f >= pitchSearchHighHz {
			continue
		}
		if s.Magnitudes[k] > peakMag {
			peakMag = s.Magnitudes[k]
			peakBin = k
		}
	}
	if peakBin < 0 || peakMag < epsilon {
		return 0, fmt.Errorf("%w: no energy in pitch band", ErrDegenerateSpectrum)
	}

	// Peak at either edge: interpolation has no neighbors, use the raw bin.
	if peakBin == 0 || peakBin == len(s.Magnitudes)-1 {
		return s.Frequencies[peakBin], nil
	}

	yPrev := s.Magnitudes[peakBin-1]
	y0 := s.Magnitudes[peakBin]
	yNext := s.Magnitudes[peakBin+1]
	den := 2 * (yPrev - 2*y0 + yNext)
	if math.Abs(den) < epsilon {
		return s.Frequencies[peakBin], nil
	}
	offset := (yPrev - yNext) / den
	return s.Frequencies[peakBin] + offset*s.BinWidth(), nil
}

// octaveForFrequency maps a frequency onto its MIDI octave. Non-positive
// input falls back to octave 2.
func octaveForFrequency(freq float64) int {
	if freq <= 0 {
		return 2
	}
	note := 12*math.Log2(freq/440) + 69
	return int(math.Floor(note/12)) - 1
}
