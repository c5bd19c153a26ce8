package feature

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-patchfit/dsp"
)

// Gatekeeper thresholds. Empirically tuned; treat as adjustable constants,
// not physical ones.
const (
	fmHarmonicLow       = 2
	fmHarmonicHigh      = 8
	fmHarmonicTolHz     = 20.0
	fmMagnitudeFraction = 0.1
	fmMinHarmonics      = 4

	organicFlatnessThreshold = 0.1
	wideSpreadThresholdHz    = 500.0
)

// classifyFM reports whether the spectrum looks FM-like: at least four of
// the integer harmonics 2..8 of the fundamental carry significant energy.
func classifyFM(s *dsp.Spectrum, fundamental float64) bool {
	if fundamental <= 0 {
		return false
	}
	threshold := s.PeakMagnitude() * fmMagnitudeFraction
	if threshold < epsilon {
		return false
	}
	count := 0
	for h := fmHarmonicLow; h <= fmHarmonicHigh; h++ {
		target := fundamental * float64(h)
		if harmonicPresent(s, target, threshold) {
			count++
		}
	}
	return count >= fmMinHarmonics
}

func harmonicPresent(s *dsp.Spectrum, target, threshold float64) bool {
	for k, f := range s.Frequencies {
		if f < target-fmHarmonicTolHz {
			continue
		}
		if f > target+fmHarmonicTolHz {
			return false
		}
		if s.Magnitudes[k] >= threshold {
			return true
		}
	}
	return false
}

// classifyOrganic reports whether the spectrum is noise-like: spectral
// flatness (geometric over arithmetic mean) above the organic threshold.
func classifyOrganic(s *dsp.Spectrum) bool {
	if len(s.Magnitudes) == 0 {
		return false
	}
	var logSum float64
	for _, m := range s.Magnitudes {
		logSum += math.Log(m + epsilon)
	}
	geoMean := math.Exp(logSum / float64(len(s.Magnitudes)))
	ariMean := stat.Mean(s.Magnitudes, nil)
	flatness := geoMean / (ariMean + epsilon)
	return flatness > organicFlatnessThreshold
}

// classifyWide reports whether the spectral spread (magnitude-weighted
// standard deviation of frequency around the centroid) exceeds the wide
// threshold.
func classifyWide(s *dsp.Spectrum) bool {
	var magSum float64
	for _, m := range s.Magnitudes {
		magSum += m
	}
	if magSum < epsilon {
		return false
	}
	centroid := stat.Mean(s.Frequencies, s.Magnitudes)
	spread := math.Sqrt(stat.MomentAbout(2, s.Frequencies, centroid, s.Magnitudes))
	return spread > wideSpreadThresholdHz
}
