// Package dsp provides the windowed spectral transform used by the feature
// extractor and the analysis tools.
package dsp

import (
	"fmt"
	"math"
)

// Spectrum holds the non-redundant half of a real-input FFT.
type Spectrum struct {
	Magnitudes  []float64 `json:"magnitudes"`
	Frequencies []float64 `json:"frequencies"`
	SampleRate  int       `json:"sample_rate"`
	FFTSize     int       `json:"fft_size"`
}

// BinWidth returns the frequency spacing between adjacent bins in Hz.
func (s *Spectrum) BinWidth() float64 {
	if s.FFTSize == 0 {
		return 0
	}
	return float64(s.SampleRate) / float64(s.FFTSize)
}

// PeakMagnitude returns the largest magnitude in the spectrum.
func (s *Spectrum) PeakMagnitude() float64 {
	peak := 0.0
	for _, m := range s.Magnitudes {
		if m > peak {
			peak = m
		}
	}
	return peak
}

// Transform computes a Hann-windowed magnitude spectrum of block.
// The block length must be a power of two; callers zero-pad short
// slices to the analysis window length before calling. Only bins
// [0, N/2) are returned.
func Transform(block []float64, sampleRate int) (*Spectrum, error) {
	n := len(block)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("block length %d is not a power of two", n)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	re := make([]float64, n)
	im := make([]float64, n)
	for i, v := range block {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
		re[i] = v * w
	}

	fftInPlace(re, im)

	half := n / 2
	s := &Spectrum{
		Magnitudes:  make([]float64, half),
		Frequencies: make([]float64, half),
		SampleRate:  sampleRate,
		FFTSize:     n,
	}
	binWidth := float64(sampleRate) / float64(n)
	for k := 0; k < half; k++ {
		s.Magnitudes[k] = math.Sqrt(re[k]*re[k] + im[k]*im[k])
		s.Frequencies[k] = float64(k) * binWidth
	}
	return s, nil
}
