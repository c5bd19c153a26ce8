package anneal

import (
	"github.com/cwbudde/algo-patchfit/dsp"
	"github.com/cwbudde/algo-patchfit/patch"
)

// Target reduces a measured spectrum onto the spectral model's bin grid so
// Energy compares like against like. Each model bin takes the largest
// magnitude of the measured bins it covers (peak-preserving, so a partial
// keeps its amplitude regardless of the measurement's finer resolution),
// and the result is scaled to unit peak to match the model's amplitude
// range.
func Target(s *dsp.Spectrum) []float64 {
	if s == nil || len(s.Magnitudes) == 0 {
		return nil
	}
	binWidth := float64(s.SampleRate) / 2 / patch.ModelBins
	if binWidth <= 0 {
		return nil
	}

	out := make([]float64, patch.ModelBins)
	peak := 0.0
	for k, f := range s.Frequencies {
		bin := int(f / binWidth)
		if bin < 0 || bin >= patch.ModelBins {
			continue
		}
		if m := s.Magnitudes[k]; m > out[bin] {
			out[bin] = m
			if m > peak {
				peak = m
			}
		}
	}
	if peak <= 0 {
		return out
	}
	for i := range out {
		out[i] /= peak
	}
	return out
}
