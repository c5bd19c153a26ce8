package patch

// ModelBins is the resolution of the estimated spectrum.
const ModelBins = 128

// modelHarmonics is the highest harmonic accumulated by the estimator.
const modelHarmonics = 16

// EstimateSpectrum predicts the magnitude spectrum the patch would produce
// at the given fundamental, on ModelBins linear bins spanning [0, sampleRate/2).
// It accumulates harmonics 1..16 under the oscillator's amplitude law, applies
// a one-pole-style lowpass rolloff above the filter cutoff, a resonance boost
// within +-10% of the cutoff, and a flat distortion boost. No audio is
// rendered; each call is O(16).
func EstimateSpectrum(p Params, fundamentalHz float64, sampleRate float64) []float64 {
	bins := make([]float64, ModelBins)
	if fundamentalHz <= 0 || sampleRate <= 0 {
		return bins
	}
	binWidth := sampleRate / 2 / ModelBins

	for h := 1; h <= modelHarmonics; h++ {
		amp := p.Oscillator.harmonicAmplitude(h)
		if amp == 0 {
			continue
		}
		freq := fundamentalHz * float64(h)

		// Lowpass rolloff: unchanged in the passband, (fc/f)^2 above cutoff.
		if freq > p.FilterFreq && p.FilterFreq > 0 {
			ratio := p.FilterFreq / freq
			amp *= ratio * ratio
		}

		// Resonance boost near the cutoff.
		if p.FilterFreq > 0 && freq > p.FilterFreq*0.9 && freq < p.FilterFreq*1.1 {
			amp *= 1 + p.FilterQ*0.5
		}

		bin := int(freq / binWidth)
		if bin < 0 || bin >= ModelBins {
			continue
		}
		bins[bin] += amp
	}

	if p.Distortion > 0 {
		for i := range bins {
			bins[i] += bins[i] * p.Distortion * 0.3
		}
	}
	return bins
}
