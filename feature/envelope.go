package feature

import (
	"math"
	"sort"
)

const (
	// Release measurement walks 10 ms RMS windows from the peak and times
	// the drop from -6 dB to -60 dB of peak.
	releaseWindowSeconds = 0.010
	releaseStartDB       = -6.0
	releaseEndDB         = -60.0

	releaseMinSeconds     = 0.01
	releaseMaxSeconds     = 5.0
	releaseDefaultSeconds = 0.5

	// 90th-percentile RMS over non-overlapping windows of this size.
	amplitudeWindowSize = 512
	amplitudePercentile = 0.9
	amplitudeDefault    = 0.5
)

// measureReleaseTime estimates how long the envelope takes to fall from
// -6 dB to -60 dB of the peak sample. Returns a default when either
// threshold is never crossed.
func measureReleaseTime(samples []float64, sampleRate int) float64 {
	peakIdx := 0
	peak := 0.0
	for i, v := range samples {
		if a := math.Abs(v); a > peak {
			peak = a
			peakIdx = i
		}
	}
	if peak < epsilon {
		return releaseDefaultSeconds
	}

	window := int(releaseWindowSeconds * float64(sampleRate))
	if window < 1 {
		window = 1
	}
	startLevel := peak * math.Pow(10, releaseStartDB/20)
	endLevel := peak * math.Pow(10, releaseEndDB/20)

	start6dB := -1
	end60dB := -1
	for pos := peakIdx; pos < len(samples); pos += window {
		end := pos + window
		if end > len(samples) {
			end = len(samples)
		}
		r := rms(samples[pos:end])
		if start6dB < 0 && r < startLevel {
			start6dB = pos
		}
		if r < endLevel {
			end60dB = pos
			break
		}
	}
	if start6dB < 0 || end60dB < 0 {
		return releaseDefaultSeconds
	}

	release := float64(end60dB-start6dB) / float64(sampleRate)
	if release < releaseMinSeconds {
		return releaseMinSeconds
	}
	if release > releaseMaxSeconds {
		return releaseMaxSeconds
	}
	return release
}

// percentileAmplitude returns the 90th-percentile RMS of consecutive
// non-overlapping windows across the whole buffer.
func percentileAmplitude(samples []float64) float64 {
	count := len(samples) / amplitudeWindowSize
	if count == 0 {
		return amplitudeDefault
	}
	values := make([]float64, count)
	for i := 0; i < count; i++ {
		start := i * amplitudeWindowSize
		values[i] = rms(samples[start : start+amplitudeWindowSize])
	}
	sort.Float64s(values)
	idx := int(amplitudePercentile * float64(count))
	if idx >= count {
		idx = count - 1
	}
	return values[idx]
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
