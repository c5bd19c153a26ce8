package feature

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-patchfit/dsp"
)

const (
	// maxInputBytes bounds the accepted buffer size (f32 samples).
	maxInputBytes = 10 << 20

	// silenceFloorDB rejects material with no usable signal.
	silenceFloorDB = -60.0

	// normalizeTargetDB is the peak level after normalization.
	normalizeTargetDB = -3.0

	pitchWindowSize   = 4096
	textureWindowSize = 1024

	earlyPosition = 0.2
	latePosition  = 0.8

	epsilon = 1e-10
)

// Analyze extracts a Descriptor from a decoded PCM buffer. Channel 0 carries
// the analysis; remaining channels only count toward the size bound. The
// input is never modified.
func Analyze(channels [][]float64, sampleRate int) (*Descriptor, error) {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidInput)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidInput, sampleRate)
	}
	totalSamples := 0
	for _, ch := range channels {
		totalSamples += len(ch)
	}
	if totalSamples*4 > maxInputBytes {
		return nil, fmt.Errorf("%w: %d samples exceed %d byte limit", ErrInvalidInput, totalSamples, maxInputBytes)
	}
	for _, v := range channels[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite sample", ErrDecode)
		}
	}

	// Silence check runs on the raw signal; normalization would hide it.
	raw := channels[0]
	if db := rmsDB(raw); db < silenceFloorDB {
		return nil, fmt.Errorf("%w: %.1f dBFS", ErrSilentAudio, db)
	}

	samples := make([]float64, len(raw))
	copy(samples, raw)
	NormalizeBuffer(samples, normalizeTargetDB)

	snapshot, err := takeDualSnapshot(samples, sampleRate)
	if err != nil {
		return nil, err
	}

	pitch, err := detectPitch(snapshot.EarlyPitch)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{
		PitchHz:         pitch,
		DetectedOctave:  octaveForFrequency(pitch),
		DetectedRelease: measureReleaseTime(samples, sampleRate),
		Amplitude:       percentileAmplitude(samples),
		Duration:        float64(len(samples)) / float64(sampleRate),
		SampleRate:      sampleRate,
		Snapshot:        *snapshot,
	}
	d.IsFM = classifyFM(snapshot.EarlyPitch, pitch)
	d.IsOrganic = classifyOrganic(snapshot.EarlyTexture)
	d.IsWide = classifyWide(snapshot.EarlyTexture)
	return d, nil
}

// NormalizeBuffer scales buf in place so the loudest sample reaches targetDB
// (dBFS). Silent buffers are left untouched.
func NormalizeBuffer(buf []float64, targetDB float64) {
	peak := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak < epsilon {
		return
	}
	gain := math.Pow(10, targetDB/20) / peak
	for i := range buf {
		buf[i] *= gain
	}
}

// takeDualSnapshot computes pitch and texture spectra around the early and
// late positions of the sample. Windows running past the buffer bounds are
// zero-padded.
func takeDualSnapshot(samples []float64, sampleRate int) (*DualSnapshot, error) {
	earlyPitch, err := windowedSpectrum(samples, sampleRate, earlyPosition, pitchWindowSize)
	if err != nil {
		return nil, err
	}
	earlyTexture, err := windowedSpectrum(samples, sampleRate, earlyPosition, textureWindowSize)
	if err != nil {
		return nil, err
	}
	latePitch, err := windowedSpectrum(samples, sampleRate, latePosition, pitchWindowSize)
	if err != nil {
		return nil, err
	}
	lateTexture, err := windowedSpectrum(samples, sampleRate, latePosition, textureWindowSize)
	if err != nil {
		return nil, err
	}
	return &DualSnapshot{
		EarlyPitch:   earlyPitch,
		EarlyTexture: earlyTexture,
		LatePitch:    latePitch,
		LateTexture:  lateTexture,
	}, nil
}

// windowedSpectrum transforms a window of the given size centered at the
// fractional position of the buffer.
func windowedSpectrum(samples []float64, sampleRate int, position float64, size int) (*dsp.Spectrum, error) {
	center := int(position * float64(len(samples)))
	start := center - size/2

	block := make([]float64, size)
	for i := 0; i < size; i++ {
		idx := start + i
		if idx >= 0 && idx < len(samples) {
			block[i] = samples[idx]
		}
	}
	return dsp.Transform(block, sampleRate)
}

// rmsDB returns the RMS level of buf in dBFS.
func rmsDB(buf []float64) float64 {
	if len(buf) == 0 {
		return -math.MaxFloat64
	}
	var sum float64
	for _, v := range buf {
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(buf)))
	return 20 * math.Log10(rms+epsilon)
}
