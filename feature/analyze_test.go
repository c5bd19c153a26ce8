package feature

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const testRate = 44100

func makeSine(freq, amplitude, durationSec float64) []float64 {
	n := int(durationSec * testRate)
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	return out
}

func addPartial(buf []float64, freq, amplitude float64) {
	for i := range buf {
		buf[i] += amplitude * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
}

func makeNoise(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

func TestAnalyzeDetects440HzSine(t *testing.T) {
	buf := makeSine(440, 0.8, 1.0)
	d, err := Analyze([][]float64{buf}, testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if math.Abs(d.PitchHz-440) > 2 {
		t.Fatalf("pitch %.3f Hz, want 440 +- 2", d.PitchHz)
	}
	if d.DetectedOctave != 4 {
		t.Fatalf("octave %d, want 4", d.DetectedOctave)
	}
	if d.SampleRate != testRate {
		t.Fatalf("sample rate %d, want %d", d.SampleRate, testRate)
	}
	if math.Abs(d.Duration-1.0) > 1e-6 {
		t.Fatalf("duration %.6f, want 1.0", d.Duration)
	}
	if d.IsOrganic {
		t.Fatal("pure sine classified organic")
	}
	if d.IsWide {
		t.Fatal("pure sine classified wide")
	}
}

func TestAnalyzeRejectsSilence(t *testing.T) {
	_, err := Analyze([][]float64{make([]float64, testRate)}, testRate)
	if !errors.Is(err, ErrSilentAudio) {
		t.Fatalf("expected ErrSilentAudio, got %v", err)
	}

	quiet := makeSine(440, 0.0005, 0.5) // RMS well below -60 dBFS
	_, err = Analyze([][]float64{quiet}, testRate)
	if !errors.Is(err, ErrSilentAudio) {
		t.Fatalf("expected ErrSilentAudio for quiet signal, got %v", err)
	}
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	if _, err := Analyze(nil, testRate); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil channels: got %v", err)
	}
	if _, err := Analyze([][]float64{{}}, testRate); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty channel: got %v", err)
	}
	if _, err := Analyze([][]float64{{0.1}}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero sample rate: got %v", err)
	}

	oversized := make([]float64, 3<<20) // 12 MiB of f32 samples
	if _, err := Analyze([][]float64{oversized}, testRate); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("oversized buffer: got %v", err)
	}
}

func TestAnalyzeRejectsNonFiniteSamples(t *testing.T) {
	buf := makeSine(440, 0.8, 0.2)
	buf[100] = math.NaN()
	if _, err := Analyze([][]float64{buf}, testRate); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	buf[100] = math.Inf(1)
	if _, err := Analyze([][]float64{buf}, testRate); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for Inf, got %v", err)
	}
}

func TestAnalyzeShortBufferZeroPads(t *testing.T) {
	// Shorter than one pitch window; snapshot windows must zero-pad.
	buf := makeSine(440, 0.8, 2000.0/testRate)
	d, err := Analyze([][]float64{buf}, testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if math.Abs(d.PitchHz-440) > 12 {
		t.Fatalf("pitch %.3f Hz too far from 440 for short buffer", d.PitchHz)
	}
}

func TestNormalizeBufferReachesTargetPeak(t *testing.T) {
	buf := makeSine(330, 0.1, 0.25)
	NormalizeBuffer(buf, -3)
	peak := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	want := math.Pow(10, -3.0/20)
	if math.Abs(peak-want) > 1e-9 {
		t.Fatalf("peak %.9f, want %.9f", peak, want)
	}

	silent := make([]float64, 128)
	NormalizeBuffer(silent, -3)
	for i, v := range silent {
		if v != 0 {
			t.Fatalf("silent buffer modified at %d: %v", i, v)
		}
	}
}

func TestOctaveForFrequency(t *testing.T) {
	cases := []struct {
		freq float64
		want int
	}{
		{440, 4},
		{261.63, 4}, // middle C
		{110, 2},
		{1760, 6},
		{0, 2},
		{-5, 2},
	}
	for _, c := range cases {
		if got := octaveForFrequency(c.freq); got != c.want {
			t.Fatalf("octaveForFrequency(%.2f) = %d, want %d", c.freq, got, c.want)
		}
	}
}

func TestMeasureReleaseTimeOfDecayingSine(t *testing.T) {
	// Exponential decay with time constant tau: the -6 dB to -60 dB drop
	// spans ln(10^(54/20))*tau ~= 6.22*tau regardless of absolute level.
	const tau = 0.08
	n := testRate
	buf := make([]float64, n)
	for i := range buf {
		ts := float64(i) / testRate
		buf[i] = math.Exp(-ts/tau) * math.Sin(2*math.Pi*440*ts)
	}
	got := measureReleaseTime(buf, testRate)
	want := 6.22 * tau
	if math.Abs(got-want) > 0.1 {
		t.Fatalf("release %.3f s, want about %.3f s", got, want)
	}
}

func TestMeasureReleaseTimeFallback(t *testing.T) {
	// Constant level never crosses the -6 dB threshold.
	buf := makeSine(440, 0.8, 0.5)
	if got := measureReleaseTime(buf, testRate); got != releaseDefaultSeconds {
		t.Fatalf("release %.3f s, want fallback %.3f s", got, releaseDefaultSeconds)
	}
	// Silence has no peak to walk from.
	if got := measureReleaseTime(make([]float64, 1000), testRate); got != releaseDefaultSeconds {
		t.Fatalf("silent release %.3f s, want fallback", got)
	}
}

func TestMeasureReleaseTimeClampsFastDecay(t *testing.T) {
	buf := make([]float64, testRate/2)
	buf[0] = 1.0
	if got := measureReleaseTime(buf, testRate); got != releaseMinSeconds {
		t.Fatalf("release %.4f s, want clamp %.4f s", got, releaseMinSeconds)
	}
}

func TestPercentileAmplitude(t *testing.T) {
	// Constant-amplitude sine: every window RMS is ~a/sqrt(2).
	buf := makeSine(440, 0.5, 1.0)
	got := percentileAmplitude(buf)
	want := 0.5 / math.Sqrt2
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("amplitude %.4f, want about %.4f", got, want)
	}
	// Fewer samples than one window.
	if got := percentileAmplitude(make([]float64, 100)); got != amplitudeDefault {
		t.Fatalf("amplitude %.4f, want fallback %.4f", got, amplitudeDefault)
	}
}

func TestClassifyFMDistinguishesHarmonicDensity(t *testing.T) {
	// Bin-aligned fundamental so harmonic magnitudes track partial
	// amplitudes closely.
	f0 := 40.0 * testRate / 4096 // ~430.66 Hz

	rich := makeSine(f0, 0.5, 1.0)
	for h := 2; h <= 8; h++ {
		addPartial(rich, f0*float64(h), 0.2)
	}
	d, err := Analyze([][]float64{rich}, testRate)
	if err != nil {
		t.Fatalf("Analyze(rich): %v", err)
	}
	if !d.IsFM {
		t.Fatal("harmonically rich signal not classified FM-like")
	}

	// Even harmonics with decaying partials: the 8th falls below the 10%
	// magnitude gate, leaving fewer than four detected harmonics.
	sparse := makeSine(f0, 0.8, 1.0)
	addPartial(sparse, f0*2, 0.4)
	addPartial(sparse, f0*4, 0.24)
	addPartial(sparse, f0*6, 0.12)
	addPartial(sparse, f0*8, 0.06)
	d, err = Analyze([][]float64{sparse}, testRate)
	if err != nil {
		t.Fatalf("Analyze(sparse): %v", err)
	}
	if d.IsFM {
		t.Fatal("sparse even-harmonic signal classified FM-like")
	}
}

func TestClassifyOrganicAndWideOnNoise(t *testing.T) {
	noise := makeNoise(testRate, 17)
	d, err := Analyze([][]float64{noise}, testRate)
	if err != nil {
		t.Fatalf("Analyze(noise): %v", err)
	}
	if !d.IsOrganic {
		t.Fatal("white noise not classified organic")
	}
	if !d.IsWide {
		t.Fatal("white noise not classified wide")
	}
}

func TestAnalyzeSnapshotShapes(t *testing.T) {
	buf := makeSine(440, 0.8, 1.0)
	d, err := Analyze([][]float64{buf}, testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	snap := d.Snapshot
	if snap.EarlyPitch == nil || snap.LatePitch == nil || snap.EarlyTexture == nil || snap.LateTexture == nil {
		t.Fatal("missing snapshot spectra")
	}
	if len(snap.EarlyPitch.Magnitudes) != pitchWindowSize/2 {
		t.Fatalf("pitch spectrum has %d bins, want %d", len(snap.EarlyPitch.Magnitudes), pitchWindowSize/2)
	}
	if len(snap.EarlyTexture.Magnitudes) != textureWindowSize/2 {
		t.Fatalf("texture spectrum has %d bins, want %d", len(snap.EarlyTexture.Magnitudes), textureWindowSize/2)
	}
	for _, m := range snap.EarlyPitch.Magnitudes {
		if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
			t.Fatalf("invalid magnitude %v", m)
		}
	}
}
