package fitcommon

import (
	"fmt"
	"os"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// MaxWAVBytes bounds the accepted reference size before decoding; the
// analysis core enforces the same limit on decoded samples.
const MaxWAVBytes = 10 << 20

// ReadWAVChannels decodes a WAV file into channel-major float64 samples
// scaled to [-1, 1], returning the channels and the file's sample rate.
func ReadWAVChannels(path string) ([][]float64, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	if info.Size() > MaxWAVBytes {
		return nil, 0, fmt.Errorf("wav file too large: %d bytes (limit %d)", info.Size(), MaxWAVBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	return splitChannels(buf), buf.Format.SampleRate, nil
}

func splitChannels(buf *audio.Float32Buffer) [][]float64 {
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([][]float64, ch)
	for c := 0; c < ch; c++ {
		out[c] = make([]float64, frames)
		for i := 0; i < frames; i++ {
			out[c][i] = float64(buf.Data[i*ch+c])
		}
	}
	return out
}

// ReadWAVMono decodes a WAV file and mixes all channels down to one.
func ReadWAVMono(path string) ([]float64, int, error) {
	channels, rate, err := ReadWAVChannels(path)
	if err != nil {
		return nil, 0, err
	}
	if len(channels) == 1 {
		return channels[0], rate, nil
	}
	frames := len(channels[0])
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := range channels {
			sum += channels[c][i]
		}
		out[i] = sum / float64(len(channels))
	}
	return out, rate, nil
}

// ResampleIfNeeded converts in from fromRate to toRate; no-op when the
// rates already match.
func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}
