package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"os"

	algofft "github.com/cwbudde/algo-fft"

	fitcommon "github.com/cwbudde/algo-patchfit/internal/fitcommon"

	"github.com/cwbudde/algo-patchfit/feature"
)

func main() {
	referencePath := flag.String("reference", "reference/sample.wav", "Reference WAV path")
	sampleRate := flag.Int("sample-rate", 44100, "Analysis sample rate")
	fftSize := flag.Int("fft-size", 4096, "STFT size for the band report")
	hop := flag.Int("hop", 2048, "STFT hop for the band report")
	jsonOnly := flag.Bool("json", false, "Print the descriptor as JSON and exit")
	flag.Parse()

	if *fftSize < 64 || *fftSize&(*fftSize-1) != 0 {
		die("fft-size must be a power of two >= 64")
	}
	if *hop < 1 {
		die("hop must be >= 1")
	}

	mono, fileRate, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	mono, err = fitcommon.ResampleIfNeeded(mono, fileRate, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	desc, err := feature.Analyze([][]float64{mono}, *sampleRate)
	if err != nil {
		die("analysis failed: %v", err)
	}

	if *jsonOnly {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(desc); err != nil {
			die("failed to encode descriptor: %v", err)
		}
		return
	}

	fmt.Printf("Reference: %d frames @ %d Hz (%.2fs)\n", len(mono), *sampleRate, desc.Duration)
	fmt.Printf("Pitch:     %.2f Hz (octave %d)\n", desc.PitchHz, desc.DetectedOctave)
	fmt.Printf("Release:   %.3f s\n", desc.DetectedRelease)
	fmt.Printf("Amplitude: %.4f (90th percentile RMS)\n", desc.Amplitude)
	fmt.Printf("Character: fm=%v organic=%v wide=%v\n\n", desc.IsFM, desc.IsOrganic, desc.IsWide)

	if err := printBandReport(mono, *sampleRate, *fftSize, *hop); err != nil {
		die("band report failed: %v", err)
	}
}

type band struct {
	name string
	loHz float64
	hiHz float64
}

var bands = []band{
	{"sub-bass (20-100Hz)", 20, 100},
	{"bass (100-300Hz)", 100, 300},
	{"low-mid (300-1kHz)", 300, 1000},
	{"mid (1-3kHz)", 1000, 3000},
	{"hi-mid (3-6kHz)", 3000, 6000},
	{"high (6-12kHz)", 6000, 12000},
	{"air (12-20kHz)", 12000, 20000},
}

// printBandReport averages STFT magnitudes over the early and late regions
// of the sample and prints per-band power so attack and tail character can
// be compared at a glance.
func printBandReport(samples []float64, sampleRate, fftSize, hop int) error {
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return fmt.Errorf("fft plan: %w", err)
	}

	type region struct {
		name     string
		startPos float64
		endPos   float64
	}
	regions := []region{
		{"early (0-40%)", 0.0, 0.4},
		{"late (60-100%)", 0.6, 1.0},
	}

	binHz := float64(sampleRate) / float64(fftSize)
	hann := make([]float64, fftSize)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize))
	}

	spec := make([]complex128, fftSize/2+1)
	buf := make([]float64, fftSize)
	nBins := fftSize / 2

	for _, reg := range regions {
		startSamp := int(reg.startPos * float64(len(samples)))
		endSamp := int(reg.endPos * float64(len(samples)))

		avg := make([]float64, nBins)
		frames := 0
		for pos := startSamp; pos+fftSize <= endSamp; pos += hop {
			for i := 0; i < fftSize; i++ {
				buf[i] = samples[pos+i] * hann[i]
			}
			plan.Forward(spec, buf)
			for k := 1; k < nBins; k++ {
				avg[k] += cmplx.Abs(spec[k])
			}
			frames++
		}
		if frames == 0 {
			// Region shorter than one frame: zero-pad a single frame.
			for i := range buf {
				buf[i] = 0
			}
			for i := 0; startSamp+i < endSamp && i < fftSize; i++ {
				buf[i] = samples[startSamp+i] * hann[i]
			}
			plan.Forward(spec, buf)
			for k := 1; k < nBins; k++ {
				avg[k] = cmplx.Abs(spec[k])
			}
			frames = 1
		}
		scale := 1.0 / float64(frames)
		for k := range avg {
			avg[k] *= scale
		}

		fmt.Printf("--- %s (%d STFT frames) ---\n", reg.name, frames)
		for _, b := range bands {
			loK := int(b.loHz / binHz)
			hiK := int(b.hiHz / binHz)
			if loK < 1 {
				loK = 1
			}
			if hiK >= nBins {
				hiK = nBins - 1
			}
			if loK > hiK {
				continue
			}
			var pow float64
			cnt := 0
			for k := loK; k <= hiK; k++ {
				pow += avg[k] * avg[k]
				cnt++
			}
			db := 10 * math.Log10(math.Max(pow/float64(cnt), 1e-24))
			fmt.Printf("  %-22s %7.1f dB\n", b.name, db)
		}
		fmt.Println()
	}
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
