package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	fitcommon "github.com/cwbudde/algo-patchfit/internal/fitcommon"

	"github.com/cwbudde/algo-patchfit/anneal"
	"github.com/cwbudde/algo-patchfit/engine"
	"github.com/cwbudde/algo-patchfit/feature"
	"github.com/cwbudde/algo-patchfit/patch"
	"github.com/cwbudde/algo-patchfit/preset"
)

func main() {
	referencePath := flag.String("reference", "reference/sample.wav", "Reference WAV path")
	outputPreset := flag.String("output-preset", "out/fitted.json", "Path to write the fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	sampleRate := flag.Int("sample-rate", 44100, "Analysis sample rate (reference is resampled when needed)")
	oscillator := flag.String("oscillator", "sawtooth", "Oscillator type: sawtooth|square|triangle|sine")
	steps := flag.Int("steps", 200, "Annealing steps")
	seed := flag.Int64("seed", 1, "Random seed")
	reportEvery := flag.Int("report-every", 20, "Print progress every N steps")
	search := flag.String("search", "anneal", "Search strategy: anneal or a mayfly variant (ma|desma|olce|eobbma|gsasma|mpma|aoblmoa)")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per mayfly run")
	mayflyIters := flag.Int("mayfly-iters", 40, "Mayfly iterations")
	flag.Parse()

	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *steps < 1 {
		die("steps must be >= 1")
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyIters < 1 {
		*mayflyIters = 1
	}
	osc, err := patch.ParseOscillatorType(*oscillator)
	if err != nil {
		die("invalid --oscillator: %v", err)
	}
	if *reportPath == "" {
		*reportPath = *outputPreset + ".report.json"
	}

	mono, fileRate, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	mono, err = fitcommon.ResampleIfNeeded(mono, fileRate, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}
	fmt.Printf("Reference: %d frames @ %d Hz (%.2fs)\n", len(mono), *sampleRate, float64(len(mono))/float64(*sampleRate))

	start := time.Now()
	desc, err := feature.Analyze([][]float64{mono}, *sampleRate)
	if err != nil {
		die("analysis failed: %v", err)
	}
	fmt.Printf("Detected: pitch=%.2fHz octave=%d release=%.3fs amp=%.3f fm=%v organic=%v wide=%v\n",
		desc.PitchHz, desc.DetectedOctave, desc.DetectedRelease, desc.Amplitude, desc.IsFM, desc.IsOrganic, desc.IsWide)

	params := patch.NewDefaultParams()
	params.Oscillator = osc
	engine.Configure(desc).Apply(&params)

	target := anneal.Target(desc.Snapshot.EarlyTexture)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var result anneal.Result
	if *search == "anneal" {
		result = anneal.Run(ctx, params, target, anneal.Options{
			Steps:      *steps,
			Seed:       *seed,
			SampleRate: float64(*sampleRate),
			Observer: &progressPrinter{
				every: *reportEvery,
				total: *steps,
			},
		})
	} else {
		result, err = runMayflySearch(ctx, *search, params, target, float64(*sampleRate), *seed, *mayflyPop, *mayflyIters)
		if err != nil {
			die("mayfly search failed: %v", err)
		}
	}
	elapsed := time.Since(start).Seconds()
	fmt.Printf("Best energy %.6f after %d evaluations (%.1fs)\n", result.Energy, result.Steps, elapsed)

	if err := preset.SaveJSON(*outputPreset, result.Params); err != nil {
		die("failed to write preset: %v", err)
	}
	if err := writeReport(*reportPath, *search, desc, result, elapsed); err != nil {
		die("failed to write report: %v", err)
	}
	fmt.Printf("Wrote %s and %s\n", *outputPreset, *reportPath)
}

// progressPrinter mirrors the annealer's best-state reports onto stdout.
type progressPrinter struct {
	every int
	total int
}

func (p *progressPrinter) OnStep(step, total int, energy float64, params patch.Params) {
	if step%p.every != 0 && step != total {
		return
	}
	fmt.Printf("Progress step=%d/%d best=%.6f filter=%.0fHz q=%.2f dist=%.2f\n",
		step, total, energy, params.FilterFreq, params.FilterQ, params.Distortion)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
