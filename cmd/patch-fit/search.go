package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-patchfit/anneal"
	"github.com/cwbudde/algo-patchfit/patch"
)

// The mayfly search explores the same six knobs the annealer mutates, as a
// normalized [0,1] vector scored by the same energy function.
var searchRanges = []patch.Range{
	patch.FilterFreqRange,
	patch.FilterQRange,
	patch.DistortionRange,
	patch.AttackRange,
	patch.DecayRange,
	patch.SustainRange,
}

func paramsFromNormalized(pos []float64, base patch.Params) patch.Params {
	vals := make([]float64, len(searchRanges))
	for i, r := range searchRanges {
		x := 0.0
		if i < len(pos) {
			x = math.Min(math.Max(pos[i], 0), 1)
		}
		vals[i] = r.Min + x*r.Span()
	}
	p := base
	p.FilterFreq = vals[0]
	p.FilterQ = vals[1]
	p.Distortion = vals[2]
	p.Attack = vals[3]
	p.Decay = vals[4]
	p.Sustain = vals[5]
	return p
}

func newMayflyConfig(variant string, pop, dims, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	nm := int(math.Round(0.05 * float64(pop)))
	if nm < 1 {
		nm = 1
	}
	cfg.NM = nm
	return cfg, nil
}

// runMayflySearch scores candidates with the annealer's energy function and
// tracks the best-seen parameter set itself, so a cancelled or failed run
// still yields the best candidate evaluated so far.
func runMayflySearch(ctx context.Context, variant string, base patch.Params, target []float64, sampleRate float64, seed int64, pop, iters int) (anneal.Result, error) {
	cfg, err := newMayflyConfig(variant, pop, len(searchRanges), iters)
	if err != nil {
		return anneal.Result{}, err
	}
	cfg.Rand = rand.New(rand.NewSource(seed))

	base = base.Clamp()
	best := base
	bestEnergy := anneal.Energy(base, target, sampleRate)
	evals := 0
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		if ctx.Err() != nil {
			return bestEnergy + 1.0
		}
		cand := paramsFromNormalized(pos, base)
		e := anneal.Energy(cand, target, sampleRate)
		evals++
		if e < bestEnergy {
			best = cand
			bestEnergy = e
			fmt.Printf("Improved eval=%d energy=%.6f\n", evals, e)
		}
		return e
	}

	if _, err := runMayfly(cfg); err != nil {
		return anneal.Result{}, err
	}
	return anneal.Result{Params: best, Energy: bestEnergy, Steps: evals}, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
