// Package anneal searches the synthesizer parameter space with simulated
// annealing, scoring candidates against a target magnitude spectrum through
// the patch spectral model.
package anneal

import (
	"context"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-approx"

	"github.com/cwbudde/algo-patchfit/patch"
)

const (
	// DefaultSteps bounds the search cost; callers tune cost via Steps only.
	DefaultSteps = 50

	defaultTStart = 1.0
	defaultTEnd   = 0.01

	// mutationScale sizes one perturbation relative to the knob range and
	// the current temperature.
	mutationScale = 0.2

	// energyBins caps how many spectrum bins the energy function compares.
	energyBins = 64

	// NeutralEnergy is reported when no target spectrum is available.
	NeutralEnergy = 1.0
)

// Observer receives progress after every step. The reported energy and
// params are always the best-seen state, never the current trial, so a
// live display only ever sees flat or improving energy.
type Observer interface {
	OnStep(step, totalSteps int, energy float64, params patch.Params)
}

// Options configures one annealing run. The zero value selects defaults.
type Options struct {
	Steps      int
	TStart     float64
	TEnd       float64
	Seed       int64
	SampleRate float64
	Observer   Observer
}

func (o Options) withDefaults() Options {
	if o.Steps < 1 {
		o.Steps = DefaultSteps
	}
	if o.TStart <= 0 {
		o.TStart = defaultTStart
	}
	if o.TEnd <= 0 {
		o.TEnd = defaultTEnd
	}
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	return o
}

// Result is the outcome of a run: the best-seen parameter set, not the
// final accepted trial.
type Result struct {
	Params patch.Params
	Energy float64
	Steps  int
}

// A knob is one parameter the optimizer may mutate. Oscillator type,
// release and chorus wet stay out of this set; the bridge owns them.
type knob struct {
	rng patch.Range
	get func(*patch.Params) float64
	set func(*patch.Params, float64)
}

var mutableKnobs = []knob{
	{patch.FilterFreqRange,
		func(p *patch.Params) float64 { return p.FilterFreq },
		func(p *patch.Params, v float64) { p.FilterFreq = v }},
	{patch.FilterQRange,
		func(p *patch.Params) float64 { return p.FilterQ },
		func(p *patch.Params, v float64) { p.FilterQ = v }},
	{patch.DistortionRange,
		func(p *patch.Params) float64 { return p.Distortion },
		func(p *patch.Params, v float64) { p.Distortion = v }},
	{patch.AttackRange,
		func(p *patch.Params) float64 { return p.Attack },
		func(p *patch.Params, v float64) { p.Attack = v }},
	{patch.DecayRange,
		func(p *patch.Params) float64 { return p.Decay },
		func(p *patch.Params, v float64) { p.Decay = v }},
	{patch.SustainRange,
		func(p *patch.Params) float64 { return p.Sustain },
		func(p *patch.Params, v float64) { p.Sustain = v }},
}

// Energy scores params against the target spectrum: mean squared error of
// log(magnitude+1) over the first min(64, len) bins. A missing target
// yields NeutralEnergy so a search without a prepared target still returns
// a usable parameter set.
func Energy(p patch.Params, target []float64, sampleRate float64) float64 {
	if len(target) == 0 {
		return NeutralEnergy
	}
	estimated := patch.EstimateSpectrum(p, p.LockedFrequency, sampleRate)
	n := energyBins
	if len(estimated) < n {
		n = len(estimated)
	}
	if len(target) < n {
		n = len(target)
	}
	if n == 0 {
		return NeutralEnergy
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := math.Log(estimated[i]+1) - math.Log(target[i]+1)
		sum += d * d
	}
	return sum / float64(n)
}

// Run performs one annealing search from initial toward the target
// spectrum. The context is checked once per step; a cancelled run returns
// the best parameters seen so far. Identical inputs and seed give
// identical results.
func Run(ctx context.Context, initial patch.Params, target []float64, opts Options) Result {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	current := initial.Clamp()
	currentEnergy := Energy(current, target, opts.SampleRate)
	best := current
	bestEnergy := currentEnergy

	executed := 0
	for step := 0; step < opts.Steps; step++ {
		if ctx.Err() != nil {
			break
		}
		temp := opts.TStart * math.Pow(opts.TEnd/opts.TStart, float64(step)/float64(opts.Steps))

		trial := current
		k := mutableKnobs[rng.Intn(len(mutableKnobs))]
		v := k.get(&trial) + (rng.Float64()-0.5)*k.rng.Span()*mutationScale*temp
		k.set(&trial, k.rng.Clamp(v))

		trialEnergy := Energy(trial, target, opts.SampleRate)
		delta := trialEnergy - currentEnergy
		if delta < 0 || rng.Float64() < float64(approx.FastExp(float32(-delta/temp))) {
			current = trial
			currentEnergy = trialEnergy
		}
		if trialEnergy < bestEnergy {
			best = trial
			bestEnergy = trialEnergy
		}
		executed++
		if opts.Observer != nil {
			opts.Observer.OnStep(step+1, opts.Steps, bestEnergy, best)
		}
	}

	return Result{Params: best, Energy: bestEnergy, Steps: executed}
}
