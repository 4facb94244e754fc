// Package coverage runs Monte Carlo experiments that check whether a
// confidence-interval method achieves its nominal coverage probability.
package coverage

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/visvikbharti/stickforstats-new-sub004/internal/interval"
	"github.com/visvikbharti/stickforstats-new-sub004/internal/variate"
)

// Distribution identifies a sampling distribution for synthetic data.
type Distribution string

const (
	DistNormal    Distribution = "normal"
	DistBernoulli Distribution = "bernoulli"
)

// DistributionSpec carries the parameters needed to draw one synthetic
// sample. It is passed by value; the simulator never mutates it.
type DistributionSpec struct {
	Kind   Distribution
	Mean   float64 // normal
	StdDev float64 // normal
	P      float64 // bernoulli
}

// TrueParameter returns the population mean implied by the spec, the value
// each constructed interval is checked against.
func (d DistributionSpec) TrueParameter() float64 {
	if d.Kind == DistBernoulli {
		return d.P
	}
	return d.Mean
}

func (d DistributionSpec) validate() error {
	switch d.Kind {
	case DistNormal:
		if d.StdDev <= 0 {
			return fmt.Errorf("%w: normal std dev %v must be > 0", interval.ErrInvalidParameter, d.StdDev)
		}
	case DistBernoulli:
		if d.P <= 0 || d.P >= 1 {
			return fmt.Errorf("%w: bernoulli p %v not in (0,1)", interval.ErrInvalidParameter, d.P)
		}
	default:
		return fmt.Errorf("%w: unknown distribution %q", interval.ErrInvalidParameter, d.Kind)
	}
	return nil
}

func (d DistributionSpec) draw(src *variate.Source, n int) []float64 {
	if d.Kind == DistBernoulli {
		return src.Bernoulli(d.P, n)
	}
	return src.Normal(d.Mean, d.StdDev, n)
}

// Config describes one coverage experiment.
type Config struct {
	Distribution    DistributionSpec
	Method          interval.Method
	KnownStdDev     float64 // z-interval only; 0 defaults to the distribution's std dev
	ConfidenceLevel float64
	SampleSize      int
	NumSimulations  int
	Resamples       int // bootstrap methods only; 0 uses the package default
	Workers         int // 0 uses GOMAXPROCS
	Seed            int64
}

// Trial is one Monte Carlo replicate.
type Trial struct {
	SampleMean float64
	Lower      float64
	Upper      float64
	Covers     bool
}

// Result aggregates a completed experiment. Trials are ordered by trial
// index regardless of how many workers produced them.
type Result struct {
	NumSimulations      int
	EmpiricalCoverage   float64
	TheoreticalCoverage float64
	AverageWidth        float64
	Trials              []Trial
}

// Simulate runs cfg.NumSimulations independent trials: draw a sample,
// construct an interval, record whether it covers the true parameter.
//
// Each trial gets its own seed derived up front from cfg.Seed, so the
// result is identical for any worker count. A failing trial fails the whole
// run; the engine never silently skips replicates. Cancellation is checked
// between trials.
func Simulate(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.NumSimulations < 1 {
		return nil, fmt.Errorf("%w: num simulations %d < 1", interval.ErrInvalidParameter, cfg.NumSimulations)
	}
	if cfg.SampleSize < 2 {
		return nil, fmt.Errorf("%w: sample size %d < 2", interval.ErrInvalidParameter, cfg.SampleSize)
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("%w: confidence level %v not in (0,1)", interval.ErrInvalidParameter, cfg.ConfidenceLevel)
	}
	if err := cfg.Distribution.validate(); err != nil {
		return nil, err
	}
	if _, err := interval.ParseMethod(string(cfg.Method)); err != nil {
		return nil, err
	}

	knownSD := cfg.KnownStdDev
	if cfg.Method == interval.MethodZ && knownSD == 0 {
		knownSD = cfg.Distribution.StdDev
	}

	master := variate.NewSource(cfg.Seed)
	seeds := make([]int64, cfg.NumSimulations)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.NumSimulations {
		workers = cfg.NumSimulations
	}

	trueParam := cfg.Distribution.TrueParameter()
	trials := make([]Trial, cfg.NumSimulations)
	indexes := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(indexes)
		for i := 0; i < cfg.NumSimulations; i++ {
			select {
			case indexes <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range indexes {
				src := variate.NewSource(seeds[i])
				sample := cfg.Distribution.draw(src, cfg.SampleSize)

				ci, err := constructInterval(src, sample, cfg, knownSD)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}

				trials[i] = Trial{
					SampleMean: interval.Mean(sample),
					Lower:      ci.Lower,
					Upper:      ci.Upper,
					Covers:     ci.Covers(trueParam),
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reduce(trials, cfg.ConfidenceLevel), nil
}

func constructInterval(src *variate.Source, sample []float64, cfg Config, knownSD float64) (interval.ConfidenceInterval, error) {
	switch cfg.Method {
	case interval.MethodT:
		return interval.TInterval(sample, cfg.ConfidenceLevel)
	case interval.MethodZ:
		return interval.ZInterval(sample, knownSD, cfg.ConfidenceLevel)
	case interval.MethodBootstrapPercentile:
		return interval.BootstrapPercentile(src, sample, cfg.ConfidenceLevel, cfg.Resamples)
	case interval.MethodBootstrapBCa:
		return interval.BootstrapBCa(src, sample, cfg.ConfidenceLevel, cfg.Resamples)
	}
	return interval.ConfidenceInterval{}, fmt.Errorf("%w: unknown method %q", interval.ErrInvalidParameter, cfg.Method)
}

func reduce(trials []Trial, level float64) *Result {
	hits := 0
	widthSum := 0.0
	for _, t := range trials {
		if t.Covers {
			hits++
		}
		widthSum += t.Upper - t.Lower
	}
	return &Result{
		NumSimulations:      len(trials),
		EmpiricalCoverage:   float64(hits) / float64(len(trials)),
		TheoreticalCoverage: level,
		AverageWidth:        widthSum / float64(len(trials)),
		Trials:              trials,
	}
}
