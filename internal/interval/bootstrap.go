package interval

import (
	"fmt"
	"math"
	"sort"

	"github.com/visvikbharti/stickforstats-new-sub004/internal/dist"
	"github.com/visvikbharti/stickforstats-new-sub004/internal/variate"
)

// DefaultResamples is the bootstrap resample count used when the caller
// passes 0. 500 gives stable quantile estimates for interactive use;
// 1000+ is recommended for publication-grade results.
const DefaultResamples = 500

// BootstrapPercentile computes a percentile bootstrap interval for the mean
// of sample. Resamples of size n are drawn with replacement from sample;
// the interval bounds are the alpha/2 and 1-alpha/2 quantiles of the
// resulting bootstrap distribution. No distributional assumption is made
// about the data.
func BootstrapPercentile(src *variate.Source, sample []float64, level float64, resamples int) (ConfidenceInterval, error) {
	boot, obs, err := bootstrapDistribution(src, sample, level, resamples, 2)
	if err != nil {
		return ConfidenceInterval{}, err
	}

	alpha := 1 - level
	lower := Quantile(boot, alpha/2)
	upper := Quantile(boot, 1-alpha/2)

	return percentileResult(MethodBootstrapPercentile, obs, lower, upper, boot), nil
}

// BootstrapBCa computes a bias-corrected and accelerated bootstrap interval
// for the mean of sample. The bias correction z0 comes from the fraction of
// bootstrap statistics below the observed statistic; the acceleration a
// comes from the jackknife. When z0 = 0 and a = 0 the adjusted percentiles
// equal the plain percentile method's.
func BootstrapBCa(src *variate.Source, sample []float64, level float64, resamples int) (ConfidenceInterval, error) {
	boot, obs, err := bootstrapDistribution(src, sample, level, resamples, 3)
	if err != nil {
		return ConfidenceInterval{}, err
	}

	below := 0
	for _, t := range boot {
		if t < obs {
			below++
		}
	}
	prop := float64(below) / float64(len(boot))
	if prop == 0 || prop == 1 {
		// Every bootstrap statistic fell on one side of the observed
		// value; z0 would be infinite.
		return ConfidenceInterval{}, fmt.Errorf("%w: bootstrap distribution entirely %s observed statistic",
			ErrNumericOverflow, sideWord(prop))
	}
	z0 := dist.InvNormCDF(prop)

	a := jackknifeAcceleration(sample)

	alpha := 1 - level
	zLo := dist.InvNormCDF(alpha / 2)
	zHi := dist.InvNormCDF(1 - alpha/2)

	a1 := dist.NormCDF(z0 + (z0+zLo)/(1-a*(z0+zLo)))
	a2 := dist.NormCDF(z0 + (z0+zHi)/(1-a*(z0+zHi)))

	lower := Quantile(boot, a1)
	upper := Quantile(boot, a2)

	return percentileResult(MethodBootstrapBCa, obs, lower, upper, boot), nil
}

// bootstrapDistribution validates inputs, draws the resamples, and returns
// the sorted bootstrap distribution of the mean plus the observed mean.
// Both bootstrap methods share this path so that, given equally seeded
// sources, they operate on identical bootstrap distributions.
func bootstrapDistribution(src *variate.Source, sample []float64, level float64, resamples, minN int) ([]float64, float64, error) {
	if err := checkLevel(level); err != nil {
		return nil, 0, err
	}
	if len(sample) < minN {
		return nil, 0, fmt.Errorf("%w: bootstrap needs n >= %d, got %d", ErrInsufficientData, minN, len(sample))
	}
	if resamples == 0 {
		resamples = DefaultResamples
	}
	if resamples < 1 {
		return nil, 0, fmt.Errorf("%w: resamples %d < 1", ErrInvalidParameter, resamples)
	}

	n := len(sample)
	boot := make([]float64, resamples)
	for b := range boot {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += sample[src.Intn(n)]
		}
		boot[b] = sum / float64(n)
	}
	sort.Float64s(boot)

	return boot, Mean(sample), nil
}

// jackknifeAcceleration estimates the BCa acceleration constant from the
// leave-one-out means of sample.
func jackknifeAcceleration(sample []float64) float64 {
	n := len(sample)
	total := 0.0
	for _, v := range sample {
		total += v
	}

	jack := make([]float64, n)
	for i := range sample {
		jack[i] = (total - sample[i]) / float64(n-1)
	}
	jackMean := Mean(jack)

	var sum2, sum3 float64
	for _, j := range jack {
		d := jackMean - j
		sum2 += d * d
		sum3 += d * d * d
	}
	if sum2 == 0 {
		return 0
	}
	return sum3 / (6 * math.Pow(sum2, 1.5))
}

func percentileResult(method Method, obs, lower, upper float64, boot []float64) ConfidenceInterval {
	se := StdDev(boot)
	return ConfidenceInterval{
		Method:        method,
		PointEstimate: obs,
		Lower:         lower,
		Upper:         upper,
		MarginOfError: (upper - lower) / 2,
		StandardError: se,
	}
}

func sideWord(prop float64) string {
	if prop == 0 {
		return "above"
	}
	return "below"
}

// Quantile returns the p-quantile of sorted values using linear
// interpolation between order statistics.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
