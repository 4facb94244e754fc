// Package interval constructs confidence intervals for a population mean
// under parametric (z, t) and resampling (bootstrap percentile, BCa)
// methods.
package interval

import (
	"errors"
	"fmt"
	"math"

	"github.com/visvikbharti/stickforstats-new-sub004/internal/dist"
)

// Method identifies a confidence-interval construction.
type Method string

const (
	MethodT                   Method = "t"
	MethodZ                   Method = "z"
	MethodBootstrapPercentile Method = "bootstrap-percentile"
	MethodBootstrapBCa        Method = "bootstrap-bca"
)

// ParseMethod maps a user-supplied method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodT, MethodZ, MethodBootstrapPercentile, MethodBootstrapBCa:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w: unknown method %q", ErrInvalidParameter, s)
}

// Errors returned by interval construction. All preconditions are checked
// before any computation starts, so a non-nil error means no partial result.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDegenerateSample = errors.New("degenerate sample: zero variance")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNumericOverflow  = errors.New("numeric overflow in quantile evaluation")
)

// ConfidenceInterval is the result of a single estimation call.
type ConfidenceInterval struct {
	Method        Method
	PointEstimate float64
	Lower         float64
	Upper         float64
	MarginOfError float64
	CriticalValue float64
	StandardError float64
}

// Width returns the interval width.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// Covers reports whether the interval contains v.
func (ci ConfidenceInterval) Covers(v float64) bool {
	return ci.Lower <= v && v <= ci.Upper
}

// TInterval computes a two-sided t-interval for the mean of sample at the
// given confidence level. The sample standard deviation uses the Bessel
// correction (divisor n-1).
func TInterval(sample []float64, level float64) (ConfidenceInterval, error) {
	if err := checkLevel(level); err != nil {
		return ConfidenceInterval{}, err
	}
	if len(sample) < 2 {
		return ConfidenceInterval{}, fmt.Errorf("%w: t-interval needs n >= 2, got %d", ErrInvalidParameter, len(sample))
	}

	m := Mean(sample)
	sd := StdDev(sample)
	if sd == 0 {
		return ConfidenceInterval{}, ErrDegenerateSample
	}

	df := len(sample) - 1
	crit, err := dist.InvStudentT(1-(1-level)/2, df)
	if err != nil {
		return ConfidenceInterval{}, fmt.Errorf("%w: %v", ErrNumericOverflow, err)
	}

	se := sd / math.Sqrt(float64(len(sample)))
	margin := crit * se

	return ConfidenceInterval{
		Method:        MethodT,
		PointEstimate: m,
		Lower:         m - margin,
		Upper:         m + margin,
		MarginOfError: margin,
		CriticalValue: crit,
		StandardError: se,
	}, nil
}

// ZInterval computes a two-sided z-interval for the mean of sample given a
// known population standard deviation.
func ZInterval(sample []float64, knownStdDev, level float64) (ConfidenceInterval, error) {
	if err := checkLevel(level); err != nil {
		return ConfidenceInterval{}, err
	}
	if len(sample) < 1 {
		return ConfidenceInterval{}, fmt.Errorf("%w: z-interval needs n >= 1", ErrInvalidParameter)
	}
	if knownStdDev <= 0 {
		return ConfidenceInterval{}, fmt.Errorf("%w: known std dev %v must be > 0", ErrInvalidParameter, knownStdDev)
	}

	m := Mean(sample)
	crit := dist.InvNormCDF(1 - (1-level)/2)
	se := knownStdDev / math.Sqrt(float64(len(sample)))
	margin := crit * se

	return ConfidenceInterval{
		Method:        MethodZ,
		PointEstimate: m,
		Lower:         m - margin,
		Upper:         m + margin,
		MarginOfError: margin,
		CriticalValue: crit,
		StandardError: se,
	}, nil
}

func checkLevel(level float64) error {
	if level <= 0 || level >= 1 {
		return fmt.Errorf("%w: confidence level %v not in (0,1)", ErrInvalidParameter, level)
	}
	return nil
}

// Mean computes the arithmetic mean. Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev computes the sample standard deviation (divisor n-1).
// Returns 0 when fewer than 2 values are given.
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}
