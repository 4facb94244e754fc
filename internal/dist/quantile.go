// Package dist provides quantile and CDF evaluations for the reference
// distributions used to build confidence intervals.
package dist

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadQuantile is returned when a quantile function is asked for a
// probability or degrees-of-freedom value outside its stable domain.
var ErrBadQuantile = errors.New("quantile outside stable domain")

// Coefficients for Acklam's rational approximation of the inverse
// standard-normal CDF. Central region uses a degree-3/3 rational
// polynomial, tails a log-based polynomial.
var (
	acklamA = [6]float64{
		-3.969683028665376e+01,
		2.209460984245205e+02,
		-2.759285104469687e+02,
		1.383577518672690e+02,
		-3.066479806614716e+01,
		2.506628277459239e+00,
	}
	acklamB = [5]float64{
		-5.447609879822406e+01,
		1.615858368580409e+02,
		-1.556989798598866e+02,
		6.680131188771972e+01,
		-1.328068155288572e+01,
	}
	acklamC = [6]float64{
		-7.784894002430293e-03,
		-3.223964580411365e-01,
		-2.400758277161838e+00,
		-2.549732539343734e+00,
		4.374664141464968e+00,
		2.938163982698783e+00,
	}
	acklamD = [4]float64{
		7.784695709041462e-03,
		3.224671290700398e-01,
		2.445134137142996e+00,
		3.754408661907416e+00,
	}
)

const acklamLow = 0.02425

// NormCDF evaluates the standard normal CDF at z.
func NormCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}

// InvNormCDF returns the z-value with NormCDF(z) = p.
// Returns -Inf for p <= 0 and +Inf for p >= 1; callers are expected to
// reject boundary probabilities before invoking it.
func InvNormCDF(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}

	var x float64
	switch {
	case p < acklamLow:
		q := math.Sqrt(-2 * math.Log(p))
		x = (((((acklamC[0]*q+acklamC[1])*q+acklamC[2])*q+acklamC[3])*q+acklamC[4])*q + acklamC[5]) /
			((((acklamD[0]*q+acklamD[1])*q+acklamD[2])*q+acklamD[3])*q + 1)
	case p > 1-acklamLow:
		q := math.Sqrt(-2 * math.Log(1-p))
		x = -(((((acklamC[0]*q+acklamC[1])*q+acklamC[2])*q+acklamC[3])*q+acklamC[4])*q + acklamC[5]) /
			((((acklamD[0]*q+acklamD[1])*q+acklamD[2])*q+acklamD[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		x = (((((acklamA[0]*r+acklamA[1])*r+acklamA[2])*r+acklamA[3])*r+acklamA[4])*r + acklamA[5]) * q /
			(((((acklamB[0]*r+acklamB[1])*r+acklamB[2])*r+acklamB[3])*r+acklamB[4])*r + 1)
	}

	// One Halley refinement step against the exact CDF pushes the
	// approximation from ~1e-9 to near machine precision. Skipped in the
	// far tails where exp(x^2/2) overflows.
	if math.Abs(x) < 37 {
		e := NormCDF(x) - p
		u := e * math.Sqrt(2*math.Pi) * math.Exp(x*x/2)
		x -= u / (1 + x*u/2)
	}

	return x
}

// InvStudentT returns the t-value with df degrees of freedom whose CDF
// equals p. The inversion is exact: the two-tailed probability is mapped
// through the regularized incomplete beta function rather than through a
// normal approximation with a small-sample correction, so critical values
// are accurate even at df = 1.
func InvStudentT(p float64, df int) (float64, error) {
	if df < 1 {
		return 0, fmt.Errorf("%w: df %d < 1", ErrBadQuantile, df)
	}
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: p %v not in (0,1)", ErrBadQuantile, p)
	}
	if p == 0.5 {
		return 0, nil
	}

	// Two-tailed probability: P(|T| > t) = I_x(df/2, 1/2) with
	// x = df/(df+t^2).
	tail := 2 * math.Min(p, 1-p)
	x, err := invRegIncBeta(float64(df)/2, 0.5, tail)
	if err != nil {
		return 0, err
	}

	var t float64
	if x <= 0 {
		t = math.Inf(1)
	} else {
		t = math.Sqrt(float64(df) * (1 - x) / x)
	}
	if p < 0.5 {
		t = -t
	}
	return t, nil
}

// RegIncBeta evaluates the regularized incomplete beta function I_x(a, b)
// using the standard continued-fraction expansion.
func RegIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	la, _ := math.Lgamma(a + b)
	lb, _ := math.Lgamma(a)
	lc, _ := math.Lgamma(b)
	front := math.Exp(la - lb - lc + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF evaluates the continued fraction for the incomplete beta function
// by the modified Lentz method.
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 300
		eps     = 3e-15
		tiny    = 1e-30
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

// invRegIncBeta solves I_x(a, b) = p for x in (0,1) using Newton steps
// safeguarded by bisection.
func invRegIncBeta(a, b, p float64) (float64, error) {
	if p <= 0 {
		return 0, nil
	}
	if p >= 1 {
		return 1, nil
	}

	lo, hi := 0.0, 1.0
	x := 0.5

	lbeta := func() float64 {
		la, _ := math.Lgamma(a)
		lb, _ := math.Lgamma(b)
		lab, _ := math.Lgamma(a + b)
		return la + lb - lab
	}()

	for i := 0; i < 200; i++ {
		f := RegIncBeta(a, b, x) - p
		if math.Abs(f) < 1e-14 {
			return x, nil
		}
		if f > 0 {
			hi = x
		} else {
			lo = x
		}

		// d/dx I_x(a,b) = x^(a-1) (1-x)^(b-1) / B(a,b)
		deriv := math.Exp((a-1)*math.Log(x) + (b-1)*math.Log(1-x) - lbeta)
		next := x
		if deriv > 0 {
			next = x - f/deriv
		}
		if next <= lo || next >= hi || deriv == 0 {
			next = (lo + hi) / 2
		}
		if math.Abs(next-x) < 1e-16 {
			return next, nil
		}
		x = next
	}
	return x, nil
}
