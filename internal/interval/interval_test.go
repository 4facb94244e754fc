package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTInterval(t *testing.T) {
	t.Run("textbook example", func(t *testing.T) {
		// mean = 5, sample sd ~ 2.138, df = 7, t-critical ~ 2.365.
		sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}

		ci, err := TInterval(sample, 0.95)
		require.NoError(t, err)

		assert.Equal(t, MethodT, ci.Method)
		assert.InDelta(t, 5, ci.PointEstimate, 1e-12)
		assert.InDelta(t, 2.3646, ci.CriticalValue, 1e-3)
		assert.InDelta(t, 1.787, ci.MarginOfError, 0.01)
		assert.InDelta(t, 3.21, ci.Lower, 0.01)
		assert.InDelta(t, 6.79, ci.Upper, 0.01)
	})

	t.Run("bounds bracket the point estimate", func(t *testing.T) {
		ci, err := TInterval([]float64{1.2, 3.4, 2.2, 5.6, 4.1}, 0.9)
		require.NoError(t, err)
		assert.LessOrEqual(t, ci.Lower, ci.PointEstimate)
		assert.LessOrEqual(t, ci.PointEstimate, ci.Upper)
		assert.GreaterOrEqual(t, ci.Width(), 0.0)
	})

	t.Run("width grows with confidence level", func(t *testing.T) {
		sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}
		prev := 0.0
		for _, level := range []float64{0.80, 0.90, 0.95, 0.99} {
			ci, err := TInterval(sample, level)
			require.NoError(t, err)
			assert.Greater(t, ci.Width(), prev, "level=%v", level)
			prev = ci.Width()
		}
	})

	t.Run("zero variance is degenerate", func(t *testing.T) {
		_, err := TInterval([]float64{5, 5, 5, 5}, 0.95)
		assert.ErrorIs(t, err, ErrDegenerateSample)
	})

	t.Run("rejects short samples", func(t *testing.T) {
		_, err := TInterval([]float64{1}, 0.95)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("rejects bad confidence levels", func(t *testing.T) {
		sample := []float64{1, 2, 3}
		for _, level := range []float64{0, 1, -0.5, 1.5} {
			_, err := TInterval(sample, level)
			assert.ErrorIs(t, err, ErrInvalidParameter, "level=%v", level)
		}
	})
}

func TestZInterval(t *testing.T) {
	t.Run("uses normal critical value", func(t *testing.T) {
		sample := []float64{8, 10, 12, 10}

		ci, err := ZInterval(sample, 2, 0.95)
		require.NoError(t, err)

		assert.Equal(t, MethodZ, ci.Method)
		assert.InDelta(t, 10, ci.PointEstimate, 1e-12)
		assert.InDelta(t, 1.959964, ci.CriticalValue, 1e-5)
		assert.InDelta(t, 1.0, ci.StandardError, 1e-12) // 2/sqrt(4)
		assert.InDelta(t, 1.959964, ci.MarginOfError, 1e-5)
	})

	t.Run("degenerate sample still yields an interval", func(t *testing.T) {
		// Known sigma supplies the variance, so constant data is fine.
		ci, err := ZInterval([]float64{5, 5, 5, 5}, 1, 0.95)
		require.NoError(t, err)
		assert.InDelta(t, 5, ci.PointEstimate, 1e-12)
		assert.Greater(t, ci.Width(), 0.0)
	})

	t.Run("rejects non-positive known std dev", func(t *testing.T) {
		_, err := ZInterval([]float64{1, 2, 3}, 0, 0.95)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = ZInterval([]float64{1, 2, 3}, -1, 0.95)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("narrower than t at the same level", func(t *testing.T) {
		sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}
		sd := StdDev(sample)

		tCI, err := TInterval(sample, 0.95)
		require.NoError(t, err)
		zCI, err := ZInterval(sample, sd, 0.95)
		require.NoError(t, err)

		assert.Less(t, zCI.Width(), tCI.Width())
	})
}

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"t", "z", "bootstrap-percentile", "bootstrap-bca"} {
		m, err := ParseMethod(s)
		require.NoError(t, err)
		assert.Equal(t, Method(s), m)
	}

	_, err := ParseMethod("wilcoxon")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDescriptive(t *testing.T) {
	t.Run("mean", func(t *testing.T) {
		assert.Equal(t, 0.0, Mean(nil))
		assert.InDelta(t, 5, Mean([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	})

	t.Run("sample std dev uses bessel correction", func(t *testing.T) {
		assert.Equal(t, 0.0, StdDev([]float64{3}))
		assert.InDelta(t, 2.1381, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-4)
	})
}
