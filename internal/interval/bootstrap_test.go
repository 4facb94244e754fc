package interval

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visvikbharti/stickforstats-new-sub004/internal/variate"
)

func TestBootstrapPercentile(t *testing.T) {
	sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	t.Run("deterministic given a seed", func(t *testing.T) {
		a, err := BootstrapPercentile(variate.NewSource(42), sample, 0.95, 1000)
		require.NoError(t, err)
		b, err := BootstrapPercentile(variate.NewSource(42), sample, 0.95, 1000)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("bounds bracket the observed mean", func(t *testing.T) {
		ci, err := BootstrapPercentile(variate.NewSource(7), sample, 0.95, 2000)
		require.NoError(t, err)

		assert.Equal(t, MethodBootstrapPercentile, ci.Method)
		assert.InDelta(t, 5, ci.PointEstimate, 1e-12)
		assert.Less(t, ci.Lower, ci.PointEstimate)
		assert.Greater(t, ci.Upper, ci.PointEstimate)
	})

	t.Run("roughly agrees with the t interval", func(t *testing.T) {
		boot, err := BootstrapPercentile(variate.NewSource(11), sample, 0.95, 5000)
		require.NoError(t, err)
		parametric, err := TInterval(sample, 0.95)
		require.NoError(t, err)

		// Bootstrap intervals for small n run a little narrower than t;
		// they should still land in the same neighborhood.
		assert.InDelta(t, parametric.Lower, boot.Lower, 0.8)
		assert.InDelta(t, parametric.Upper, boot.Upper, 0.8)
	})

	t.Run("zero resamples uses the default", func(t *testing.T) {
		ci, err := BootstrapPercentile(variate.NewSource(3), sample, 0.95, 0)
		require.NoError(t, err)
		assert.Greater(t, ci.Width(), 0.0)
	})

	t.Run("rejects negative resamples", func(t *testing.T) {
		_, err := BootstrapPercentile(variate.NewSource(3), sample, 0.95, -5)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("rejects tiny samples", func(t *testing.T) {
		_, err := BootstrapPercentile(variate.NewSource(3), []float64{1}, 0.95, 100)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestBootstrapBCa(t *testing.T) {
	t.Run("reduces to percentile for symmetric data", func(t *testing.T) {
		// Symmetric sample: jackknife acceleration is exactly zero and
		// the bias correction is near zero, so both methods read nearly
		// the same quantiles off the shared bootstrap distribution.
		sample := make([]float64, 20)
		for i := range sample {
			sample[i] = float64(i + 1)
		}

		pct, err := BootstrapPercentile(variate.NewSource(99), sample, 0.95, 2000)
		require.NoError(t, err)
		bca, err := BootstrapBCa(variate.NewSource(99), sample, 0.95, 2000)
		require.NoError(t, err)

		assert.InDelta(t, pct.Lower, bca.Lower, 0.3)
		assert.InDelta(t, pct.Upper, bca.Upper, 0.3)
	})

	t.Run("acceleration is zero for symmetric data", func(t *testing.T) {
		assert.Zero(t, jackknifeAcceleration([]float64{1, 2, 3, 4, 5}))
	})

	t.Run("acceleration reflects skew", func(t *testing.T) {
		skewed := []float64{1, 1, 1, 2, 2, 3, 5, 9, 20}
		assert.NotZero(t, jackknifeAcceleration(skewed))
	})

	t.Run("shifts bounds for skewed data", func(t *testing.T) {
		skewed := []float64{1, 1, 2, 2, 2, 3, 3, 4, 6, 9, 15, 30}

		pct, err := BootstrapPercentile(variate.NewSource(5), skewed, 0.95, 2000)
		require.NoError(t, err)
		bca, err := BootstrapBCa(variate.NewSource(5), skewed, 0.95, 2000)
		require.NoError(t, err)

		shifted := pct.Lower != bca.Lower || pct.Upper != bca.Upper
		assert.True(t, shifted, "expected BCa to adjust at least one bound")
	})

	t.Run("rejects samples below the jackknife minimum", func(t *testing.T) {
		_, err := BootstrapBCa(variate.NewSource(3), []float64{1, 2}, 0.95, 100)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("deterministic given a seed", func(t *testing.T) {
		sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}
		a, err := BootstrapBCa(variate.NewSource(17), sample, 0.9, 500)
		require.NoError(t, err)
		b, err := BootstrapBCa(variate.NewSource(17), sample, 0.9, 500)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestQuantile(t *testing.T) {
	values := []float64{7, 1, 5, 3, 9}
	sort.Float64s(values)

	t.Run("interpolates between order statistics", func(t *testing.T) {
		assert.Equal(t, 1.0, Quantile(values, 0))
		assert.Equal(t, 9.0, Quantile(values, 1))
		assert.Equal(t, 5.0, Quantile(values, 0.5))
		assert.InDelta(t, 3.0, Quantile(values, 0.25), 1e-12)
		assert.InDelta(t, 7.0, Quantile(values, 0.75), 1e-12)
		assert.InDelta(t, 2.0, Quantile(values, 0.125), 1e-12)
	})

	t.Run("edge cases", func(t *testing.T) {
		assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
		assert.Equal(t, 4.0, Quantile([]float64{4}, 0.8))
	})
}
