package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 0.0, Variance(nil))
	// Sample variance of {1,2,3} is 1.
	assert.InDelta(t, 1.0, Variance([]float64{1, 2, 3}), 1e-12)
}

func TestCovariance(t *testing.T) {
	assert.Equal(t, 0.0, Covariance(nil, nil))
	assert.Equal(t, 0.0, Covariance([]float64{1, 2}, []float64{1}))

	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	// Cov(x, 2x) = 2*Var(x)
	assert.InDelta(t, 2*Variance(x), Covariance(x, y), 1e-12)
}

func TestCalculateReturns(t *testing.T) {
	assert.Empty(t, CalculateReturns([]float64{100}))

	returns := CalculateReturns([]float64{100, 110, 99})
	assert.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)
}

func TestLinearRegressionSlope(t *testing.T) {
	// Perfect line y = 3 + 2x: slope recovered exactly, intercept discarded.
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{5, 7, 9, 11, 13}
	assert.InDelta(t, 2.0, LinearRegressionSlope(x, y), 1e-12)

	assert.Equal(t, 0.0, LinearRegressionSlope([]float64{1}, []float64{1}))
	assert.Equal(t, 0.0, LinearRegressionSlope(x, x[:2]))
}

func TestJensenAlpha(t *testing.T) {
	// alpha = R_p - (rfr + beta*(R_m - rfr))
	alpha := JensenAlpha(0.01, 0.0001, 1.2, 0.008)
	assert.InDelta(t, 0.01-(0.0001+1.2*(0.008-0.0001)), alpha, 1e-15)

	// Beta 1 and zero rfr reduce alpha to the simple excess return.
	assert.InDelta(t, 0.002, JensenAlpha(0.01, 0, 1.0, 0.008), 1e-15)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.2345, 2))
	assert.Equal(t, 1.2346, Round(1.23456, 4))
	assert.Equal(t, -1.23, Round(-1.2349, 2))
	assert.Equal(t, 50.0, Round(50.004, 2))
}
