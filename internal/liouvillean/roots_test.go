package liouvillean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuadraticRootApproaching(t *testing.T) {
	// |(-5,0,0) + (1,0,0)*t| = 1 -> t = 4 (first touch at distance 1).
	t1, ok := SmallestPositiveQuadraticRoot(1, 2*-5, 25-1)
	assert.True(t, ok)
	assert.InDelta(t, 4.0, t1, 1e-9)
}

func TestQuadraticRootNoRealSolution(t *testing.T) {
	_, ok := SmallestPositiveQuadraticRoot(1, 0, 100)
	assert.False(t, ok)
}

func TestQuadraticRootLinearDegenerate(t *testing.T) {
	// a=0: b*t+c=0 -> t = -c/b.
	t1, ok := SmallestPositiveQuadraticRoot(0, 2, -10)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, t1, 1e-9)
}

func TestPolyEvaluatesValueAndDerivative(t *testing.T) {
	// 2 + 3t + 4t^2 at t=2: val=2+6+16=24, deriv=3+16=19.
	val, deriv := Poly([]float64{2, 3, 4}, 2)
	assert.InDelta(t, 24.0, val, 1e-9)
	assert.InDelta(t, 19.0, deriv, 1e-9)
}

func TestSmallestPositiveRootFindsCubicRoot(t *testing.T) {
	// (t-3)(t-5)(t-7) = t^3 -15t^2 +71t -105, root at t=3 first.
	coeffs := []float64{-105, 71, -15, 1}
	root, ok := SmallestPositiveRoot(coeffs, 20, 256)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, root, 1e-6)
}

func TestSmallestPositiveRootReturnsFalseBeyondHorizon(t *testing.T) {
	coeffs := []float64{-105, 71, -15, 1}
	_, ok := SmallestPositiveRoot(coeffs, 1.0, 32)
	assert.False(t, ok)
}
