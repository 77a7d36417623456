package polynomial_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/polynomial"
)

func randPoly(r *rand.Rand, degree int) polynomial.Low {
	coeffs := make(polynomial.Low, degree+1)
	for i := range coeffs {
		coeffs[i] = field.Rand(r)
	}
	return coeffs
}

func TestLagrangeAndNewtonAgree(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	const degree = 5
	coeffs := randPoly(r, degree)

	xs := make([]field.Element, degree+1)
	for i := range xs {
		xs[i] = field.New(uint64(i + 1))
	}
	points := make([]polynomial.Point, len(xs))
	for i, x := range xs {
		points[i] = polynomial.Point{X: x, Y: polynomial.HornerLow(coeffs, x)}
	}

	target := field.New(1000)
	want := polynomial.HornerLow(coeffs, target)

	gotLagrange, err := polynomial.LagrangeAt(points, target)
	require.NoError(t, err)
	assert.Equal(t, want, gotLagrange)

	ip, err := polynomial.NewInterpolatingPoly(points)
	require.NoError(t, err)
	gotNewton := ip.EvalAt(target)
	assert.Equal(t, want, gotNewton)
	assert.Equal(t, gotLagrange, gotNewton)
}

func TestHornerHighVsLow(t *testing.T) {
	// low-first [c0, c1, c2] == high-first [c2, c1, c0]
	low := polynomial.Low{field.New(3), field.New(5), field.New(7)}
	high := polynomial.High{field.New(7), field.New(5), field.New(3)}
	x := field.New(11)
	assert.Equal(t, polynomial.HornerLow(low, x), polynomial.HornerHigh(high, x))
}

func TestLagrangeBasisSumsToOne(t *testing.T) {
	xs := []field.Element{field.New(1), field.New(2), field.New(3), field.New(4)}
	var sum field.Element
	for i := range xs {
		b, err := polynomial.LagrangeBasisAt(xs, i, field.New(0))
		require.NoError(t, err)
		sum = sum.Add(b)
	}
	assert.Equal(t, field.New(1), sum)
}
