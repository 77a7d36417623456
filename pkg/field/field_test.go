package field_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/liun/pkg/field"
)

func randElements(t *testing.T, r *rand.Rand, n int) []field.Element {
	t.Helper()
	out := make([]field.Element, n)
	for i := range out {
		out[i] = field.Rand(r)
	}
	return out
}

func TestFieldAxioms(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		abc := randElements(t, r, 3)
		a, b, c := abc[0], abc[1], abc[2]

		// commutativity
		assert.Equal(t, a.Add(b), b.Add(a))
		assert.Equal(t, a.Mul(b), b.Mul(a))

		// associativity
		assert.Equal(t, a.Add(b).Add(c), a.Add(b.Add(c)))
		assert.Equal(t, a.Mul(b).Mul(c), a.Mul(b.Mul(c)))

		// distributivity
		assert.Equal(t, a.Mul(b.Add(c)), a.Mul(b).Add(a.Mul(c)))

		// identities
		assert.Equal(t, a, a.Add(field.New(0)))
		assert.Equal(t, a, a.Mul(field.New(1)))

		// additive inverse
		assert.True(t, a.Add(a.Neg()).IsZero())

		// multiplicative inverse
		if !a.IsZero() {
			inv, err := a.Inv()
			require.NoError(t, err)
			assert.Equal(t, field.New(1), a.Mul(inv))
		}
	}
}

func TestInvertZeroFails(t *testing.T) {
	_, err := field.New(0).Inv()
	assert.ErrorIs(t, err, field.ErrInvertZero)
}

func TestSubAndNegConsistency(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		a := field.Rand(r)
		b := field.Rand(r)
		assert.Equal(t, a.Add(b.Neg()), a.Sub(b))
	}
}

func TestRandIsInRange(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		e := field.Rand(r)
		assert.Less(t, e.Uint64(), field.M61)
	}
	for i := 0; i < 1000; i++ {
		e := field.RandNonzero(r)
		assert.NotZero(t, e.Uint64())
	}
}

func TestMulMatchesBigExpectation(t *testing.T) {
	// (M61-1) * (M61-1) mod M61 == 1, since M61-1 == -1 mod M61.
	a := field.New(field.M61 - 1)
	got := a.Mul(a)
	assert.Equal(t, field.New(1), got)
}
