package shamir_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/shamir"
)

func TestSplitReconstructRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for n := 1; n <= 16; n++ {
		for k := 1; k <= n; k++ {
			secret := field.Rand(r)
			shares, err := shamir.Split(secret, n, k, r)
			require.NoError(t, err)
			require.Len(t, shares, n)

			// The first k shares reconstruct the secret.
			got, err := shamir.Reconstruct(shares[:k])
			require.NoError(t, err)
			assert.Equal(t, secret, got, "n=%d k=%d", n, k)
		}
	}
}

func TestSplitRejectsInvalidParams(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	_, err := shamir.Split(field.New(1), 5, 0, r)
	assert.Error(t, err)

	_, err = shamir.Split(field.New(1), 2, 5, r)
	assert.Error(t, err)
}

func TestReconstructRequiresShares(t *testing.T) {
	_, err := shamir.Reconstruct(nil)
	assert.ErrorIs(t, err, shamir.ErrEmptyShares)
}

func TestConsistencyCheckDetectsTamperedShare(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	n, k := 20, 14
	secret := field.Rand(r)
	shares, err := shamir.Split(secret, n, k, r)
	require.NoError(t, err)

	degree := k - 1
	tampered := make([]shamir.Share, len(shares))
	copy(tampered, shares)
	tampered[3].Y = tampered[3].Y.Add(field.New(1))

	corrupt := shamir.ConsistencyCheck(tampered, degree)
	assert.Contains(t, corrupt, 3)
}

func TestConsistencyCheckUnderpowered(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	shares, err := shamir.Split(field.New(5), 3, 3, r)
	require.NoError(t, err)
	// len(shares) == degree+1 exactly -> not enough redundancy.
	assert.Empty(t, shamir.ConsistencyCheck(shares, 2))
}
