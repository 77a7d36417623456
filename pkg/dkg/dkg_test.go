package dkg_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/liun/pkg/dkg"
	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/polynomial"
)

func nodeIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func TestDKGHonestRunCombinesShares(t *testing.T) {
	r := rand.New(rand.NewSource(100))
	ids := nodeIDs(10)
	d := dkg.New(ids, 7, r)

	shares, err := d.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, shares, len(ids))
	assert.Equal(t, dkg.StateCompleted, d.State())

	secret, err := d.GetCombinedSecret()
	require.NoError(t, err)

	// The combined secret must equal the sum of individual contributions'
	// secrets, since f(0) = sum_i f_i(0). Each f_i(0) is recovered by
	// interpolating the first Threshold shares node i sent.
	var want field.Element
	for _, sender := range ids {
		points := make([]polynomial.Point, 0, d.Threshold)
		for _, receiver := range ids[:d.Threshold] {
			y, ok := d.SentShare(sender, receiver)
			require.True(t, ok)
			points = append(points, polynomial.Point{X: field.New(uint64(receiver)), Y: y})
		}
		fi0, err := polynomial.LagrangeAt(points, field.New(0))
		require.NoError(t, err)
		want = want.Add(fi0)
	}
	assert.Equal(t, want, secret)
}

func TestDKGDetectsInjectedCorruption(t *testing.T) {
	r := rand.New(rand.NewSource(101))
	ids := nodeIDs(12)
	d := dkg.New(ids, 8, r)

	require.NoError(t, d.GenerateContributions(context.Background()))
	require.NoError(t, d.DistributeShares(context.Background()))

	d.InjectCorruptShares(ids[0], nil)

	corrupt, err := d.VerifyConsistency()
	require.NoError(t, err)
	assert.Contains(t, corrupt, ids[0])

	d.CombineShares()
	assert.Equal(t, dkg.StateCompleted, d.State())
}

func TestDKGSkipVerificationForBenchmarks(t *testing.T) {
	r := rand.New(rand.NewSource(102))
	ids := nodeIDs(5)
	d := dkg.New(ids, 3, r)

	shares, err := d.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, shares, len(ids))
}

func TestConsistencyVerifierIgnoresUnderpoweredSets(t *testing.T) {
	v := &dkg.ConsistencyVerifier{NodeIDs: []int{1, 2, 3}, Degree: 2}
	shares := map[int]map[int]field.Element{
		1: {1: field.New(1), 2: field.New(2), 3: field.New(3)},
	}
	corrupt, err := v.VerifyShares(shares)
	require.NoError(t, err)
	assert.Empty(t, corrupt)
}

func TestEpochManagerTracksHistory(t *testing.T) {
	r := rand.New(rand.NewSource(103))
	ids := nodeIDs(6)
	mgr := dkg.NewEpochManager(ids, 4)

	d1, err := mgr.NewEpoch(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.Epoch())
	assert.Same(t, d1, mgr.CurrentDKG())

	d2, err := mgr.NewEpoch(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 2, mgr.Epoch())
	assert.Same(t, d2, mgr.CurrentDKG())
	assert.NotSame(t, d1, d2)
}
