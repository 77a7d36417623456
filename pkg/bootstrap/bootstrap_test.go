package bootstrap_test

import (
	"bytes"
	"crypto/rand"
	mathrand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bs "github.com/luxfi/liun/pkg/bootstrap"
	"github.com/luxfi/liun/pkg/field"
)

type mrand struct{ r *mathrand.Rand }

func (m mrand) Uint64() uint64 { return m.r.Uint64() }

func TestShamirEncoderRoundTrip(t *testing.T) {
	src := mrand{mathrand.New(mathrand.NewPCG(1, 2))}
	enc := bs.NewShamirEncoder(bs.DefaultK, bs.DefaultThreshold)

	secret := field.New(123456789)
	shares, err := enc.Encode(secret, src)
	require.NoError(t, err)
	require.Len(t, shares, bs.DefaultK)

	got, err := enc.Decode(shares[:bs.DefaultThreshold])
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestShamirEncoderDetectsCorruption(t *testing.T) {
	src := mrand{mathrand.New(mathrand.NewPCG(3, 4))}
	enc := bs.NewShamirEncoder(bs.DefaultK, bs.DefaultThreshold)
	shares, err := enc.Encode(field.New(42), src)
	require.NoError(t, err)

	shares[5].Y = shares[5].Y.Add(field.New(1))
	corrupt := enc.DetectCorrupt(shares)
	assert.Contains(t, corrupt, 5)
}

func TestGenerateSecretsProducesDistinct32ByteValues(t *testing.T) {
	session := bs.NewBootstrapSession(10, 7)
	secrets, err := session.GenerateSecrets(rand.Reader)
	require.NoError(t, err)
	require.Len(t, secrets, 10)
	for _, s := range secrets {
		assert.Len(t, s, 32)
	}
	assert.False(t, bytes.Equal(secrets[0], secrets[1]))
}

func TestDerivePSKIsDeterministic(t *testing.T) {
	secret := []byte("shared-secret-material-for-testing")
	a := bs.DerivePSK(secret, 64)
	b := bs.DerivePSK(secret, 64)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	other := bs.DerivePSK([]byte("different"), 64)
	assert.False(t, bytes.Equal(a, other))
}

func TestMultiPathBootstrapCleanPathsSucceed(t *testing.T) {
	mpb := bs.NewMultiPathBootstrap(20, 14)
	targets := make([]int, 25)
	for i := range targets {
		targets[i] = i + 1
	}

	result, err := mpb.Bootstrap(targets, rand.Reader, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, result.NTargets)
	assert.Equal(t, 0, result.Observed)
	assert.Equal(t, 20, result.Clean)
	assert.True(t, result.Success)
	assert.Len(t, result.PSKs, 20)
}

func TestMultiPathBootstrapFullEclipseFails(t *testing.T) {
	mpb := bs.NewMultiPathBootstrap(20, 14)
	targets := make([]int, 20)
	for i := range targets {
		targets[i] = i + 1
	}

	observeAll := func(int, []byte) bool { return true }
	result, err := mpb.Bootstrap(targets, rand.Reader, observeAll, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, result.Observed)
	assert.Equal(t, 0, result.Clean)
	assert.False(t, result.Success)
}

func TestMultiPathBootstrapOneCleanPathSucceeds(t *testing.T) {
	mpb := bs.NewMultiPathBootstrap(20, 14)
	targets := make([]int, 20)
	for i := range targets {
		targets[i] = i + 1
	}

	observeAllButOne := func(tid int, _ []byte) bool { return tid != targets[0] }
	result, err := mpb.Bootstrap(targets, rand.Reader, observeAllButOne, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Clean)
	assert.True(t, result.Success)
}

func TestTemporalBootstrapAccumulatesAcrossSessions(t *testing.T) {
	tb := bs.NewTemporalBootstrap(5, 4)
	targets1 := []int{1, 2, 3, 4, 5}
	targets2 := []int{6, 7, 8, 9, 10}

	_, err := tb.RunSession(targets1, rand.Reader)
	require.NoError(t, err)
	_, err = tb.RunSession(targets2, rand.Reader)
	require.NoError(t, err)

	assert.Equal(t, 10, tb.TotalChannels())
	assert.Len(t, tb.Sessions, 2)
}
