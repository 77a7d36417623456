package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/liun/pkg/channel"
	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/polynomial"
)

func testPSK(fill byte) []byte {
	psk := make([]byte, 256)
	for i := range psk {
		psk[i] = fill
	}
	return psk
}

func TestMockChannelAuthenticateAndVerify(t *testing.T) {
	psk := testPSK(0x42)
	ch := channel.NewMockChannel(1, 2, psk, 2_000_000)

	data := polynomial.High{field.New(7), field.New(5), field.New(3)}
	tag, err := ch.Authenticate(data, 0)
	require.NoError(t, err)

	ok, err := ch.VerifyMAC(data, tag, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ch.VerifyMAC(data, tag.Add(field.New(1)), 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMockChannelDifferentRunsDifferentKeys(t *testing.T) {
	psk := testPSK(0x7a)
	ch := channel.NewMockChannel(1, 2, psk, 2_000_000)
	data := polynomial.High{field.New(99), field.New(1)}

	tag0, err := ch.Authenticate(data, 0)
	require.NoError(t, err)
	tag1, err := ch.Authenticate(data, 1)
	require.NoError(t, err)
	assert.NotEqual(t, tag0, tag1)
}

func TestMockChannelChannelIDIsCanonical(t *testing.T) {
	psk := testPSK(0x01)
	a := channel.NewMockChannel(5, 2, psk, 1000)
	b := channel.NewMockChannel(2, 5, psk, 1000)
	assert.Equal(t, a.ChannelID(), b.ChannelID())
	assert.Equal(t, 2, a.ChannelID().A)
	assert.Equal(t, 5, a.ChannelID().B)
}

func TestMockChannelGenerateKeyBitsLength(t *testing.T) {
	psk := testPSK(0x55)
	ch := channel.NewMockChannel(1, 2, psk, 1000)

	bits, err := ch.GenerateKeyBits(100)
	require.NoError(t, err)
	assert.Len(t, bits, 13) // ceil(100/8)
	assert.Equal(t, 100, ch.TotalBitsGenerated())
}

func TestMockChannelCloseRejectsFurtherOps(t *testing.T) {
	psk := testPSK(0x99)
	ch := channel.NewMockChannel(1, 2, psk, 1000)
	ch.Close()

	_, err := ch.GenerateKeyBits(8)
	assert.ErrorIs(t, err, channel.ErrChannelClosed)

	_, err = ch.Authenticate(polynomial.High{field.New(1)}, 0)
	assert.ErrorIs(t, err, channel.ErrChannelClosed)
}

func TestMockChannelRejectsShortPSK(t *testing.T) {
	shortPSK := make([]byte, 40)
	ch := channel.NewMockChannel(1, 2, shortPSK, 1000)
	_, err := ch.Authenticate(polynomial.High{field.New(1)}, 5)
	assert.ErrorIs(t, err, channel.ErrPSKTooShort)
}
