// Package channel models the ITS (information-theoretically secure)
// channel layer that every higher protocol — DKG, USS, bootstrap — rides
// on top of.
//
// Channels don't carry cryptographic secrecy here; that comes from the
// PSK established during bootstrap and the physical key-agreement layer
// this package stands in for. What IS real is the Wegman-Carter MAC: the
// same GF(M61) polynomial-evaluation primitive shared across Shamir, USS,
// and the wire authentication tag computed here.
package channel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/polynomial"
)

// ErrChannelClosed is a ChannelError: an operation was attempted on a
// closed channel.
var ErrChannelClosed = errors.New("channel: channel is not active")

// ErrPSKTooShort is a ChannelError: the PSK does not carry enough
// key material for the requested run index.
var ErrPSKTooShort = errors.New("channel: PSK too short for requested run index")

// ID identifies a channel by its unordered pair of endpoints.
type ID struct {
	A, B int
}

// canonicalID returns the (lower, higher) ordering of a and b so the same
// channel is named consistently regardless of which side asks.
func canonicalID(a, b int) ID {
	if a < b {
		return ID{A: a, B: b}
	}
	return ID{A: b, B: a}
}

// Channel is an authenticated ITS channel between two nodes.
type Channel interface {
	ChannelID() ID
	GenerateKeyBits(nBits int) ([]byte, error)
	Authenticate(data polynomial.High, runIdx int) (field.Element, error)
	VerifyMAC(data polynomial.High, tag field.Element, runIdx int) (bool, error)
	AdvanceRun()
	Close()
}

// macKeysFromPSK extracts the (r, s) Wegman-Carter MAC keys for a given
// run index from a PSK.
//
// Layout: the first 32 bytes of the PSK are reserved for key-material
// expansion seeding; each run's MAC keys occupy 16 bytes starting at
// offset 32 + runIdx*18 + 2 (the 2-byte gap is reserved for a future
// per-run tag, unused here).
func macKeysFromPSK(psk []byte, runIdx int) (r, s field.Element, err error) {
	off := 32 + runIdx*18 + 2
	if off+16 > len(psk) {
		return 0, 0, fmt.Errorf("%w: run_idx=%d", ErrPSKTooShort, runIdx)
	}
	rRaw := beUint64(psk[off : off+8])
	sRaw := beUint64(psk[off+8 : off+16])
	return field.New(rRaw), field.New(sRaw), nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// MACTag computes the Wegman-Carter MAC: tag = (coeffs(r) + s) mod M61,
// where coeffs is evaluated high-degree-first (the same polynomial
// convention Shamir and USS use in low-first form, flipped).
func MACTag(coeffs polynomial.High, r, s field.Element) field.Element {
	return polynomial.HornerHigh(coeffs, r).Add(s)
}

// MockChannel simulates an ITS channel between two nodes: synthetic key
// material expanded deterministically from a hash-forward counter, and a
// real GF(M61) Wegman-Carter MAC computed from PSK-derived keys.
//
// The MAC is the part worth testing here — it's the same primitive
// Shamir, USS, and DKG share. Key generation is simulated; the real
// physical key-agreement step isn't modeled in this package.
type MockChannel struct {
	nodeA, nodeB int
	psk          []byte
	throughputBps int

	mu                 sync.Mutex
	runIdx             int
	totalBitsGenerated int
	active             bool
	rngState           uint64
}

// NewMockChannel creates a simulated channel between nodeA and nodeB
// backed by a shared PSK.
func NewMockChannel(nodeA, nodeB int, psk []byte, throughputBps int) *MockChannel {
	return &MockChannel{
		nodeA:         nodeA,
		nodeB:         nodeB,
		psk:           psk,
		throughputBps: throughputBps,
		active:        true,
		rngState:      beUint64(firstN(psk, 8)),
	}
}

func firstN(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}

// ChannelID returns the channel's canonical (lower, higher) endpoint ID.
func (c *MockChannel) ChannelID() ID {
	return canonicalID(c.nodeA, c.nodeB)
}

// GenerateKeyBits produces nBits of simulated ITS key material, returned
// as ceil(nBits/8) bytes, by repeatedly hashing a forward-incrementing
// counter seeded from the PSK.
func (c *MockChannel) GenerateKeyBits(nBits int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return nil, ErrChannelClosed
	}

	nBytes := (nBits + 7) / 8
	result := make([]byte, 0, nBytes+32)
	for len(result) < nBytes {
		c.rngState++
		var counterBytes [8]byte
		v := c.rngState
		for i := 7; i >= 0; i-- {
			counterBytes[i] = byte(v)
			v >>= 8
		}
		digest := blake3.Sum256(counterBytes[:])
		result = append(result, digest[:]...)
	}
	c.totalBitsGenerated += nBits
	return result[:nBytes], nil
}

// Authenticate computes a MAC tag on data using this channel's PSK-derived
// keys for the given run index, or the channel's current run if runIdx is
// negative.
func (c *MockChannel) Authenticate(data polynomial.High, runIdx int) (field.Element, error) {
	c.mu.Lock()
	active := c.active
	if runIdx < 0 {
		runIdx = c.runIdx
	}
	psk := c.psk
	c.mu.Unlock()

	if !active {
		return 0, ErrChannelClosed
	}
	r, s, err := macKeysFromPSK(psk, runIdx)
	if err != nil {
		return 0, err
	}
	return MACTag(data, r, s), nil
}

// VerifyMAC checks whether tag is the correct MAC for data at runIdx.
func (c *MockChannel) VerifyMAC(data polynomial.High, tag field.Element, runIdx int) (bool, error) {
	computed, err := c.Authenticate(data, runIdx)
	if err != nil {
		return false, err
	}
	return computed == tag, nil
}

// AdvanceRun moves the channel to the next run, rotating MAC keys.
func (c *MockChannel) AdvanceRun() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runIdx++
}

// Close deactivates the channel; further operations fail with
// ErrChannelClosed.
func (c *MockChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

// TotalBitsGenerated reports how much key material has been produced over
// this channel's lifetime.
func (c *MockChannel) TotalBitsGenerated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBitsGenerated
}
