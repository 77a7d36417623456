// Package field implements arithmetic in GF(M61), the Mersenne prime
// field of order 2^61 - 1.
//
// M61 is the shared field for Shamir sharing, unconditionally secure
// signatures, and the Wegman-Carter MAC used by the channel layer — all
// three primitives interoperate because they agree on the same modulus.
package field

import (
	"math/bits"

	"github.com/cronokirby/saferith"
)

// M61 is 2^61 - 1, the modulus of the field.
const M61 uint64 = (1 << 61) - 1

// Element is a member of GF(M61). The zero value is a valid element (0).
// Every Element returned by a function in this package satisfies
// 0 <= uint64(Element) < M61; callers must not construct values outside
// that range directly.
type Element uint64

// New reduces v into the canonical range [0, M61).
func New(v uint64) Element {
	if v >= M61 {
		v %= M61
	}
	return Element(v)
}

// Uint64 returns the canonical representative of e.
func (e Element) Uint64() uint64 { return uint64(e) }

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e == 0 }

func reduce128(hi, lo uint64) uint64 {
	high := (hi << 3) + (lo >> 61)
	low := lo & M61
	r := high + low
	if r >= M61 {
		r -= M61
	}
	return r
}

// Add returns (e + other) mod M61.
func (e Element) Add(other Element) Element {
	s := uint64(e) + uint64(other)
	if s >= M61 {
		s -= M61
	}
	return Element(s)
}

// Sub returns (e - other) mod M61.
func (e Element) Sub(other Element) Element {
	a, b := uint64(e), uint64(other)
	if a >= b {
		return Element(a - b)
	}
	return Element(M61 - (b - a))
}

// Mul returns (e * other) mod M61, via fast Mersenne reduction of the
// 122-bit intermediate product.
func (e Element) Mul(other Element) Element {
	hi, lo := bits.Mul64(uint64(e), uint64(other))
	return Element(reduce128(hi, lo))
}

// Neg returns (-e) mod M61.
func (e Element) Neg() Element {
	if e == 0 {
		return 0
	}
	return Element(M61 - uint64(e))
}

// Inv returns the multiplicative inverse of e via Fermat's little theorem:
// e^(M61-2) mod M61. Fails with ErrInvertZero if e is zero.
func (e Element) Inv() (Element, error) {
	if e == 0 {
		return 0, ErrInvertZero
	}
	m := saferith.ModulusFromUint64(M61)
	base := new(saferith.Nat).SetUint64(uint64(e))
	exp := new(saferith.Nat).SetUint64(M61 - 2)
	out := new(saferith.Nat).Exp(base, exp, m)
	return Element(natUint64(out)), nil
}

// natUint64 extracts the little native value of a Nat known to fit in
// 64 bits (true here since every Nat we exponentiate is reduced mod M61).
func natUint64(n *saferith.Nat) uint64 {
	buf := n.Bytes()
	var v uint64
	for _, b := range buf {
		v = (v << 8) | uint64(b)
	}
	return v
}

// Div returns (e / other) mod M61 = e * other^-1 mod M61.
func (e Element) Div(other Element) (Element, error) {
	inv, err := other.Inv()
	if err != nil {
		return 0, err
	}
	return e.Mul(inv), nil
}

// Source supplies uniform random 64-bit words for field sampling.
// math/rand.Rand and math/rand/v2.Rand both satisfy this via Uint64().
// Passing a deterministic Source makes every algorithm in this module
// byte-exactly reproducible; the core never reads process-wide randomness.
type Source interface {
	Uint64() uint64
}

// Rand samples a uniform random element of GF(M61) via rejection sampling
// over 61-bit draws.
func Rand(src Source) Element {
	for {
		r := src.Uint64() >> 3 // keep the high 61 bits
		if r < M61 {
			return Element(r)
		}
	}
}

// RandNonzero samples a uniform random nonzero element of GF(M61).
func RandNonzero(src Source) Element {
	for {
		r := Rand(src)
		if r != 0 {
			return r
		}
	}
}
