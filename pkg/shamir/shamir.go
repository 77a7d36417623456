// Package shamir implements information-theoretically secure secret
// sharing over GF(M61).
package shamir

import (
	"errors"
	"fmt"

	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/polynomial"
)

// Share is a single (x, y) point on a Shamir polynomial, with y = f(x).
type Share struct {
	X field.Element
	Y field.Element
}

// ErrEmptyShares is a DomainError: reconstruction needs at least one share.
var ErrEmptyShares = errors.New("shamir: need at least one share")

// Split shares secret into n shares with threshold k: it samples a random
// degree-(k-1) polynomial f with f(0) = secret and returns
// [(i, f(i)) : i = 1..n].
func Split(secret field.Element, n, k int, src field.Source) ([]Share, error) {
	if k < 1 {
		return nil, fmt.Errorf("shamir: threshold k must be >= 1, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("shamir: n must be >= k, got n=%d k=%d", n, k)
	}

	coeffs := make(polynomial.Low, k)
	coeffs[0] = secret
	for i := 1; i < k; i++ {
		coeffs[i] = field.Rand(src)
	}

	shares := make([]Share, n)
	for i := 0; i < n; i++ {
		x := field.New(uint64(i + 1))
		shares[i] = Share{X: x, Y: polynomial.HornerLow(coeffs, x)}
	}
	return shares, nil
}

func toPoints(shares []Share) []polynomial.Point {
	pts := make([]polynomial.Point, len(shares))
	for i, s := range shares {
		pts[i] = polynomial.Point{X: s.X, Y: s.Y}
	}
	return pts
}

// Reconstruct recovers the shared secret f(0) from k or more shares via
// Lagrange interpolation at x=0.
func Reconstruct(shares []Share) (field.Element, error) {
	if len(shares) == 0 {
		return 0, ErrEmptyShares
	}
	return polynomial.LagrangeAt(toPoints(shares), field.New(0))
}

// ReconstructAt evaluates the shared polynomial at an arbitrary target
// point via Lagrange interpolation.
func ReconstructAt(shares []Share, target field.Element) (field.Element, error) {
	if len(shares) == 0 {
		return 0, ErrEmptyShares
	}
	return polynomial.LagrangeAt(toPoints(shares), target)
}

// ConsistencyCheck detects corrupt shares by leave-one-out interpolation:
// for each share, it interpolates degree+1 of the remaining shares and
// checks that the held share agrees with the interpolant at its own x.
//
// Returns the indices into shares that are inconsistent. Returns an empty
// slice (not an error) when len(shares) <= degree+1 — there isn't enough
// redundancy to distinguish corruption from honest variation, so no
// candidates are reported. This is detection, not correction: with many
// corrupt shares, honest shares may also be flagged; callers should treat
// the result as a set of suspects, not a proof.
func ConsistencyCheck(shares []Share, degree int) []int {
	n := len(shares)
	if n <= degree+1 {
		return nil
	}

	var corrupt []int
	for i := 0; i < n; i++ {
		others := make([]Share, 0, degree+1)
		for j, s := range shares {
			if j == i {
				continue
			}
			others = append(others, s)
			if len(others) == degree+1 {
				break
			}
		}
		expected, err := ReconstructAt(others, shares[i].X)
		if err != nil || expected != shares[i].Y {
			corrupt = append(corrupt, i)
		}
	}
	return corrupt
}
