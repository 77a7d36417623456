// Package uss implements unconditionally secure signatures: threshold
// polynomial signatures over GF(M61) whose unforgeability holds against a
// computationally unbounded adversary, not just a polynomial-time one.
//
// Signing: sigma = F(m) for a secret degree-d polynomial F, held only as
// distributed shares. Verification checks that the claimed (message,
// sigma) pair is consistent with a verifier's own evaluation points of F.
package uss

import (
	"fmt"

	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/polynomial"
)

// SigningPolynomial is a secret polynomial F(x) of a fixed degree.
//
// In production nobody ever holds the full polynomial — it exists only as
// shares distributed across a committee. This type is for tests and
// simulation: constructing a reference F to derive shares and verification
// points from.
type SigningPolynomial struct {
	degree int
	coeffs polynomial.Low
}

// NewSigningPolynomial samples a random degree-d polynomial over GF(M61).
func NewSigningPolynomial(degree int, src field.Source) *SigningPolynomial {
	coeffs := make(polynomial.Low, degree+1)
	for i := range coeffs {
		coeffs[i] = field.Rand(src)
	}
	return &SigningPolynomial{degree: degree, coeffs: coeffs}
}

// Degree returns F's degree.
func (p *SigningPolynomial) Degree() int { return p.degree }

// Sign computes sigma = F(message).
func (p *SigningPolynomial) Sign(message field.Element) field.Element {
	return polynomial.HornerLow(p.coeffs, message)
}

// EvalAt evaluates F at an arbitrary point.
func (p *SigningPolynomial) EvalAt(x field.Element) field.Element {
	return polynomial.HornerLow(p.coeffs, x)
}

// Share is a signing share: a committee member's (node ID, F(node ID)) pair.
type Share struct {
	NodeID field.Element
	Y      field.Element
}

// GetShare returns the signing share for a single node ID.
func (p *SigningPolynomial) GetShare(nodeID field.Element) Share {
	return Share{NodeID: nodeID, Y: p.EvalAt(nodeID)}
}

// GetShares returns signing shares for a set of node IDs.
func (p *SigningPolynomial) GetShares(nodeIDs []field.Element) []Share {
	shares := make([]Share, len(nodeIDs))
	for i, id := range nodeIDs {
		shares[i] = p.GetShare(id)
	}
	return shares
}

// GetVerificationPoints returns (x, F(x)) evaluation points for a verifier.
func (p *SigningPolynomial) GetVerificationPoints(xs []field.Element) []polynomial.Point {
	pts := make([]polynomial.Point, len(xs))
	for i, x := range xs {
		pts[i] = polynomial.Point{X: x, Y: p.EvalAt(x)}
	}
	return pts
}

// PartialSigner is a committee member holding one signing share of F.
type PartialSigner struct {
	NodeID field.Element
	ShareY field.Element
}

// NewPartialSigner wraps a committee member's signing share.
func NewPartialSigner(nodeID, shareY field.Element) *PartialSigner {
	return &PartialSigner{NodeID: nodeID, ShareY: shareY}
}

// PartialSign produces a partial signature: share_y * L_i(message), the
// node's Lagrange-weighted contribution toward sigma = F(message).
// committeeIDs lists every node ID in the signing committee, in the order
// used to compute the basis.
func (s *PartialSigner) PartialSign(message field.Element, committeeIDs []field.Element) (field.Element, error) {
	idx := -1
	for i, id := range committeeIDs {
		if id == s.NodeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("uss: node %v is not in the signing committee", s.NodeID)
	}
	basis, err := polynomial.LagrangeBasisAt(committeeIDs, idx, message)
	if err != nil {
		return 0, err
	}
	return s.ShareY.Mul(basis), nil
}

// SignatureCombiner sums partial signatures into a full signature.
type SignatureCombiner struct{}

// Combine sums partial signatures to get sigma = F(message).
func (SignatureCombiner) Combine(partials []field.Element) field.Element {
	var result field.Element
	for _, p := range partials {
		result = result.Add(p)
	}
	return result
}

// Verifier holds a set of verification points of F and checks whether a
// claimed signature is consistent with them.
//
// A verifier typically holds degree/2 evaluation points. Together with a
// claimed (message, sigma) pair, that's degree/2 + 1 points — enough to
// disprove a forgery if the total exceeds degree+1, but not enough to
// recover F itself.
type Verifier struct {
	Points []polynomial.Point
	Degree int
}

// NewVerifier constructs a Verifier from known (x, F(x)) points.
func NewVerifier(points []polynomial.Point, degree int) *Verifier {
	return &Verifier{Points: points, Degree: degree}
}

// Verify checks whether (message, sigma) is consistent with v's
// verification points.
//
// If the verifier's points plus the claimed pair total at most degree+1,
// there aren't enough points to over-determine the polynomial, so the
// claim can't be disproven and is accepted. Otherwise the first degree+1
// points are interpolated and every remaining point, including the
// claimed pair if it falls outside that prefix, must agree with the
// interpolant.
func (v *Verifier) Verify(message, sigma field.Element) (bool, error) {
	allPoints := make([]polynomial.Point, len(v.Points), len(v.Points)+1)
	copy(allPoints, v.Points)
	allPoints = append(allPoints, polynomial.Point{X: message, Y: sigma})
	n := len(allPoints)

	if n <= v.Degree+1 {
		return true, nil
	}

	basis := allPoints[:v.Degree+1]
	for i := v.Degree + 1; i < n; i++ {
		xi, yi := allPoints[i].X, allPoints[i].Y
		expected, err := polynomial.LagrangeAt(basis, xi)
		if err != nil {
			return false, err
		}
		if expected != yi {
			return false, nil
		}
	}
	return true, nil
}

// DisputeResolver adjudicates non-repudiation disputes by majority vote
// among independent verifiers.
type DisputeResolver struct{}

// Verdict is the outcome of a dispute resolution.
type Verdict string

const (
	VerdictValid        Verdict = "valid"
	VerdictForged        Verdict = "forged"
	VerdictInconclusive Verdict = "inconclusive"
)

// Resolve resolves a dispute over (message, sigma) by polling verifiers and
// taking a majority vote.
func (DisputeResolver) Resolve(message, sigma field.Element, verifiers []*Verifier) (Verdict, error) {
	accept, reject := 0, 0
	for _, v := range verifiers {
		ok, err := v.Verify(message, sigma)
		if err != nil {
			return "", err
		}
		if ok {
			accept++
		} else {
			reject++
		}
	}
	switch {
	case accept > reject:
		return VerdictValid, nil
	case reject > accept:
		return VerdictForged, nil
	default:
		return VerdictInconclusive, nil
	}
}

// SignatureBudget tracks signature usage to enforce epoch rotation: after
// about degree/2 distinct signatures, enough public (message, sigma) pairs
// exist for anyone to reconstruct F via interpolation.
type SignatureBudget struct {
	degree         int
	maxSignatures  int
	used           int
	signedMessages map[field.Element]struct{}
}

// NewSignatureBudget creates a budget for a degree-d signing polynomial,
// capped at floor(degree/2) signatures.
func NewSignatureBudget(degree int) *SignatureBudget {
	return &SignatureBudget{
		degree:         degree,
		maxSignatures:  degree / 2,
		signedMessages: make(map[field.Element]struct{}),
	}
}

// CanSign reports whether another signature can still be issued.
func (b *SignatureBudget) CanSign() bool {
	return b.used < b.maxSignatures
}

// Record marks message as signed. Re-recording the same message (e.g. a
// retried signing request) does not consume additional budget.
func (b *SignatureBudget) Record(message field.Element) {
	if _, ok := b.signedMessages[message]; !ok {
		b.signedMessages[message] = struct{}{}
		b.used++
	}
}

// Remaining reports how many more signatures may be issued.
func (b *SignatureBudget) Remaining() int {
	r := b.maxSignatures - b.used
	if r < 0 {
		return 0
	}
	return r
}
