// Package node ties the field, channel, uss, and overlay packages
// together into a single network participant: a node establishes channels
// from PSKs it is given, installs its share from a completed DKG run, and
// then signs and verifies against the resulting threshold key.
package node

import (
	"errors"
	"fmt"

	"github.com/luxfi/liun/pkg/channel"
	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/overlay"
	"github.com/luxfi/liun/pkg/polynomial"
	"github.com/luxfi/liun/pkg/uss"
)

// ErrNotInitialized is returned by Sign/Verify when a node hasn't
// completed DKG participation yet.
var ErrNotInitialized = errors.New("node: not initialized for signing or verification")

// Node is a single participant in the network.
type Node struct {
	NodeID int

	Channels *ChannelTable

	signingShare  *field.Element
	partialSigner *uss.PartialSigner
	verifier      *uss.Verifier

	TrustScores map[int]float64
	Overlay     *overlay.Graph
}

// New creates a node with an empty channel table and no signing state.
func New(nodeID int) *Node {
	return &Node{
		NodeID:      nodeID,
		Channels:    NewChannelTable(),
		TrustScores: make(map[int]float64),
	}
}

// InitChannel establishes a channel to peerID from a shared PSK, using
// the supplied throughput (bits/sec) for the simulated key material rate.
func (n *Node) InitChannel(peerID int, psk []byte, throughputBps int) channel.Channel {
	ch := channel.NewMockChannel(n.NodeID, peerID, psk, throughputBps)
	n.Channels.Add(peerID, ch)
	return ch
}

// ParticipateDKG installs the signing capability produced by a completed
// DKG run: this node's combined share, and the verification points it
// will use to check others' signatures.
func (n *Node) ParticipateDKG(shareY field.Element, verificationPoints []polynomial.Point, degree int) {
	n.signingShare = &shareY
	n.partialSigner = uss.NewPartialSigner(field.New(uint64(n.NodeID)), shareY)
	n.verifier = uss.NewVerifier(verificationPoints, degree)
}

// Sign produces this node's partial signature contribution toward a
// threshold signature over message, within committeeIDs.
func (n *Node) Sign(message field.Element, committeeIDs []field.Element) (field.Element, error) {
	if n.partialSigner == nil {
		return 0, ErrNotInitialized
	}
	return n.partialSigner.PartialSign(message, committeeIDs)
}

// Verify checks a combined signature against this node's verification
// points.
func (n *Node) Verify(message, sigma field.Element) (bool, error) {
	if n.verifier == nil {
		return false, ErrNotInitialized
	}
	return n.verifier.Verify(message, sigma)
}

// ComputeTrust runs personalized PageRank seeded at this node over g (or
// the node's own overlay graph if g is nil), storing and returning the
// resulting trust scores.
func (n *Node) ComputeTrust(g *overlay.Graph) map[int]float64 {
	target := g
	if target == nil {
		target = n.Overlay
	}
	if target == nil {
		return map[int]float64{}
	}
	n.TrustScores = overlay.PersonalizedPageRank(n.NodeID, target, 0.85, 20)
	return n.TrustScores
}

// CombineSignatures sums partial signatures into a full threshold
// signature.
func CombineSignatures(partials []field.Element) field.Element {
	return uss.SignatureCombiner{}.Combine(partials)
}

// ResolveDispute adjudicates a signature dispute by majority vote among
// independent verifiers.
func ResolveDispute(message, sigma field.Element, verifiers []*uss.Verifier) (uss.Verdict, error) {
	return uss.DisputeResolver{}.Resolve(message, sigma, verifiers)
}

// String implements fmt.Stringer for logging.
func (n *Node) String() string {
	return fmt.Sprintf("node(id=%d, channels=%d)", n.NodeID, n.Channels.Count())
}
