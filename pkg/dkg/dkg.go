// Package dkg implements distributed key generation over GF(M61): collective
// generation of a threshold signing polynomial with no trusted dealer.
//
// Each node generates a random degree-(k-1) polynomial and distributes
// shares to every other node. Shares are summed to produce a combined
// signing polynomial that no single party ever sees in full. All
// communication in production runs over pkg/channel's ITS channels; this
// package only handles the algebra and bookkeeping.
package dkg

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/polynomial"
)

// PolynomialContribution is one node's random polynomial contribution to a
// DKG round.
type PolynomialContribution struct {
	NodeID int
	Degree int
	coeffs polynomial.Low
}

// NewPolynomialContribution samples a fresh random degree-d polynomial for
// nodeID.
func NewPolynomialContribution(nodeID, degree int, src field.Source) *PolynomialContribution {
	coeffs := make(polynomial.Low, degree+1)
	for i := range coeffs {
		coeffs[i] = field.Rand(src)
	}
	return &PolynomialContribution{NodeID: nodeID, Degree: degree, coeffs: coeffs}
}

// Secret returns this node's individual secret, f_i(0).
func (c *PolynomialContribution) Secret() field.Element {
	return c.coeffs[0]
}

// ComputeShare computes f_i(targetID), the share owed to targetID.
func (c *PolynomialContribution) ComputeShare(targetID int) field.Element {
	return polynomial.HornerLow(c.coeffs, field.New(uint64(targetID)))
}

// ConsistencyVerifier detects corrupt DKG senders via pairwise consistency
// checks. In production this rides on pkg/channel's MACs; here it is
// checked algebraically directly against the distributed shares.
type ConsistencyVerifier struct {
	NodeIDs []int
	Degree  int
}

// VerifyShares checks that every sender's distributed shares lie on a
// single degree-d polynomial. sharesReceived maps sender -> {receiver:
// share value}. Returns the IDs of senders whose shares are inconsistent.
func (v *ConsistencyVerifier) VerifyShares(sharesReceived map[int]map[int]field.Element) ([]int, error) {
	var corrupt []int
	for senderID, shareMap := range sharesReceived {
		receivers := make([]int, 0, len(shareMap))
		for r := range shareMap {
			receivers = append(receivers, r)
		}
		sort.Ints(receivers)

		if len(receivers) <= v.Degree+1 {
			continue // not enough shares to detect inconsistency
		}

		points := make([]polynomial.Point, v.Degree+1)
		for i := 0; i <= v.Degree; i++ {
			r := receivers[i]
			points[i] = polynomial.Point{X: field.New(uint64(r)), Y: shareMap[r]}
		}
		ip, err := polynomial.NewInterpolatingPoly(points)
		if err != nil {
			return nil, err
		}

		for i := v.Degree + 1; i < len(receivers); i++ {
			r := receivers[i]
			x := field.New(uint64(r))
			if ip.EvalAt(x) != shareMap[r] {
				corrupt = append(corrupt, senderID)
				break
			}
		}
	}
	sort.Ints(corrupt)
	return corrupt, nil
}

// ShareCombiner sums individual DKG contributions into a node's combined
// share.
type ShareCombiner struct{}

// Combine computes s_j = sum of all f_i(j) over the contributions node j
// received.
func (ShareCombiner) Combine(received map[int]field.Element) field.Element {
	var total field.Element
	for _, v := range received {
		total = total.Add(v)
	}
	return total
}

// State tracks a DKG instance's progress through its protocol steps.
type State int

const (
	StateInit State = iota
	StateContributionsGenerated
	StateSharesDistributed
	StateConsistencyVerified
	StateSharesCombined
	StateCompleted
)

// DKG orchestrates distributed key generation across a fixed committee.
//
// Steps: generate a random polynomial contribution per node, distribute
// shares, verify consistency, combine shares into each honest node's
// final signing share.
type DKG struct {
	NodeIDs   []int
	Threshold int
	Degree    int
	src       field.Source

	mu             sync.Mutex
	state          State
	contributions  map[int]*PolynomialContribution
	sharesSent     map[int]map[int]field.Element // sender -> {receiver: share}
	combinedShares map[int]field.Element
	excluded       map[int]bool
}

// New creates a DKG over nodeIDs. If threshold <= 0, it defaults to
// floor(2n/3) + 1.
func New(nodeIDs []int, threshold int, src field.Source) *DKG {
	ids := append([]int(nil), nodeIDs...)
	sort.Ints(ids)
	n := len(ids)
	if threshold <= 0 {
		threshold = 2*n/3 + 1
	}
	return &DKG{
		NodeIDs:        ids,
		Threshold:      threshold,
		Degree:         threshold - 1,
		src:            src,
		contributions:  make(map[int]*PolynomialContribution),
		sharesSent:     make(map[int]map[int]field.Element),
		combinedShares: make(map[int]field.Element),
		excluded:       make(map[int]bool),
	}
}

// GenerateContributions runs step 1: every node samples its random
// polynomial.
//
// This must happen sequentially, in NodeIDs order: every node draws from
// the same shared field.Source, which is not safe for concurrent use and,
// more importantly, must not be read from in goroutine-scheduling order —
// tests depend on byte-exact reproducibility for a given seed, so the
// order coefficients are drawn in has to be deterministic regardless of
// how the runtime happens to schedule anything.
func (d *DKG) GenerateContributions(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, nid := range d.NodeIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.contributions[nid] = NewPolynomialContribution(nid, d.Degree, d.src)
	}
	d.state = StateContributionsGenerated
	return nil
}

// DistributeShares runs step 2: every node computes and "sends" shares to
// every other node.
func (d *DKG) DistributeShares(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for _, sender := range d.NodeIDs {
		sender := sender
		g.Go(func() error {
			contrib, ok := d.contributions[sender]
			if !ok {
				return fmt.Errorf("dkg: node %d has no contribution, run GenerateContributions first", sender)
			}
			out := make(map[int]field.Element, len(d.NodeIDs))
			for _, receiver := range d.NodeIDs {
				out[receiver] = contrib.ComputeShare(receiver)
			}
			mu.Lock()
			d.sharesSent[sender] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	d.state = StateSharesDistributed
	return nil
}

// VerifyConsistency runs step 3: checks all distributed shares for
// consistency and records excluded (corrupt) senders. Returns the
// detected corrupt node IDs.
func (d *DKG) VerifyConsistency() ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	verifier := &ConsistencyVerifier{NodeIDs: d.NodeIDs, Degree: d.Degree}
	corrupt, err := verifier.VerifyShares(d.sharesSent)
	if err != nil {
		return nil, err
	}
	d.excluded = make(map[int]bool, len(corrupt))
	for _, id := range corrupt {
		d.excluded[id] = true
	}
	d.state = StateConsistencyVerified
	return corrupt, nil
}

// CombineShares runs step 4: each non-excluded node combines the shares it
// received from other non-excluded nodes.
func (d *DKG) CombineShares() {
	d.mu.Lock()
	defer d.mu.Unlock()

	var combiner ShareCombiner
	for _, nid := range d.NodeIDs {
		if d.excluded[nid] {
			continue
		}
		received := make(map[int]field.Element)
		for _, sender := range d.NodeIDs {
			if d.excluded[sender] {
				continue
			}
			received[sender] = d.sharesSent[sender][nid]
		}
		d.combinedShares[nid] = combiner.Combine(received)
	}
	d.state = StateCompleted
}

// Run executes the full DKG protocol. If verify is false, consistency
// verification (O(N^2 k)) is skipped — useful for scale benchmarks where
// correctness was already checked at a smaller N.
func (d *DKG) Run(ctx context.Context, verify bool) (map[int]field.Element, error) {
	if err := d.GenerateContributions(ctx); err != nil {
		return nil, err
	}
	if err := d.DistributeShares(ctx); err != nil {
		return nil, err
	}
	if verify {
		if _, err := d.VerifyConsistency(); err != nil {
			return nil, err
		}
	}
	d.CombineShares()

	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[int]field.Element, len(d.combinedShares))
	for k, v := range d.combinedShares {
		out[k] = v
	}
	return out, nil
}

// GetCombinedSecret reconstructs F(0) from combined shares. For testing
// only — in production nobody ever does this.
func (d *DKG) GetCombinedSecret() (field.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateCompleted {
		return 0, fmt.Errorf("dkg: not completed")
	}
	var honest []int
	for _, nid := range d.NodeIDs {
		if !d.excluded[nid] {
			honest = append(honest, nid)
		}
	}
	if len(honest) < d.Threshold {
		return 0, fmt.Errorf("dkg: only %d honest nodes remain, need %d", len(honest), d.Threshold)
	}
	points := make([]polynomial.Point, d.Threshold)
	for i := 0; i < d.Threshold; i++ {
		nid := honest[i]
		points[i] = polynomial.Point{X: field.New(uint64(nid)), Y: d.combinedShares[nid]}
	}
	return polynomial.LagrangeAt(points, field.New(0))
}

// InjectCorruptShares tampers with the shares corruptID sent to every
// other node, for testing detection. If tamperFn is nil, each share is
// incremented by one.
func (d *DKG) InjectCorruptShares(corruptID int, tamperFn func(receiver int, original field.Element) field.Element) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tamperFn == nil {
		tamperFn = func(_ int, original field.Element) field.Element {
			return original.Add(field.New(1))
		}
	}
	sent, ok := d.sharesSent[corruptID]
	if !ok {
		return
	}
	for receiver, original := range sent {
		if receiver == corruptID {
			continue
		}
		sent[receiver] = tamperFn(receiver, original)
	}
}

// State reports the DKG's current protocol state.
func (d *DKG) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// CombinedShare returns nodeID's combined share, if it has one (it won't
// if nodeID was excluded as corrupt, or combination hasn't run yet).
func (d *DKG) CombinedShare(nodeID int) (field.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.combinedShares[nodeID]
	return v, ok
}

// SentShare returns the share sender sent to receiver, if recorded.
func (d *DKG) SentShare(sender, receiver int) (field.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.sharesSent[sender]
	if !ok {
		return 0, false
	}
	v, ok := m[receiver]
	return v, ok
}

// IsExcluded reports whether nodeID was flagged corrupt by consistency
// verification.
func (d *DKG) IsExcluded(nodeID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.excluded[nodeID]
}

// EpochManager manages periodic DKG re-deals with fresh randomness.
type EpochManager struct {
	NodeIDs   []int
	Threshold int

	mu      sync.Mutex
	epoch   int
	history []*DKG
}

// NewEpochManager creates a manager for a fixed committee.
func NewEpochManager(nodeIDs []int, threshold int) *EpochManager {
	return &EpochManager{NodeIDs: nodeIDs, Threshold: threshold}
}

// NewEpoch runs a fresh DKG for the next epoch.
func (m *EpochManager) NewEpoch(ctx context.Context, src field.Source) (*DKG, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := New(m.NodeIDs, m.Threshold, src)
	if _, err := d.Run(ctx, true); err != nil {
		return nil, err
	}
	m.history = append(m.history, d)
	m.epoch++
	return d, nil
}

// CurrentDKG returns the most recently completed DKG, or nil if none has
// run yet.
func (m *EpochManager) CurrentDKG() *DKG {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

// Epoch reports how many epochs have completed.
func (m *EpochManager) Epoch() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}
