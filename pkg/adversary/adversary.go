// Package adversary implements the adversary models used to stress-test
// the overlay and threshold-cryptography layers: collusion among corrupt
// DKG participants, eclipse attacks on bootstrap paths, Sybil flooding of
// the trust graph, and slow gradual compromise across epochs.
//
// These types model what an attacker CAN attempt, not a defense — callers
// use them to measure whether the system's guarantees hold under the
// attack, not to mount one against a real deployment.
package adversary

import (
	"math/rand"
	"sort"

	"github.com/luxfi/liun/pkg/dkg"
	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/overlay"
	"github.com/luxfi/liun/pkg/polynomial"
	"github.com/luxfi/liun/pkg/uss"
)

// CollusionAttack simulates corrupt DKG participants pooling everything
// they know to try to reconstruct the collective signing polynomial F.
type CollusionAttack struct {
	DKG *dkg.DKG
	CorruptIDs []int
}

// NewCollusionAttack targets a completed DKG with a set of corrupt node
// IDs.
func NewCollusionAttack(d *dkg.DKG, corruptIDs []int) *CollusionAttack {
	return &CollusionAttack{DKG: d, CorruptIDs: corruptIDs}
}

// ReconstructionResult reports the outcome of a collusion attempt to
// recover the collective secret.
type ReconstructionResult struct {
	Success bool
	NPoints int
	Threshold int
	AttemptedSecret field.Element
	HasSecret bool
}

// AttemptReconstruction pools the corrupt nodes' combined shares —
// (cid, F(cid)) pairs — and tries to interpolate F(0). With fewer than
// threshold points, interpolation is impossible; the caller holds only
// the knowledge the corrupt nodes could legitimately pool.
func (c *CollusionAttack) AttemptReconstruction() (ReconstructionResult, error) {
	var points []polynomial.Point
	for _, cid := range c.CorruptIDs {
		if share, ok := c.DKG.CombinedShare(cid); ok {
			points = append(points, polynomial.Point{X: field.New(uint64(cid)), Y: share})
		}
	}

	result := ReconstructionResult{
		NPoints: len(points),
		Threshold: c.DKG.Threshold,
	}

	if len(points) < c.DKG.Threshold {
		return result, nil
	}

	secret, err := polynomial.LagrangeAt(points, field.New(0))
	if err != nil {
		return result, err
	}
	realSecret, err := c.DKG.GetCombinedSecret()
	if err != nil {
		return result, err
	}
	result.AttemptedSecret = secret
	result.HasSecret = true
	result.Success = secret == realSecret
	return result, nil
}

// ForgeryResult reports the outcome of a collusion attempt to forge a
// signature.
type ForgeryResult struct {
	Success bool
	Sigma field.Element
	Method string
}

// AttemptForgery tries to forge a signature on message. With fewer than
// threshold pooled points, the adversary can only guess a random sigma;
// at or above threshold, it can compute the correct one via
// interpolation.
func (c *CollusionAttack) AttemptForgery(message field.Element, verificationPoints []polynomial.Point, degree int, src field.Source) (ForgeryResult, error) {
	var points []polynomial.Point
	for _, cid := range c.CorruptIDs {
		if share, ok := c.DKG.CombinedShare(cid); ok {
			points = append(points, polynomial.Point{X: field.New(uint64(cid)), Y: share})
		}
	}

	verifier := uss.NewVerifier(verificationPoints, degree)

	if len(points) < c.DKG.Threshold {
		guess := field.Rand(src)
		ok, err := verifier.Verify(message, guess)
		if err != nil {
			return ForgeryResult{}, err
		}
		return ForgeryResult{Success: ok, Sigma: guess, Method: "random_guess"}, nil
	}

	sigma, err := polynomial.LagrangeAt(points, message)
	if err != nil {
		return ForgeryResult{}, err
	}
	ok, err := verifier.Verify(message, sigma)
	if err != nil {
		return ForgeryResult{}, err
	}
	return ForgeryResult{Success: ok, Sigma: sigma, Method: "reconstruction"}, nil
}

// EclipseAttack simulates Eve controlling relay nodes on some fraction of
// bootstrap paths: if she controls all of them, she intercepts every
// share and can reconstruct the secret.
type EclipseAttack struct {
	NPaths int
	EclipseFraction float64
	EclipsedPaths int
	ObservedShares []int
}

// NewEclipseAttack builds an attack controlling eclipseFraction of nPaths
// bootstrap paths.
func NewEclipseAttack(nPaths int, eclipseFraction float64) *EclipseAttack {
	return &EclipseAttack{
		NPaths: nPaths,
		EclipseFraction: eclipseFraction,
		EclipsedPaths: int(float64(nPaths) * eclipseFraction),
	}
}

// EclipseOutcome reports which shares Eve observed and whether she
// gathered enough to reconstruct the secret.
type EclipseOutcome struct {
	Observed []int
	Unobserved []int
	CanReconstruct bool
	Coverage float64
}

// Run simulates the attack over a set of bootstrap share indices,
// observing the first EclipsedPaths of them (those routed through Eve's
// controlled relays).
func (a *EclipseAttack) Run(shareIndices []int) EclipseOutcome {
	cut := a.EclipsedPaths
	if cut > len(shareIndices) {
		cut = len(shareIndices)
	}
	observed := append([]int(nil), shareIndices[:cut]...)
	unobserved := append([]int(nil), shareIndices[cut:]...)
	a.ObservedShares = observed

	var coverage float64
	if len(shareIndices) > 0 {
		coverage = float64(len(observed)) / float64(len(shareIndices))
	}

	return EclipseOutcome{
		Observed: observed,
		Unobserved: unobserved,
		CanReconstruct: len(unobserved) == 0,
		Coverage: coverage,
	}
}

// EclipseTopologyAttack models eclipsing via topology manipulation: Eve's
// nodes are positioned so that every path from a source to a target
// passes through one of them.
type EclipseTopologyAttack struct {
	Graph *overlay.Graph
	EveNodes map[int]struct{}
	Target int
}

// NewEclipseTopologyAttack targets node target, with Eve controlling
// eveNodes within graph.
func NewEclipseTopologyAttack(g *overlay.Graph, eveNodes []int, target int) *EclipseTopologyAttack {
	set := make(map[int]struct{}, len(eveNodes))
	for _, n := range eveNodes {
		set[n] = struct{}{}
	}
	return &EclipseTopologyAttack{Graph: g, EveNodes: set, Target: target}
}

// FindIndependentPaths finds node-independent paths from source to the
// target, greedily removing each found path's interior nodes before
// searching for the next. Bounded at 100 attempts.
func (a *EclipseTopologyAttack) FindIndependentPaths(source int) [][]int {
	var paths [][]int
	used := make(map[int]struct{})
	for i := 0; i < 100; i++ {
		path := a.findPathAvoiding(source, a.Target, used)
		if path == nil {
			break
		}
		paths = append(paths, path)
		for _, n := range path[1 : len(path)-1] {
			used[n] = struct{}{}
		}
	}
	return paths
}

func (a *EclipseTopologyAttack) findPathAvoiding(src, dst int, avoid map[int]struct{}) []int {
	visited := map[int]struct{}{src: {}}
	type queued struct {
		node int
		path []int
	}
	queue := []queued{{node: src, path: []int{src}}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		neighbors := make([]int, 0, len(a.Graph.Neighbors(cur.node)))
		for n := range a.Graph.Neighbors(cur.node) {
			neighbors = append(neighbors, n)
		}
		sort.Ints(neighbors)

		for _, neighbor := range neighbors {
			if neighbor == dst {
				return append(append([]int(nil), cur.path...), dst)
			}
			if _, skip := visited[neighbor]; skip {
				continue
			}
			if _, skip := avoid[neighbor]; skip {
				continue
			}
			visited[neighbor] = struct{}{}
			queue = append(queue, queued{node: neighbor, path: append(append([]int(nil), cur.path...), neighbor)})
		}
	}
	return nil
}

// AllPathsThroughEve reports whether every node-independent path from
// source to the target passes through one of Eve's nodes.
func (a *EclipseTopologyAttack) AllPathsThroughEve(source int) bool {
	paths := a.FindIndependentPaths(source)
	if len(paths) == 0 {
		return true // no paths at all
	}
	for _, path := range paths {
		clean := true
		for _, n := range path[1 : len(path)-1] {
			if _, eve := a.EveNodes[n]; eve {
				clean = false
				break
			}
		}
		if clean {
			return false // found a path with no Eve node in it
		}
	}
	return true
}

// SybilAttack simulates fake-node flooding: Eve creates a cluster of
// Sybil nodes densely connected to each other, with a small number of
// attack edges into the honest graph.
type SybilAttack struct {
	HonestGraph *overlay.Graph
	NSybil int
	AttackEdges int
	rng *rand.Rand
	honestIDs map[int]struct{}
	sybilIDs map[int]struct{}
	combinedGraph *overlay.Graph
}

// NewSybilAttack creates a Sybil attack against honestGraph, injecting
// nSybil fake nodes connected via attackEdges edges into the honest
// population.
func NewSybilAttack(honestGraph *overlay.Graph, nSybil, attackEdges int, rng *rand.Rand) *SybilAttack {
	if rng == nil {
		rng = rand.New(rand.NewSource(42))
	}
	honestIDs := make(map[int]struct{})
	for _, n := range honestGraph.Nodes() {
		honestIDs[n] = struct{}{}
	}
	return &SybilAttack{
		HonestGraph: honestGraph,
		NSybil: nSybil,
		AttackEdges: attackEdges,
		rng: rng,
		honestIDs: honestIDs,
		sybilIDs: make(map[int]struct{}),
	}
}

// Inject builds the combined honest+Sybil graph: a clique among Sybils
// (or, above 100 Sybils, a sparser ring-plus-shortcuts topology) with
// AttackEdges connections into the honest population.
func (a *SybilAttack) Inject() *overlay.Graph {
	g := overlay.NewGraph()
	for node := range a.honestIDs {
		g.AddNode(node)
	}
	for _, node := range a.HonestGraph.Nodes() {
		for n := range a.HonestGraph.Neighbors(node) {
			g.AddEdge(node, n, 1.0)
		}
	}

	baseID := 0
	for id := range a.honestIDs {
		if id+1 > baseID {
			baseID = id + 1
		}
	}
	sybilList := make([]int, a.NSybil)
	for i := 0; i < a.NSybil; i++ {
		sid := baseID + i
		a.sybilIDs[sid] = struct{}{}
		sybilList[i] = sid
		g.AddNode(sid)
	}
	sort.Ints(sybilList)

	if len(sybilList) <= 100 {
		for i := 0; i < len(sybilList); i++ {
			for j := i + 1; j < len(sybilList); j++ {
				g.AddEdge(sybilList[i], sybilList[j], 1.0)
			}
		}
	} else {
		kInternal := 20
		if kInternal > len(sybilList)-1 {
			kInternal = len(sybilList) - 1
		}
		for i, sid := range sybilList {
			g.AddEdge(sid, sybilList[(i+1)%len(sybilList)], 1.0)
			perm := a.rng.Perm(len(sybilList))
			added := 0
			for _, idx := range perm {
				if added >= kInternal {
					break
				}
				t := sybilList[idx]
				if t != sid {
					g.AddEdge(sid, t, 1.0)
					added++
				}
			}
		}
	}

	honestList := make([]int, 0, len(a.honestIDs))
	for id := range a.honestIDs {
		honestList = append(honestList, id)
	}
	sort.Ints(honestList)

	nEdges := a.AttackEdges
	if nEdges > len(sybilList) {
		nEdges = len(sybilList)
	}
	if nEdges > len(honestList) {
		nEdges = len(honestList)
	}
	honestPerm := a.rng.Perm(len(honestList))
	for i := 0; i < nEdges; i++ {
		g.AddEdge(sybilList[i], honestList[honestPerm[i]], 1.0)
	}

	a.combinedGraph = g
	return g
}

// TrustCapture reports the trust measurements from a SybilAttack
// following measureTrustCapture.
type TrustCapture struct {
	HonestTrust float64
	SybilTrust float64
	TotalTrust float64
	SybilFraction float64
	SybilEquivalentHonest float64
	NSybil int
	AttackEdges int
}

// MeasureTrustCapture injects the Sybil cluster (if not already injected)
// and measures how much trust mass, from seed's perspective, the Sybil
// cluster captures.
//
// SybilEquivalentHonest expresses captured trust in units of "average
// honest node": personalized PageRank's lack of dangling-mass
// redistribution bounds this to O(attack_edges) regardless of NSybil —
// flooding the graph with fake nodes buys nothing without real edges
// into the honest population.
func (a *SybilAttack) MeasureTrustCapture(seed int) TrustCapture {
	if a.combinedGraph == nil {
		a.Inject()
	}
	trust := overlay.PersonalizedPageRank(seed, a.combinedGraph, 0.85, 20)

	var honestTrust, sybilTrust float64
	for n := range a.honestIDs {
		honestTrust += trust[n]
	}
	for n := range a.sybilIDs {
		sybilTrust += trust[n]
	}
	total := honestTrust + sybilTrust

	capture := TrustCapture{
		HonestTrust: honestTrust,
		SybilTrust: sybilTrust,
		TotalTrust: total,
		NSybil: a.NSybil,
		AttackEdges: a.AttackEdges,
	}
	if total > 0 {
		capture.SybilFraction = sybilTrust / total
	}
	if honestTrust > 0 && len(a.honestIDs) > 0 {
		avgHonest := honestTrust / float64(len(a.honestIDs))
		capture.SybilEquivalentHonest = sybilTrust / avgHonest
	}
	return capture
}

// SlowCompromise simulates Eve compromising one honest node per epoch and
// tracks how trust shifts toward the compromised set over time.
type SlowCompromise struct {
	Graph *overlay.Graph
	honestIDs map[int]struct{}
	compromised map[int]struct{}
	epoch int
	compromiseOrder []int
	trustHistory []TrustMeasurement
}

// TrustMeasurement is one epoch's trust snapshot under slow compromise.
type TrustMeasurement struct {
	Epoch int
	NCompromised int
	HonestTrust float64
	CompromisedTrust float64
	CompromisedFraction float64
	CanDisruptConsensus bool
}

// NewSlowCompromise creates a slow-compromise simulation over honestIDs.
// If compromiseOrder is nil, a random order is derived from rng.
func NewSlowCompromise(g *overlay.Graph, honestIDs []int, compromiseOrder []int, rng *rand.Rand) *SlowCompromise {
	honest := make(map[int]struct{}, len(honestIDs))
	for _, id := range honestIDs {
		honest[id] = struct{}{}
	}

	order := compromiseOrder
	if order == nil {
		if rng == nil {
			rng = rand.New(rand.NewSource(42))
		}
		order = append([]int(nil), honestIDs...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	} else {
		order = append([]int(nil), order...)
	}

	return &SlowCompromise{
		Graph: g,
		honestIDs: honest,
		compromised: make(map[int]struct{}),
		compromiseOrder: order,
	}
}

// CompromiseNext compromises the next node in the queue and returns its
// ID, or -1 if the queue is empty.
func (s *SlowCompromise) CompromiseNext() int {
	if len(s.compromiseOrder) == 0 {
		return -1
	}
	node := s.compromiseOrder[0]
	s.compromiseOrder = s.compromiseOrder[1:]
	s.compromised[node] = struct{}{}
	delete(s.honestIDs, node)
	s.epoch++
	return node
}

// MeasureTrust computes the current trust split between honest and
// compromised nodes from seed's perspective, and records it in the
// history.
func (s *SlowCompromise) MeasureTrust(seed int) TrustMeasurement {
	trust := overlay.PersonalizedPageRank(seed, s.Graph, 0.85, 20)

	var honestTrust, compromisedTrust float64
	for n := range s.honestIDs {
		honestTrust += trust[n]
	}
	for n := range s.compromised {
		compromisedTrust += trust[n]
	}
	total := honestTrust + compromisedTrust

	m := TrustMeasurement{
		Epoch: s.epoch,
		NCompromised: len(s.compromised),
		HonestTrust: honestTrust,
		CompromisedTrust: compromisedTrust,
	}
	if total > 0 {
		m.CompromisedFraction = compromisedTrust / total
		m.CanDisruptConsensus = compromisedTrust > total/3
	}
	s.trustHistory = append(s.trustHistory, m)
	return m
}

// RunEpochs runs nEpochs of slow compromise, measuring trust once before
// any compromise and once after each subsequent compromise.
func (s *SlowCompromise) RunEpochs(nEpochs int, seed int) []TrustMeasurement {
	var results []TrustMeasurement
	results = append(results, s.MeasureTrust(seed))

	for i := 0; i < nEpochs; i++ {
		if s.CompromiseNext() < 0 {
			break
		}
		results = append(results, s.MeasureTrust(seed))
	}
	return results
}

// EpochsToDisruption reports the first epoch at which compromised nodes
// held enough trust to disrupt consensus, or -1 if that point was never
// reached.
func (s *SlowCompromise) EpochsToDisruption() int {
	for _, m := range s.trustHistory {
		if m.CanDisruptConsensus {
			return m.Epoch
		}
	}
	return -1
}
