package overlay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luxfi/liun/pkg/overlay"
)

func lineGraph(n int) *overlay.Graph {
	g := overlay.NewGraph()
	for i := 1; i < n; i++ {
		g.AddEdge(i, i+1, 1.0)
	}
	return g
}

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	g := overlay.NewGraph()
	g.AddEdge(1, 1, 1.0)

	assert.Equal(t, 0, g.Degree(1))
	assert.Equal(t, 0, g.NEdges())
}

func TestPersonalizedPageRankSumsToApproximatelyOne(t *testing.T) {
	g := lineGraph(6)
	trust := overlay.PersonalizedPageRank(1, g, 0.85, 20)

	var sum float64
	for _, v := range trust {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 0.05)
}

func TestPersonalizedPageRankDecaysWithDistance(t *testing.T) {
	g := lineGraph(6)
	trust := overlay.PersonalizedPageRank(1, g, 0.85, 20)

	// From the seed's neighbour outward, trust decreases as hop distance
	// increases along a line graph. The neighbour itself (node 2) receives
	// all of the degree-1 seed's outflow and ends up above the seed, but
	// the seed still outranks every node two or more hops away.
	assert.Greater(t, trust[1], trust[3])
	assert.Greater(t, trust[2], trust[3])
	assert.Greater(t, trust[3], trust[4])
}

func TestTrustWeightedAcceptRequiresSuperMajority(t *testing.T) {
	trust := map[int]float64{1: 0.4, 2: 0.3, 3: 0.3}
	assert.True(t, overlay.TrustWeightedAccept([]int{1, 2}, trust, overlay.DefaultAcceptThreshold))
	assert.False(t, overlay.TrustWeightedAccept([]int{1}, trust, overlay.DefaultAcceptThreshold))
}

func TestTrustWeightedAcceptZeroTotalTrustRejects(t *testing.T) {
	assert.False(t, overlay.TrustWeightedAccept([]int{1}, map[int]float64{}, overlay.DefaultAcceptThreshold))
}

func TestPeerIntroductionRequiresMinimumMutualContacts(t *testing.T) {
	g := overlay.NewGraph()
	g.AddEdge(1, 10, 1.0)
	g.AddEdge(2, 10, 1.0)
	g.AddEdge(1, 11, 1.0)
	g.AddEdge(2, 11, 1.0)

	intro := overlay.NewPeerIntroduction(g, 2)
	assert.True(t, intro.CanIntroduce(1, 2))

	intro3 := overlay.NewPeerIntroduction(g, 3)
	assert.False(t, intro3.CanIntroduce(1, 2))
}

func TestPeerIntroductionGeneratePSKXorsComponents(t *testing.T) {
	g := overlay.NewGraph()
	intro := overlay.NewPeerIntroduction(g, 1)

	a := []byte{0x0f, 0xf0, 0xaa}
	b := []byte{0xf0, 0x0f, 0x55}
	psk, err := intro.GeneratePSK([][]byte{a, b})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xff}, psk)

	_, err = intro.GeneratePSK(nil)
	assert.ErrorIs(t, err, overlay.ErrNoPSKComponents)
}

func TestMutualContactFinderRanksByDegree(t *testing.T) {
	g := overlay.NewGraph()
	g.AddEdge(1, 100, 1.0)
	g.AddEdge(2, 100, 1.0)
	g.AddEdge(100, 200, 1.0) // gives node 100 higher degree

	g.AddEdge(1, 101, 1.0)
	g.AddEdge(2, 101, 1.0)

	finder := overlay.NewMutualContactFinder(g)
	ranked := finder.FindForPair(1, 2, 1)
	assert.Equal(t, 100, ranked[0])
}

func TestGraphMonitorTargetDegreeAndConnectivity(t *testing.T) {
	g := lineGraph(8)
	mon := overlay.NewGraphMonitor(g)

	assert.True(t, mon.IsConnected())
	assert.GreaterOrEqual(t, mon.TargetDegree(), 3)

	under := mon.UnderconnectedNodes()
	assert.NotEmpty(t, under)
}

func TestGraphMonitorDetectsDisconnection(t *testing.T) {
	g := overlay.NewGraph()
	g.AddEdge(1, 2, 1.0)
	g.AddNode(99) // isolated
	mon := overlay.NewGraphMonitor(g)
	assert.False(t, mon.IsConnected())
}
