package adversary_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/liun/pkg/adversary"
	"github.com/luxfi/liun/pkg/overlay"
)

func ringGraph(n int) *overlay.Graph {
	g := overlay.NewGraph()
	for i := 1; i <= n; i++ {
		next := i + 1
		if next > n {
			next = 1
		}
		g.AddEdge(i, next, 1.0)
	}
	return g
}

var _ = Describe("Sybil attack trust capture", func() {
	var honest *overlay.Graph

	BeforeEach(func() {
		honest = ringGraph(30)
	})

	It("bounds Sybil-captured trust by attack edges, not Sybil count", func() {
		rngSmall := rand.New(rand.NewSource(1))
		small := adversary.NewSybilAttack(honest, 20, 2, rngSmall)
		smallCapture := small.MeasureTrustCapture(1)

		rngBig := rand.New(rand.NewSource(1))
		big := adversary.NewSybilAttack(honest, 2000, 2, rngBig)
		bigCapture := big.MeasureTrustCapture(1)

		// Same attack-edge count, wildly different Sybil population: the
		// captured trust fraction should stay within the same order of
		// magnitude, not scale with the number of fake nodes.
		Expect(bigCapture.SybilFraction).To(BeNumerically("<", smallCapture.SybilFraction*5+0.05))
	})

	It("grows captured trust with the number of attack edges", func() {
		rngFew := rand.New(rand.NewSource(2))
		few := adversary.NewSybilAttack(honest, 50, 1, rngFew)
		fewCapture := few.MeasureTrustCapture(1)

		rngMany := rand.New(rand.NewSource(2))
		many := adversary.NewSybilAttack(honest, 50, 10, rngMany)
		manyCapture := many.MeasureTrustCapture(1)

		Expect(manyCapture.SybilFraction).To(BeNumerically(">=", fewCapture.SybilFraction))
	})

	It("never captures the majority of trust with a single attack edge", func() {
		rng := rand.New(rand.NewSource(3))
		attack := adversary.NewSybilAttack(honest, 100, 1, rng)
		capture := attack.MeasureTrustCapture(1)

		Expect(capture.SybilFraction).To(BeNumerically("<", 0.5))
	})
})
