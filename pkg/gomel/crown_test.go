package gomel_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

var _ = Describe("Crown", func() {

	It("marks every process missing in an empty crown", func() {
		crown := gomel.EmptyCrown(4)
		Expect(crown.Heights).To(Equal([]int{-1, -1, -1, -1}))
	})

	It("matches CombineHashes of all-missing hashes for an empty crown", func() {
		crown := gomel.EmptyCrown(3)
		want := gomel.CombineHashes(make([]*gomel.Hash, 3))
		Expect(crown.ControlHash).To(Equal(*want))
	})

	It("carries through the heights and hash given to NewCrown", func() {
		var h gomel.Hash
		h[0] = 5
		crown := gomel.NewCrown([]int{0, -1, 2}, &h)
		Expect(crown.Heights).To(Equal([]int{0, -1, 2}))
		Expect(crown.ControlHash).To(Equal(h))
	})

	It("builds a crown from real parents with missing slots left at height -1", func() {
		dag := tests.NewRandomDag(4, 2)
		maximal := dag.MaximalUnitsPerProcess()

		parents := make([]gomel.Unit, 4)
		parents[0] = maximal.Get(0)[0]
		parents[2] = maximal.Get(2)[0]

		crown := gomel.CrownFromParents(parents)
		Expect(crown.Heights[0]).To(Equal(parents[0].Height()))
		Expect(crown.Heights[1]).To(Equal(-1))
		Expect(crown.Heights[2]).To(Equal(parents[2].Height()))
		Expect(crown.Heights[3]).To(Equal(-1))

		want := gomel.CombineHashes(gomel.ToHashes(parents))
		Expect(crown.ControlHash).To(Equal(*want))
	})
})
