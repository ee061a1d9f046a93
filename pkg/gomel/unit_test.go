package gomel_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

var _ = Describe("unit helpers", func() {

	var dag gomel.Dag

	BeforeEach(func() {
		dag = tests.NewRandomDag(4, 3)
	})

	dealingUnits := func() []gomel.Unit {
		maximal := dag.UnitsOnHeight(0)
		units := make([]gomel.Unit, 4)
		for pid := uint16(0); pid < 4; pid++ {
			units[pid] = maximal.Get(pid)[0]
		}
		return units
	}

	It("treats a dealing unit as Dealing and Prime, with no predecessor", func() {
		for _, u := range dealingUnits() {
			Expect(gomel.Dealing(u)).To(BeTrue())
			Expect(gomel.Prime(u)).To(BeTrue())
			Expect(gomel.Predecessor(u)).To(BeNil())
		}
	})

	It("considers a unit SameUnit as itself but not as a different unit", func() {
		units := dealingUnits()
		Expect(gomel.SameUnit(units[0], units[0])).To(BeTrue())
		Expect(gomel.SameUnit(units[0], units[1])).To(BeFalse())
		Expect(gomel.SameUnit(nil, nil)).To(BeTrue())
		Expect(gomel.SameUnit(units[0], nil)).To(BeFalse())
	})

	It("is reflexive and respects ancestry for Above/Below", func() {
		units := dealingUnits()
		u0 := units[0]
		Expect(gomel.Above(u0, u0)).To(BeTrue())
		Expect(gomel.Below(u0, u0)).To(BeTrue())

		height1 := dag.UnitsOnHeight(1).Get(0)[0]
		Expect(gomel.Above(height1, u0)).To(BeTrue())
		Expect(gomel.Below(u0, height1)).To(BeTrue())
		Expect(gomel.Above(u0, height1)).To(BeFalse())
	})

	It("bumps the level once a quorum of parents share the maximal parent level", func() {
		units := dealingUnits()

		threeOfFour := make([]gomel.Unit, 4)
		copy(threeOfFour, units[:3])
		Expect(gomel.LevelFromParents(threeOfFour)).To(Equal(1))

		twoOfFour := make([]gomel.Unit, 4)
		copy(twoOfFour, units[:2])
		Expect(gomel.LevelFromParents(twoOfFour)).To(Equal(0))
	})

	It("reports no forking evidence for a fork-free randomly built dag", func() {
		height2 := dag.UnitsOnHeight(2).Get(0)[0]
		for pid := uint16(0); pid < 4; pid++ {
			Expect(gomel.HasForkingEvidence(height2, pid)).To(BeFalse())
		}
	})

	It("finds a unit below any of a set containing one of its ancestors", func() {
		units := dealingUnits()
		height1 := dag.UnitsOnHeight(1).Get(0)[0]
		Expect(gomel.BelowAny(units[0], []gomel.Unit{height1})).To(BeTrue())
		Expect(gomel.AboveAny(height1, []gomel.Unit{units[0]})).To(BeTrue())
		Expect(gomel.BelowAny(height1, []gomel.Unit{units[0]})).To(BeFalse())
	})

	It("converts a slice of units to their hashes, preserving nils", func() {
		units := dealingUnits()
		parents := []gomel.Unit{units[0], nil, units[2]}
		hashes := gomel.ToHashes(parents)
		Expect(hashes[0]).To(Equal(units[0].Hash()))
		Expect(hashes[1]).To(BeNil())
		Expect(hashes[2]).To(Equal(units[2].Hash()))
	})
})
