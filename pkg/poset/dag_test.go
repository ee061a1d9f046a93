package poset_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/poset"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

// dealingPreunit builds a height-0 preunit for the given creator, with every parent missing.
func dealingPreunit(nProc, creator uint16) gomel.Preunit {
	view := gomel.CrownFromParents(make([]gomel.Unit, nProc))
	return tests.NewPreunit(creator, 0, view, nil, nil)
}

// childPreunit builds a preunit for the given creator whose self-predecessor is pred and whose
// only other parent is other (nil for a non-prime, self-predecessor-only unit).
func childPreunit(nProc, creator uint16, pred, other gomel.Unit) gomel.Preunit {
	parents := make([]gomel.Unit, nProc)
	parents[creator] = pred
	if other != nil {
		parents[other.Creator()] = other
	}
	view := gomel.CrownFromParents(parents)
	return tests.NewPreunit(creator, pred.Height()+1, view, nil, nil)
}

var _ = Describe("Dag", func() {

	var (
		nProc uint16
		dag   gomel.Dag
	)

	BeforeEach(func() {
		nProc = 4
		dag = poset.NewDag(nProc)
	})

	It("reports its process count", func() {
		Expect(dag.NProc()).To(Equal(nProc))
	})

	It("accepts a dealing unit from every process", func() {
		for creator := uint16(0); creator < nProc; creator++ {
			u, err := tests.AddUnit(dag, dealingPreunit(nProc, creator))
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Level()).To(Equal(0))
			Expect(gomel.Prime(u)).To(BeTrue())
		}
	})

	It("rejects a preunit whose parents are missing", func() {
		view := gomel.NewCrown([]int{0, -1, -1, -1}, &gomel.ZeroHash)
		pu := tests.NewPreunit(1, 1, view, nil, nil)
		_, err := tests.AddUnit(dag, pu)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a unit whose control hash does not match its resolved parents", func() {
		_, err := tests.AddUnit(dag, dealingPreunit(nProc, 0))
		Expect(err).NotTo(HaveOccurred())

		view := gomel.NewCrown([]int{0, -1, -1, -1}, &gomel.ZeroHash)
		pu := tests.NewPreunit(1, 0, view, nil, nil)
		_, err = tests.AddUnit(dag, pu)
		Expect(err).To(HaveOccurred())
	})

	It("rejects, at Check, a unit whose self-predecessor was created by a different process", func() {
		dealing0, err := tests.AddUnit(dag, dealingPreunit(nProc, 0))
		Expect(err).NotTo(HaveOccurred())

		// Check defends against a caller handing BuildUnit a malformed parents slice directly;
		// the normal DecodeParents pipeline can never produce this shape since it resolves each
		// slot by looking up a unit created by that exact pid.
		parents := make([]gomel.Unit, nProc)
		parents[1] = dealing0
		badPu := tests.NewPreunit(1, 1, gomel.CrownFromParents(parents), nil, nil)
		u := dag.BuildUnit(badPu, parents)
		Expect(dag.Check(u)).To(HaveOccurred())
	})

	It("tracks maximal units per process as new units are inserted", func() {
		dealing0, err := tests.AddUnit(dag, dealingPreunit(nProc, 0))
		Expect(err).NotTo(HaveOccurred())

		child, err := tests.AddUnit(dag, childPreunit(nProc, 0, dealing0, nil))
		Expect(err).NotTo(HaveOccurred())

		maxima := dag.MaximalUnitsPerProcess().Get(0)
		Expect(maxima).To(HaveLen(1))
		Expect(maxima[0].Hash()).To(Equal(child.Hash()))
	})

	It("finds units by height and by hash after insertion", func() {
		dealing0, err := tests.AddUnit(dag, dealingPreunit(nProc, 0))
		Expect(err).NotTo(HaveOccurred())

		Expect(dag.GetUnit(dealing0.Hash())).NotTo(BeNil())
		onHeight := dag.UnitsOnHeight(0).Get(0)
		Expect(onHeight).To(HaveLen(1))
		Expect(onHeight[0].Hash()).To(Equal(dealing0.Hash()))
	})

	It("runs registered checkers and transformers", func() {
		var checked []gomel.Unit
		dag.AddCheck(func(u gomel.Unit) error {
			checked = append(checked, u)
			return nil
		})
		var transformed int
		dag.AddTransform(func(u gomel.Unit) gomel.Unit {
			transformed++
			return u
		})

		_, err := tests.AddUnit(dag, dealingPreunit(nProc, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(checked).To(HaveLen(1))
		Expect(transformed).To(Equal(1))
	})

	It("refuses insertion when a checker rejects the unit", func() {
		boom := gomel.NewComplianceError("no thanks")
		dag.AddCheck(func(u gomel.Unit) error {
			return boom
		})

		_, err := tests.AddUnit(dag, dealingPreunit(nProc, 0))
		Expect(err).To(Equal(boom))
		Expect(dag.MaximalUnitsPerProcess().Get(0)).To(BeEmpty())
	})

	It("runs before- and after-insert hooks in order around Insert", func() {
		var order []string
		dag.BeforeInsert(func(gomel.Unit) { order = append(order, "before") })
		dag.AfterInsert(func(gomel.Unit) { order = append(order, "after") })

		_, err := tests.AddUnit(dag, dealingPreunit(nProc, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{"before", "after"}))
	})
})
