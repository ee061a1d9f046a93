package process_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/poset"
	. "github.com/aleph-committee/aleph-poset/pkg/process"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

var _ = Describe("Arbiter", func() {

	var (
		dag     gomel.Dag
		arbiter *Arbiter
		added   []gomel.Unit
	)

	BeforeEach(func() {
		dag = poset.NewDag(2)
		arbiter = NewArbiter(dag, 8, 8, zerolog.Nop())
		added = nil
		arbiter.Notify(func(u gomel.Unit) { added = append(added, u) })
		arbiter.Start()
	})

	AfterEach(func() {
		arbiter.Stop()
	})

	It("adds a unit whose parents are already present", func() {
		dealingPu := tests.NewPreunit(0, 0, gomel.CrownFromParents([]gomel.Unit{nil, nil}), nil, nil)
		arbiter.AddPreunits(0, [][]gomel.Preunit{{dealingPu}})
		Eventually(func() gomel.Unit { return dag.GetUnit(dealingPu.Hash()) }).ShouldNot(BeNil())
		Eventually(func() []gomel.Unit { return added }).Should(HaveLen(1))
	})

	It("buffers a unit that arrives before its parent, and adds it once the parent lands", func() {
		dealingPu := tests.NewPreunit(0, 0, gomel.CrownFromParents([]gomel.Unit{nil, nil}), nil, nil)
		childView := gomel.NewCrown([]int{0, -1}, gomel.CombineHashes([]*gomel.Hash{dealingPu.Hash(), &gomel.ZeroHash}))
		childPu := tests.NewPreunit(0, 1, childView, nil, nil)

		arbiter.AddPreunits(1, [][]gomel.Preunit{{childPu}})
		Consistently(func() gomel.Unit { return dag.GetUnit(childPu.Hash()) }, 100*time.Millisecond).Should(BeNil())

		arbiter.AddPreunits(0, [][]gomel.Preunit{{dealingPu}})
		Eventually(func() gomel.Unit { return dag.GetUnit(childPu.Hash()) }).ShouldNot(BeNil())
		Eventually(func() []gomel.Unit { return added }).Should(HaveLen(2))
	})

	It("ignores a preunit already present in the dag", func() {
		dealingPu := tests.NewPreunit(0, 0, gomel.CrownFromParents([]gomel.Unit{nil, nil}), nil, nil)
		arbiter.AddPreunits(0, [][]gomel.Preunit{{dealingPu}})
		Eventually(func() gomel.Unit { return dag.GetUnit(dealingPu.Hash()) }).ShouldNot(BeNil())

		arbiter.AddPreunits(1, [][]gomel.Preunit{{dealingPu}})
		Consistently(func() []gomel.Unit { return added }, 100*time.Millisecond).Should(HaveLen(1))
	})
})
