package creator_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/creator"
	"github.com/aleph-committee/aleph-poset/pkg/crypto/signing"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/poset"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

func newDealing(pid uint16) gomel.Preunit {
	return tests.NewPreunit(pid, 0, gomel.EmptyCrown(4), nil, nil)
}

func mustInsert(dag gomel.Dag, pu gomel.Preunit) gomel.Unit {
	u, err := tests.AddUnit(dag, pu)
	if err != nil {
		panic(err)
	}
	return u
}

type noRandomSource struct{}

func (noRandomSource) Bind(dag gomel.Dag) gomel.Dag              { return dag }
func (noRandomSource) RandomBytes(uint16, int) []byte            { return nil }
func (noRandomSource) DataToInclude(uint16, []gomel.Unit, int) ([]byte, error) {
	return nil, nil
}

var _ = Describe("Creator", func() {

	var (
		dag     gomel.Dag
		priv    gomel.PrivateKey
		created []gomel.Unit
		belt    chan gomel.Unit
		cr      *creator.Creator
	)

	BeforeEach(func() {
		dag = poset.NewDag(4)
		_, priv, _ = signing.GenerateKeys()
		created = nil
		belt = make(chan gomel.Unit, 64)
		cr = creator.New(dag, noRandomSource{}, 0, 4, priv, nil, false, func(u gomel.Unit) {
			created = append(created, u)
		}, zerolog.Nop())
	})

	It("produces a dealing unit immediately when the belt is empty", func() {
		close(belt)
		cr.Work(belt)
		Expect(created).To(HaveLen(1))
		Expect(gomel.Dealing(created[0])).To(BeTrue())
		Expect(created[0].Creator()).To(Equal(uint16(0)))
	})

	It("produces successive units as the committee advances", func() {
		// Seed the belt with one dealing unit per other process, which alone should push
		// process 0 to create a second (prime) unit once a quorum of them is visible.
		others := []gomel.Unit{}
		for pid := uint16(1); pid < 4; pid++ {
			pu := newDealing(pid)
			u := mustInsert(dag, pu)
			others = append(others, u)
			belt <- u
		}
		close(belt)
		cr.Work(belt)

		Expect(len(created)).To(BeNumerically(">=", 2))
		Expect(gomel.Dealing(created[0])).To(BeTrue())
		Expect(created[1].Level()).To(BeNumerically(">", created[0].Level()))
	})
})
