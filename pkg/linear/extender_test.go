package linear_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/linear"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

// deterministicSource is a gomel.RandomSource stand-in that never needs real threshold shares:
// it derives "random" bytes from level and creator alone, which is enough to drive the coin
// toss fallback in tests without wiring up tcoin.
type deterministicSource struct{}

func (deterministicSource) Bind(dag gomel.Dag) gomel.Dag { return dag }

func (deterministicSource) RandomBytes(creator uint16, level int) []byte {
	return []byte{byte(creator) ^ byte(level)}
}

func (deterministicSource) DataToInclude(uint16, []gomel.Unit, int) ([]byte, error) {
	return nil, nil
}

var _ = Describe("Extender", func() {

	var (
		dag    gomel.Dag
		rs     gomel.RandomSource
		output chan []gomel.Unit
		ext    *linear.Extender
	)

	BeforeEach(func() {
		dag = tests.NewRandomDag(4, 12)
		rs = deterministicSource{}
		output = make(chan []gomel.Unit, 32)
		ext = linear.NewExtender(dag, rs, 0, output, zerolog.Nop())
	})

	AfterEach(func() {
		ext.Close()
	})

	It("eventually orders at least one round of a densely connected dag", func() {
		ext.Notify()

		var rounds [][]gomel.Unit
		timeout := time.After(2 * time.Second)
	collect:
		for {
			select {
			case r := <-output:
				rounds = append(rounds, r)
				if len(rounds) >= 1 {
					break collect
				}
			case <-timeout:
				break collect
			}
		}

		Expect(rounds).NotTo(BeEmpty())
		Expect(rounds[0]).NotTo(BeEmpty())
	})
})
