package random_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/crypto/tcoin"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/poset"
	"github.com/aleph-committee/aleph-poset/pkg/random"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

var _ = Describe("Coin", func() {

	const (
		nProc     = 4
		threshold = 3
	)

	var (
		dealt     *tcoin.Dealt
		providers map[uint16]bool
		dag       gomel.Dag
		coin      *random.Coin
	)

	BeforeEach(func() {
		dealt = tcoin.Deal(nProc, threshold)
		providers = map[uint16]bool{0: true, 1: true, 2: true, 3: true}
		dag = poset.NewDag(nProc)
		coin = random.NewCoin(dealt.ThresholdCoin(0), providers)
		dag = coin.Bind(dag)
	})

	dealingWithShare := func(creator uint16) gomel.Preunit {
		view := gomel.CrownFromParents(make([]gomel.Unit, nProc))
		share := dealt.ThresholdCoin(int(creator)).CreateCoinShare(0)
		return tests.NewPreunit(creator, 0, view, nil, share.Marshal())
	}

	It("accepts a dealing unit carrying a valid coin share from a provider", func() {
		_, err := tests.AddUnit(dag, dealingWithShare(0))
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a unit whose coin share does not verify against its level", func() {
		view := gomel.CrownFromParents(make([]gomel.Unit, nProc))
		wrongNonceShare := dealt.ThresholdCoin(0).CreateCoinShare(1)
		pu := tests.NewPreunit(0, 0, view, nil, wrongNonceShare.Marshal())
		_, err := tests.AddUnit(dag, pu)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a unit from a provider that carries no coin share", func() {
		view := gomel.CrownFromParents(make([]gomel.Unit, nProc))
		pu := tests.NewPreunit(0, 0, view, nil, nil)
		_, err := tests.AddUnit(dag, pu)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a unit from a non-provider that carries a coin share", func() {
		nonProviders := map[uint16]bool{0: true, 1: true, 2: true}
		var dag2 gomel.Dag = poset.NewDag(nProc)
		coin2 := random.NewCoin(dealt.ThresholdCoin(0), nonProviders)
		dag2 = coin2.Bind(dag2)

		_, err := tests.AddUnit(dag2, dealingWithShare(3))
		Expect(err).To(HaveOccurred())
	})

	It("returns nil random bytes until threshold shares for a level have been observed", func() {
		Expect(coin.RandomBytes(0, 0)).To(BeNil())

		_, err := tests.AddUnit(dag, dealingWithShare(0))
		Expect(err).NotTo(HaveOccurred())
		Expect(coin.RandomBytes(0, 0)).To(BeNil())

		_, err = tests.AddUnit(dag, dealingWithShare(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(coin.RandomBytes(0, 0)).To(BeNil())
	})

	It("combines threshold-many observed shares into random bytes for the level", func() {
		for creator := uint16(0); creator < threshold; creator++ {
			_, err := tests.AddUnit(dag, dealingWithShare(creator))
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(coin.RandomBytes(0, 0)).NotTo(BeNil())
	})

	It("produces coin share data only when building a prime unit for a providing process", func() {
		dealing0, err := tests.AddUnit(dag, dealingWithShare(0))
		Expect(err).NotTo(HaveOccurred())

		parents := make([]gomel.Unit, nProc)
		data, err := coin.DataToInclude(0, parents, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).NotTo(BeNil())

		parents[0] = dealing0
		data, err = coin.DataToInclude(0, parents, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(BeNil())

		nonProvider := random.NewCoin(dealt.ThresholdCoin(0), map[uint16]bool{})
		data, err = nonProvider.DataToInclude(0, make([]gomel.Unit, nProc), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(BeNil())
	})
})
