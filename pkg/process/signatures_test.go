package process

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/crypto/signing"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/poset"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

var _ = Describe("checkSignatures", func() {

	const nProc = 4

	var (
		dag   gomel.Dag
		keys  []gomel.PublicKey
		privs []gomel.PrivateKey
	)

	BeforeEach(func() {
		dag = poset.NewDag(nProc)
		keys = make([]gomel.PublicKey, nProc)
		privs = make([]gomel.PrivateKey, nProc)
		for i := range keys {
			pub, priv, err := signing.GenerateKeys()
			Expect(err).NotTo(HaveOccurred())
			keys[i] = pub
			privs[i] = priv
		}
		dag.AddCheck(checkSignatures(keys))
	})

	signedDealing := func(creator uint16) gomel.Preunit {
		view := gomel.CrownFromParents(make([]gomel.Unit, nProc))
		pu := tests.NewPreunit(creator, 0, view, nil, nil)
		pu.SetSignature(privs[creator].Sign(pu))
		return pu
	}

	It("accepts a unit correctly signed by its creator", func() {
		_, err := tests.AddUnit(dag, signedDealing(0))
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a unit signed by a different process's key", func() {
		view := gomel.CrownFromParents(make([]gomel.Unit, nProc))
		pu := tests.NewPreunit(0, 0, view, nil, nil)
		pu.SetSignature(privs[1].Sign(pu))

		_, err := tests.AddUnit(dag, pu)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a unit with a garbage signature", func() {
		view := gomel.CrownFromParents(make([]gomel.Unit, nProc))
		pu := tests.NewPreunit(0, 0, view, nil, nil)

		_, err := tests.AddUnit(dag, pu)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a unit from a creator id with no registered key", func() {
		shortDag := poset.NewDag(nProc)
		shortDag.AddCheck(checkSignatures(keys[:nProc-1]))

		view := gomel.CrownFromParents(make([]gomel.Unit, nProc))
		pu := tests.NewPreunit(nProc-1, 0, view, nil, nil)
		pu.SetSignature(privs[nProc-1].Sign(pu))

		_, err := tests.AddUnit(shortDag, pu)
		Expect(err).To(HaveOccurred())
	})
})
