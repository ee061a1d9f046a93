package signing_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/aleph-committee/aleph-poset/pkg/crypto/signing"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

var _ = Describe("Signatures", func() {

	var (
		pu   gomel.Preunit
		pub  gomel.PublicKey
		priv gomel.PrivateKey
		sig  gomel.Signature
	)

	BeforeEach(func() {
		pub, priv, _ = GenerateKeys()
	})

	Describe("checking signatures of preunits", func() {

		BeforeEach(func() {
			pu = tests.NewPreunit(0, 0, gomel.EmptyCrown(4), []byte{}, nil)
			sig = priv.Sign(pu)
			pu.SetSignature(sig)
		})

		It("verifies a correctly signed preunit", func() {
			Expect(pub.Verify(pu)).To(BeTrue())
		})

		It("rejects a forged signature", func() {
			forged := append([]byte{}, sig...)
			forged[0]++
			pu.SetSignature(forged)
			Expect(pub.Verify(pu)).To(BeFalse())
		})
	})
})
