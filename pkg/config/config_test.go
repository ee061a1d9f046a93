package config_test

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/config"
	"github.com/aleph-committee/aleph-poset/pkg/crypto/signing"
	"github.com/aleph-committee/aleph-poset/pkg/crypto/tcoin"
)

var _ = Describe("Params", func() {
	It("round-trips through JSON", func() {
		var buf bytes.Buffer
		Expect(config.StoreParams(&buf, config.Default())).To(Succeed())
		loaded, err := config.LoadParams(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(config.Default()))
	})

	It("rejects a file with an unknown field", func() {
		_, err := config.LoadParams(bytes.NewBufferString(`{"bogusField": 1}`))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Committee", func() {

	var (
		members   []*config.Member
		committee *config.Committee
	)

	BeforeEach(func() {
		const nProc = 4
		dealt := tcoin.Deal(nProc, 3)
		committee = &config.Committee{Addresses: map[string][]string{}, ThresholdProviders: map[uint16]bool{}}
		for pid := uint16(0); pid < nProc; pid++ {
			pub, priv, err := signing.GenerateKeys()
			Expect(err).NotTo(HaveOccurred())
			members = append(members, &config.Member{Pid: pid, PrivateKey: priv, ThresholdCoin: dealt.ThresholdCoin(int(pid))})
			committee.PublicKeys = append(committee.PublicKeys, pub)
			committee.ThresholdProviders[pid] = true
			committee.Addresses["gossip"] = append(committee.Addresses["gossip"], "localhost:9000")
			committee.Addresses["fetch"] = append(committee.Addresses["fetch"], "localhost:9100")
		}
	})

	It("round-trips a member through its text encoding", func() {
		var buf bytes.Buffer
		Expect(config.StoreMember(&buf, members[0])).To(Succeed())
		loaded, err := config.LoadMember(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Pid).To(Equal(members[0].Pid))
		Expect(loaded.PrivateKey.Encode()).To(Equal(members[0].PrivateKey.Encode()))
	})

	It("round-trips a committee through its text encoding", func() {
		var buf bytes.Buffer
		Expect(config.StoreCommittee(&buf, committee)).To(Succeed())
		loaded, err := config.LoadCommittee(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.PublicKeys).To(HaveLen(4))
		Expect(loaded.ThresholdProviders).To(HaveLen(4))
	})

	It("produces a valid config once combined with params", func() {
		cnf := config.Generate(config.Default(), members[0], committee)
		Expect(config.Valid(cnf)).To(Succeed())
	})
})
