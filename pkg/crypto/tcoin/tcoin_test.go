package tcoin_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/crypto/tcoin"
)

var _ = Describe("ThresholdCoin", func() {

	const (
		nProc     = 7
		threshold = 3
		nonce     = 42
	)

	var dealt *tcoin.Dealt

	BeforeEach(func() {
		dealt = tcoin.Deal(nProc, threshold)
	})

	It("builds a threshold coin per process", func() {
		for pid := 0; pid < nProc; pid++ {
			tc := dealt.ThresholdCoin(pid)
			Expect(tc).NotTo(BeNil())
			Expect(tc.Threshold()).To(Equal(threshold))
		}
	})

	It("produces coin shares that verify against the issuing process's coin", func() {
		tc := dealt.ThresholdCoin(0)
		share := tc.CreateCoinShare(nonce)
		Expect(tc.VerifyCoinShare(share, nonce)).To(BeTrue())
	})

	It("rejects a coin share checked against the wrong nonce", func() {
		tc := dealt.ThresholdCoin(0)
		share := tc.CreateCoinShare(nonce)
		Expect(tc.VerifyCoinShare(share, nonce+1)).To(BeFalse())
	})

	It("combines exactly threshold-many shares into a valid coin", func() {
		tc := dealt.ThresholdCoin(0)
		shares := make([]*tcoin.CoinShare, threshold)
		for pid := 0; pid < threshold; pid++ {
			shares[pid] = dealt.ThresholdCoin(pid).CreateCoinShare(nonce)
		}
		coin, ok := tc.CombineCoinShares(shares)
		Expect(ok).To(BeTrue())
		Expect(tc.VerifyCoin(coin, nonce)).To(BeTrue())
	})

	It("fails to combine fewer than threshold shares", func() {
		tc := dealt.ThresholdCoin(0)
		shares := make([]*tcoin.CoinShare, threshold-1)
		for pid := 0; pid < threshold-1; pid++ {
			shares[pid] = dealt.ThresholdCoin(pid).CreateCoinShare(nonce)
		}
		_, ok := tc.CombineCoinShares(shares)
		Expect(ok).To(BeFalse())
	})

	It("combines to the same coin regardless of which quorum of shares is used", func() {
		tcA := dealt.ThresholdCoin(0)
		sharesA := make([]*tcoin.CoinShare, threshold)
		for i, pid := 0, 0; i < threshold; i, pid = i+1, pid+1 {
			sharesA[i] = dealt.ThresholdCoin(pid).CreateCoinShare(nonce)
		}
		sharesB := make([]*tcoin.CoinShare, threshold)
		for i, pid := 0, nProc-threshold; i < threshold; i, pid = i+1, pid+1 {
			sharesB[i] = dealt.ThresholdCoin(pid).CreateCoinShare(nonce)
		}

		coinA, okA := tcA.CombineCoinShares(sharesA)
		coinB, okB := tcA.CombineCoinShares(sharesB)
		Expect(okA).To(BeTrue())
		Expect(okB).To(BeTrue())
		Expect(coinA.RandomBytes()).To(Equal(coinB.RandomBytes()))
		Expect(coinA.Toss()).To(Equal(coinB.Toss()))
	})

	It("round-trips a coin share through Marshal/UnmarshalCoinShare", func() {
		tc := dealt.ThresholdCoin(2)
		share := tc.CreateCoinShare(nonce)

		decoded, err := tcoin.UnmarshalCoinShare(share.Marshal())
		Expect(err).NotTo(HaveOccurred())
		Expect(tc.VerifyCoinShare(decoded, nonce)).To(BeTrue())
	})

	It("round-trips a threshold coin through MarshalBinary/UnmarshalThresholdCoin", func() {
		tc := dealt.ThresholdCoin(0)

		encoded, err := tc.MarshalBinary()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := tcoin.UnmarshalThresholdCoin(encoded)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.Threshold()).To(Equal(tc.Threshold()))

		share := decoded.CreateCoinShare(nonce)
		Expect(decoded.VerifyCoinShare(share, nonce)).To(BeTrue())
	})
})
