package gossip

import (
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("PeerManager", func() {
	var (
		pm    *peerManager
		nProc uint16
		pid   uint16
		idle  int64
	)

	BeforeEach(func() {
		nProc = 16
		pid = 7
		idle = 2
		pm = NewPeerManager(nProc, pid, idle).(*peerManager)
	})

	Describe("NextPeer", func() {
		It("returns a value less than nProc, different than pid", func() {
			next := pm.NextPeer()
			pm.Done(next)
			Expect(next).To(BeNumerically("<", nProc))
			Expect(next).NotTo(BeNumerically("==", pid))
		})
		It("eventually returns all values different than pid", func() {
			values := make(map[uint16]bool)
			for len(values) != int(nProc-1) {
				next := pm.NextPeer()
				pm.Done(next)
				values[next] = true
			}
			_, ok := values[pid]
			Expect(ok).To(BeFalse())
		})
		It("prioritizes requested peers over idle ones", func() {
			var wg sync.WaitGroup
			var toCheck uint16
			toRequest := uint16(13)

			for i := int64(0); i < idle; i++ {
				next := pm.NextPeer()
				if next == toRequest {
					pm.Done(next)
					i--
					continue
				}
				defer pm.Done(next)
			}

			wg.Add(1)
			go func() {
				toCheck = pm.NextPeer()
				wg.Done()
			}()
			pm.Request(toRequest)
			wg.Wait()
			Expect(toCheck).To(BeNumerically("==", toRequest))
		})
	})

	Describe("Begin", func() {
		It("refuses a second concurrent sync with the same pid", func() {
			Expect(pm.Begin(3)).To(BeTrue())
			Expect(pm.Begin(3)).To(BeFalse())
			pm.Done(3)
			Expect(pm.Begin(3)).To(BeTrue())
		})
	})
})
