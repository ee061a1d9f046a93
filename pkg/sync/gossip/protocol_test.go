package gossip_test

import (
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/network"
	"github.com/aleph-committee/aleph-poset/pkg/network/tcp"
	"github.com/aleph-committee/aleph-poset/pkg/poset"
	. "github.com/aleph-committee/aleph-poset/pkg/sync/gossip"
	"github.com/aleph-committee/aleph-poset/pkg/tests"
)

func freeAddr() string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func newLoopbackServers() (a, b network.Server) {
	addrA, addrB := freeAddr(), freeAddr()
	log := zerolog.Nop()
	a, err := tcp.NewServer(addrA, []string{addrA, addrB}, log)
	Expect(err).NotTo(HaveOccurred())
	b, err = tcp.NewServer(addrB, []string{addrA, addrB}, log)
	Expect(err).NotTo(HaveOccurred())
	Expect(a.Start()).To(Succeed())
	Expect(b.Start()).To(Succeed())
	return a, b
}

// syncAdder is a trivial Adder that resolves and inserts every preunit it is given on the
// calling goroutine, recording whatever it successfully adds. It does not buffer preunits
// whose parents are missing — good enough for exercising the wire protocol, not a stand-in
// for the arbiter's retry behavior.
type syncAdder struct {
	dag   gomel.Dag
	mu    sync.Mutex
	added []gomel.Unit
}

func (a *syncAdder) AddPreunits(_ uint16, layers [][]gomel.Preunit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, layer := range layers {
		for _, pu := range layer {
			parents, err := a.dag.DecodeParents(pu)
			if err != nil {
				continue
			}
			u := a.dag.BuildUnit(pu, parents)
			if err := a.dag.Check(u); err != nil {
				continue
			}
			u = a.dag.Transform(u)
			a.dag.Insert(u)
			a.added = append(a.added, u)
		}
	}
}

var _ = Describe("Protocol", func() {

	var (
		dag1, dag2         gomel.Dag
		netserv1, netserv2 network.Server
		adder1, adder2     *syncAdder
	)

	BeforeEach(func() {
		netserv1, netserv2 = newLoopbackServers()
	})

	AfterEach(func() {
		netserv1.Stop()
		netserv2.Stop()
	})

	runOnce := func() {
		adder1 = &syncAdder{dag: dag1}
		adder2 = &syncAdder{dag: dag2}
		peers1 := NewPeerManager(2, 0, 1)
		peers2 := NewPeerManager(2, 1, 1)
		proto1 := NewProtocol(0, dag1, netserv1, peers1, 2*time.Second, adder1, zerolog.Nop())
		proto2 := NewProtocol(1, dag2, netserv2, peers2, 2*time.Second, adder2, zerolog.Nop())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			proto1.In()
		}()
		go func() {
			defer wg.Done()
			proto2.Out()
		}()
		wg.Wait()
	}

	Context("when both dags are empty", func() {
		BeforeEach(func() {
			dag1 = poset.NewDag(2)
			dag2 = poset.NewDag(2)
		})

		It("adds nothing on either side", func() {
			runOnce()
			Expect(adder1.added).To(BeEmpty())
			Expect(adder2.added).To(BeEmpty())
		})
	})

	Context("when the first dag has a single dealing unit the second lacks", func() {
		var theUnit gomel.Unit

		BeforeEach(func() {
			dag1 = poset.NewDag(2)
			pu := tests.NewPreunit(0, 0, gomel.CrownFromParents([]gomel.Unit{nil, nil}), nil, nil)
			var err error
			theUnit, err = tests.AddUnit(dag1, pu)
			Expect(err).NotTo(HaveOccurred())
			dag2 = poset.NewDag(2)
		})

		It("delivers the unit to the second dag", func() {
			runOnce()
			Expect(adder1.added).To(BeEmpty())
			Expect(adder2.added).To(HaveLen(1))
			Expect(adder2.added[0].Hash()).To(Equal(theUnit.Hash()))
			Expect(dag2.GetUnit(theUnit.Hash())).NotTo(BeNil())
		})
	})
})
