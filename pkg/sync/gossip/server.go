package gossip

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/network"
)

// Server runs a fixed-size pool of workers repeatedly performing incoming and outgoing gossip
// syncs against a dag, until stopped.
type Server struct {
	proto     *protocol
	nIn, nOut uint
	quit      chan struct{}
	wg        sync.WaitGroup
}

// NewServer builds a gossip Server for committee member pid, running nIn workers accepting
// incoming syncs and nOut workers initiating outgoing ones, each bounded by timeout. Every
// preunit any sync decodes is handed to adder.
func NewServer(pid uint16, dag gomel.Dag, netserv network.Server, peers PeerManager, timeout time.Duration, adder Adder, nIn, nOut uint, log zerolog.Logger) *Server {
	return &Server{
		proto: NewProtocol(pid, dag, netserv, peers, timeout, adder, log),
		nIn:   nIn,
		nOut:  nOut,
		quit:  make(chan struct{}),
	}
}

// Start launches the worker pools in the background.
func (s *Server) Start() {
	for i := uint(0); i < s.nIn; i++ {
		s.wg.Add(1)
		go s.loop(s.proto.In)
	}
	for i := uint(0); i < s.nOut; i++ {
		s.wg.Add(1)
		go s.loop(s.proto.Out)
	}
}

// Stop halts every worker and waits for the currently running syncs to finish.
func (s *Server) Stop() {
	close(s.quit)
	s.wg.Wait()
}

func (s *Server) loop(work func()) {
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		default:
			work()
		}
	}
}
