package tcp

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/logging"
	"github.com/aleph-committee/aleph-poset/pkg/network"
)

type server struct {
	ln          *net.TCPListener
	localAddr   *net.TCPAddr
	remoteAddrs []string
	queue       chan network.Connection
	exitChan    chan struct{}
	wg          sync.WaitGroup
	log         zerolog.Logger
}

// NewServer creates a network.Server listening on localAddr, dialing peers from remoteAddrs
// (indexed by pid) on demand.
func NewServer(localAddr string, remoteAddrs []string, log zerolog.Logger) (network.Server, error) {
	localTCP, err := net.ResolveTCPAddr("tcp", localAddr)
	if err != nil {
		return nil, err
	}
	return &server{
		localAddr:   localTCP,
		remoteAddrs: remoteAddrs,
		queue:       make(chan network.Connection, 5*len(remoteAddrs)),
		exitChan:    make(chan struct{}),
		log:         log,
	}, nil
}

func (s *server) Start() error {
	ln, err := net.ListenTCP("tcp", s.localAddr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.exitChan:
				return
			default:
				ln.SetDeadline(time.Now().Add(2 * time.Second))
				link, err := ln.AcceptTCP()
				if err != nil {
					continue
				}
				select {
				case s.queue <- newConn(link, s.log):
					s.log.Info().Msg(logging.ConnectionReceived)
				default:
					link.Close()
					s.log.Info().Msg(logging.TooManyIncoming)
				}
			}
		}
	}()
	return nil
}

func (s *server) Listen(timeout time.Duration) (network.Connection, error) {
	select {
	case conn := <-s.queue:
		return conn, nil
	case <-time.After(timeout):
		return nil, errors.New("tcp: listen timed out")
	}
}

func (s *server) Dial(pid uint16, timeout time.Duration) (network.Connection, error) {
	dialer := &net.Dialer{Deadline: time.Now().Add(timeout)}
	link, err := dialer.Dial("tcp", s.remoteAddrs[pid])
	if err != nil {
		return nil, err
	}
	conn := newConn(link, s.log)
	s.log.Info().Msg(logging.ConnectionEstablished)
	return conn, nil
}

func (s *server) Stop() {
	close(s.exitChan)
	if s.ln != nil {
		s.ln.Close()
	}
	s.wg.Wait()
}
