package tcp

import (
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/logging"
	"github.com/aleph-committee/aleph-poset/pkg/network"
)

type listener struct {
	ln  *net.TCPListener
	log zerolog.Logger
}

// NewListener starts listening for incoming connections on localAddr.
func NewListener(localAddr string, log zerolog.Logger) (network.Listener, error) {
	localTCP, err := net.ResolveTCPAddr("tcp", localAddr)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenTCP("tcp", localTCP)
	if err != nil {
		return nil, err
	}
	return &listener{
		ln:  ln,
		log: log,
	}, nil
}

func (l *listener) Listen(timeout time.Duration) (network.Connection, error) {
	l.ln.SetDeadline(time.Now().Add(timeout))
	link, err := l.ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	l.log.Info().Msg(logging.ConnectionReceived)
	return newConn(link, l.log), nil
}
