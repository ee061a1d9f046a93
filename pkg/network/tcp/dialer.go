package tcp

import (
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/network"
)

type dialer struct {
	remoteAddrs []string
	log         zerolog.Logger
}

// NewDialer creates a dialer for the given addresses, indexed by process id.
func NewDialer(remoteAddrs []string, log zerolog.Logger) network.Dialer {
	return &dialer{
		remoteAddrs: remoteAddrs,
		log:         log,
	}
}

func (d *dialer) Dial(pid uint16) (network.Connection, error) {
	dialer := &net.Dialer{Deadline: time.Now().Add(2 * time.Second)}
	link, err := dialer.Dial("tcp", d.remoteAddrs[pid])
	if err != nil {
		return nil, err
	}
	return newConn(link, d.log), nil
}

func (d *dialer) Length() int {
	return len(d.remoteAddrs)
}
