// Package tcp implements the network.Connection/Dialer/Listener/Server family on top
// of plain TCP sockets.
package tcp

import (
	"bufio"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/logging"
)

type conn struct {
	link   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	sent   uint32
	recv   uint32
	log    zerolog.Logger
}

func newConn(link net.Conn, log zerolog.Logger) *conn {
	return &conn{
		link:   link,
		reader: bufio.NewReader(link),
		writer: bufio.NewWriter(link),
		log:    log,
	}
}

func (c *conn) Read(b []byte) (int, error) {
	n, err := c.reader.Read(b)
	c.recv += uint32(n)
	return n, err
}

func (c *conn) Write(b []byte) (int, error) {
	written, n := 0, 0
	var err error
	for written < len(b) {
		n, err = c.writer.Write(b[written:])
		written += n
		if err == bufio.ErrBufferFull {
			err = c.writer.Flush()
		}
		if err != nil {
			break
		}
	}
	c.sent += uint32(written)
	return written, err
}

func (c *conn) Flush() error {
	return c.writer.Flush()
}

func (c *conn) Close() error {
	err := c.link.Close()
	c.log.Info().Uint32(logging.Sent, c.sent).Uint32(logging.Recv, c.recv).Msg(logging.ConnectionClosed)
	return err
}

func (c *conn) TimeoutAfter(t time.Duration) {
	c.link.SetDeadline(time.Now().Add(t))
}
