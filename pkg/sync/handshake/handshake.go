// Package handshake implements the tiny protocol run at the start of every sync to let each
// side learn who it is talking to and which attempt this is (used for greeting a fresh accepted
// or dialed network.Connection with process identity, since the transport layer itself is
// identity-agnostic).
package handshake

import (
	"encoding/binary"
	"io"

	"github.com/aleph-committee/aleph-poset/pkg/network"
)

// Greet sends a greeting identifying the local pid and the ordinal of this sync attempt (sid) to
// the given connection.
func Greet(conn network.Connection, pid uint16, sid uint32) error {
	var data [6]byte
	binary.LittleEndian.PutUint16(data[0:], pid)
	binary.LittleEndian.PutUint32(data[2:], sid)
	_, err := conn.Write(data[:])
	if err != nil {
		return err
	}
	return conn.Flush()
}

// AcceptGreeting reads a greeting sent by Greet off the given connection.
func AcceptGreeting(conn network.Connection) (pid uint16, sid uint32, err error) {
	var data [6]byte
	_, err = io.ReadFull(conn, data[:])
	if err != nil {
		return
	}
	pid = binary.LittleEndian.Uint16(data[0:])
	sid = binary.LittleEndian.Uint32(data[2:])
	return
}
