// Package network defines the transport-level abstractions the sync protocol runs over:
// a byte-stream Connection between two processes, and the Dialer/Listener/Server that produce
// them. Concrete transports live in subpackages (tcp).
package network

import "time"

// Connection represents a byte stream between two processes. Which process is on the other
// end is established at the sync-protocol level (see the gossip greeting), not here.
type Connection interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Flush() error
	Close() error
	TimeoutAfter(t time.Duration)
}
