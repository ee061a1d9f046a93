package gossip

import (
	"context"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// PeerManager picks which committee member to gossip with next, and tracks which members are
// currently being synced with so the same pid is never synced with twice concurrently.
type PeerManager interface {
	// NextPeer returns the pid of the next committee member to initiate an outgoing sync with,
	// blocking until a slot is free. Never returns the local pid.
	NextPeer() uint16
	// Begin reports an incoming sync starting with pid, returning false if a sync with that pid is
	// already in progress in either direction.
	Begin(pid uint16) bool
	// Done reports that a sync with pid (in either direction) has finished.
	Done(pid uint16)
	// Request schedules the next outgoing sync to happen with pid, ahead of any idle-chosen peer.
	Request(pid uint16)
}

// inUse states, one per pid:
const (
	free = iota
	busyIncoming
	busyRequested
	busyIdle
)

type peerManager struct {
	nProc   uint16
	myPid   uint16
	inUse   []int32
	idle    *semaphore.Weighted
	queue   chan uint16
	randSrc *rand.Rand
}

// NewPeerManager constructs a PeerManager for committee member myPid out of nProc, allowing up to
// idleCap outgoing syncs to be started without an explicit Request at any one time.
func NewPeerManager(nProc, myPid uint16, idleCap int64) PeerManager {
	return &peerManager{
		nProc:   nProc,
		myPid:   myPid,
		inUse:   make([]int32, nProc),
		idle:    semaphore.NewWeighted(idleCap),
		queue:   make(chan uint16, nProc),
		randSrc: rand.New(rand.NewSource(int64(myPid) + 1)),
	}
}

func (pm *peerManager) NextPeer() uint16 {
	for {
		select {
		case pid := <-pm.queue:
			if atomic.CompareAndSwapInt32(&pm.inUse[pid], free, busyRequested) {
				return pid
			}
		default:
			pm.idle.Acquire(context.Background(), 1)
			pid := pm.randomPeer()
			if atomic.CompareAndSwapInt32(&pm.inUse[pid], free, busyIdle) {
				return pid
			}
			pm.idle.Release(1)
		}
	}
}

func (pm *peerManager) randomPeer() uint16 {
	pid := uint16(pm.randSrc.Intn(int(pm.nProc - 1)))
	if pid >= pm.myPid {
		pid++
	}
	return pid
}

func (pm *peerManager) Begin(pid uint16) bool {
	return atomic.CompareAndSwapInt32(&pm.inUse[pid], free, busyIncoming)
}

func (pm *peerManager) Done(pid uint16) {
	if atomic.SwapInt32(&pm.inUse[pid], free) == busyIdle {
		pm.idle.Release(1)
	}
}

func (pm *peerManager) Request(pid uint16) {
	if atomic.LoadInt32(&pm.inUse[pid]) != free {
		return
	}
	select {
	case pm.queue <- pid:
	default:
	}
}
