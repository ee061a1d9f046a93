package gossip

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/logging"
	"github.com/aleph-committee/aleph-poset/pkg/network"
	"github.com/aleph-committee/aleph-poset/pkg/sync/handshake"
)

// Protocol runs one incoming or one outgoing gossip exchange at a time. The dag passed in is
// assumed to already have any compliance checks and random-source bookkeeping wired in (see
// gomel.RandomSource.Bind) — gossip itself only ever calls the plain Dag API.
type protocol struct {
	pid     uint16
	dag     gomel.Dag
	netserv network.Server
	peers   PeerManager
	timeout time.Duration
	adder   Adder
	syncIDs []uint32
	log     zerolog.Logger
}

// NewProtocol builds a pull-push gossip protocol for committee member pid. Every preunit it
// decodes off the wire is handed to adder rather than inserted directly.
func NewProtocol(pid uint16, dag gomel.Dag, netserv network.Server, peers PeerManager, timeout time.Duration, adder Adder, log zerolog.Logger) *protocol {
	return &protocol{
		pid:     pid,
		dag:     dag,
		netserv: netserv,
		peers:   peers,
		timeout: timeout,
		adder:   adder,
		syncIDs: make([]uint32, dag.NProc()),
		log:     log,
	}
}

// In handles a single incoming sync. The flow:
//  1. Receive a consistent snapshot of the caller's maximal units as (hash, height) pairs.
//  2. Compute and send the same summary for our dag.
//  3. Send the units that are predecessors of the caller's snapshot and successors of ours, and
//     any requests for hashes named in their summary we don't recognize.
//  4. Receive their units in two batches (their initial batch, then whatever they created while
//     the sync was running) plus their requests. If they made requests, answer with one more
//     batch of units — this only happens in the presence of forks.
//  5. Add everything received to the dag.
func (p *protocol) In() {
	conn, err := p.netserv.Listen(p.timeout)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.TimeoutAfter(p.timeout)

	pid, sid, err := handshake.AcceptGreeting(conn)
	if err != nil {
		p.log.Error().Str("where", "gossip.in.greeting").Msg(err.Error())
		return
	}
	if int(pid) >= len(p.syncIDs) {
		p.log.Warn().Uint16(logging.PID, pid).Msg("gossip: greeted by an unknown pid")
		return
	}
	if !p.peers.Begin(pid) {
		return
	}
	defer p.peers.Done(pid)

	log := p.log.With().Uint16(logging.PID, pid).Uint32(logging.SID, sid).Logger()
	log.Info().Msg(logging.SyncStarted)

	maxSnapshot := dagMaxSnapshot(p.dag)
	localInfo := toDagInfo(maxSnapshot)

	log.Debug().Msg(logging.GetDagInfo)
	theirInfo, err := decodeDagInfo(conn)
	if err != nil {
		log.Error().Str("where", "gossip.in.decodeDagInfo").Msg(err.Error())
		return
	}

	log.Debug().Msg(logging.SendDagInfo)
	if err := encodeDagInfo(conn, localInfo); err != nil {
		log.Error().Str("where", "gossip.in.encodeDagInfo").Msg(err.Error())
		return
	}

	toSend := unitsToSend(p.dag, maxSnapshot, theirInfo, nil)
	log.Debug().Msg(logging.SendUnits)
	if err := encodeUnits(conn, toLayers(toSend)); err != nil {
		log.Error().Str("where", "gossip.in.encodeUnits").Msg(err.Error())
		return
	}
	log.Debug().Int(logging.Size, len(toSend)).Msg(logging.SentUnits)

	req := requestsToSend(p.dag, theirInfo, newStaticHashSet(nil))
	log.Debug().Msg(logging.SendRequests)
	if err := encodeRequests(conn, req); err != nil {
		log.Error().Str("where", "gossip.in.encodeRequests").Msg(err.Error())
		return
	}
	if err := conn.Flush(); err != nil {
		log.Error().Str("where", "gossip.in.flush").Msg(err.Error())
		return
	}

	log.Debug().Msg(logging.GetPreunits)
	received, err := decodeUnits(conn)
	if err != nil {
		log.Error().Str("where", "gossip.in.decodeUnits").Msg(err.Error())
		return
	}
	log.Debug().Int(logging.Size, countLayers(received)).Msg(logging.ReceivedPreunits)

	log.Debug().Msg(logging.GetPreunits)
	freshReceived, err := decodeUnits(conn)
	if err != nil {
		log.Error().Str("where", "gossip.in.decodeUnits(fresh)").Msg(err.Error())
		return
	}
	log.Debug().Int(logging.Size, countLayers(freshReceived)).Msg(logging.ReceivedPreunits)
	received = append(received, freshReceived...)

	log.Debug().Msg(logging.GetRequests)
	theirReq, err := decodeRequests(conn)
	if err != nil {
		log.Error().Str("where", "gossip.in.decodeRequests").Msg(err.Error())
		return
	}

	if nonempty(theirReq) {
		log.Info().Msg(logging.AdditionalExchange)
		extra := unitsToSend(p.dag, maxSnapshot, theirInfo, theirReq)
		log.Debug().Msg(logging.SendUnits)
		if err := encodeUnits(conn, toLayers(extra)); err != nil {
			log.Error().Str("where", "gossip.in.encodeUnits(extra)").Msg(err.Error())
			return
		}
		if err := conn.Flush(); err != nil {
			log.Error().Str("where", "gossip.in.flush(extra)").Msg(err.Error())
			return
		}
	}

	log.Debug().Msg(logging.AddUnits)
	p.adder.AddPreunits(pid, received)
	log.Info().Int(logging.Sent, len(toSend)).Msg(logging.SyncCompleted)
}

// Out handles a single outgoing sync, initiated with whichever peer PeerManager.NextPeer picks.
// The flow mirrors In from the dialer's side, plus a final "fresh units" exchange: units created
// locally between computing the initial snapshot and receiving the peer's requests, so a slow
// round trip doesn't lose a unit created mid-sync.
func (p *protocol) Out() {
	remotePid := p.peers.NextPeer()
	defer p.peers.Done(remotePid)

	conn, err := p.netserv.Dial(remotePid, p.timeout)
	if err != nil {
		p.log.Error().Str("where", "gossip.out.dial").Msg(err.Error())
		return
	}
	defer conn.Close()
	conn.TimeoutAfter(p.timeout)

	sid := atomic.AddUint32(&p.syncIDs[remotePid], 1)
	if err := handshake.Greet(conn, p.pid, sid); err != nil {
		p.log.Error().Str("where", "gossip.out.greeting").Msg(err.Error())
		return
	}

	log := p.log.With().Uint16(logging.PID, remotePid).Uint32(logging.SID, sid).Logger()
	log.Info().Msg(logging.SyncStarted)

	maxSnapshot := dagMaxSnapshot(p.dag)
	localInfo := toDagInfo(maxSnapshot)

	log.Debug().Msg(logging.SendDagInfo)
	if err := encodeDagInfo(conn, localInfo); err != nil {
		log.Error().Str("where", "gossip.out.encodeDagInfo").Msg(err.Error())
		return
	}
	if err := conn.Flush(); err != nil {
		log.Error().Str("where", "gossip.out.flush(first)").Msg(err.Error())
		return
	}

	log.Debug().Msg(logging.GetDagInfo)
	theirInfo, err := decodeDagInfo(conn)
	if err != nil {
		log.Error().Str("where", "gossip.out.decodeDagInfo").Msg(err.Error())
		return
	}

	log.Debug().Msg(logging.GetPreunits)
	received, err := decodeUnits(conn)
	if err != nil {
		log.Error().Str("where", "gossip.out.decodeUnits").Msg(err.Error())
		return
	}
	log.Debug().Int(logging.Size, countLayers(received)).Msg(logging.ReceivedPreunits)

	log.Debug().Msg(logging.GetRequests)
	theirReq, err := decodeRequests(conn)
	if err != nil {
		log.Error().Str("where", "gossip.out.decodeRequests").Msg(err.Error())
		return
	}

	toSend := unitsToSend(p.dag, maxSnapshot, theirInfo, theirReq)
	log.Debug().Msg(logging.SendUnits)
	if err := encodeUnits(conn, toLayers(toSend)); err != nil {
		log.Error().Str("where", "gossip.out.encodeUnits").Msg(err.Error())
		return
	}
	log.Debug().Int(logging.Size, len(toSend)).Msg(logging.SentUnits)

	freshSnapshot := dagMaxSnapshot(p.dag)
	fresh := unitsToSend(p.dag, freshSnapshot, localInfo, nil)
	theirKnown := newStaticHashSet(hashesFromPreunitLayers(received))
	fresh = theirKnown.filterOutKnownUnits(fresh)
	log.Debug().Msg(logging.SendFreshUnits)
	if err := encodeUnits(conn, toLayers(fresh)); err != nil {
		log.Error().Str("where", "gossip.out.encodeUnits(fresh)").Msg(err.Error())
		return
	}
	log.Debug().Int(logging.Size, len(fresh)).Msg(logging.SentFreshUnits)

	req := requestsToSend(p.dag, theirInfo, theirKnown)
	log.Debug().Msg(logging.SendRequests)
	if err := encodeRequests(conn, req); err != nil {
		log.Error().Str("where", "gossip.out.encodeRequests").Msg(err.Error())
		return
	}
	if err := conn.Flush(); err != nil {
		log.Error().Str("where", "gossip.out.flush(second)").Msg(err.Error())
		return
	}

	if nonempty(req) {
		log.Info().Msg(logging.AdditionalExchange)
		log.Debug().Msg(logging.GetPreunits)
		extra, err := decodeUnits(conn)
		if err != nil {
			log.Error().Str("where", "gossip.out.decodeUnits(extra)").Msg(err.Error())
			return
		}
		received = append(received, extra...)
	}

	log.Debug().Msg(logging.AddUnits)
	p.adder.AddPreunits(remotePid, received)
	log.Info().Int(logging.Sent, len(toSend)).Int(logging.FreshSent, len(fresh)).Msg(logging.SyncCompleted)
}

func countLayers(layers [][]gomel.Preunit) int {
	n := 0
	for _, layer := range layers {
		n += len(layer)
	}
	return n
}
