package process

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/config"
	"github.com/aleph-committee/aleph-poset/pkg/creator"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/linear"
	"github.com/aleph-committee/aleph-poset/pkg/network"
	"github.com/aleph-committee/aleph-poset/pkg/network/tcp"
	"github.com/aleph-committee/aleph-poset/pkg/poset"
	"github.com/aleph-committee/aleph-poset/pkg/random"
	"github.com/aleph-committee/aleph-poset/pkg/sync/gossip"
)

// DataSource is the same contract pkg/creator.DataSource uses, re-exported here so callers
// assembling a Process don't need to import pkg/creator themselves.
type DataSource = creator.DataSource

// Process is a single running committee member: a dag, the common coin bound to it, the
// arbiter serializing every incoming mutation, a creator producing this process's own units, an
// extender turning the dag into a linear order, and the gossip server keeping it in sync with
// everyone else. NewProcess assembles these; Start and Stop run and tear the whole thing down.
type Process struct {
	dag gomel.Dag

	netserv network.Server
	arbiter *Arbiter
	server  *gossip.Server
	pacer   *createPacer
	ext     *linear.Extender

	wg sync.WaitGroup
}

// NewProcess assembles a Process from conf, delivering every round's linearly ordered units to
// preblocks. ds supplies the payload this process's own units carry; it may be nil.
func NewProcess(conf config.Config, ds DataSource, preblocks chan<- []gomel.Unit, log zerolog.Logger) (*Process, error) {
	var dag gomel.Dag = poset.NewDag(conf.NProc)
	dag.AddCheck(checkSignatures(conf.PublicKeys))

	coin := random.NewCoin(conf.ThresholdCoin, conf.ThresholdProviders)
	dag = coin.Bind(dag)

	netserv, err := tcp.NewServer(conf.Addresses["gossip"][conf.Pid], conf.Addresses["gossip"], log)
	if err != nil {
		return nil, err
	}

	arbiter := NewArbiter(dag, 10*int(conf.NProc), 10*int(conf.NProc), log)
	ext := linear.NewExtender(dag, coin, conf.Pid, preblocks, log)
	pacer := newCreatePacer(conf.CreateDelayDuration())

	arbiter.Notify(func(u gomel.Unit) {
		ext.Notify()
		pacer.feed(u)
	})

	send := pacer.wrapSend(func(gomel.Unit) { ext.Notify() })
	cr := creator.New(dag, coin, conf.Pid, conf.MaxParents, conf.PrivateKey, ds, conf.LegacyParentSelection, send, log)

	peers := gossip.NewPeerManager(conf.NProc, conf.Pid, int64(conf.NOutSync))
	server := gossip.NewServer(conf.Pid, dag, netserv, peers, conf.TimeoutDuration(), arbiter, uint(conf.NInSync), uint(conf.NOutSync), log)

	p := &Process{
		dag:     dag,
		netserv: netserv,
		arbiter: arbiter,
		server:  server,
		pacer:   pacer,
		ext:     ext,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		cr.Work(pacer.unitBelt())
	}()

	return p, nil
}

// Start brings up the network listener, the arbiter, the creation pacer and the gossip server.
func (p *Process) Start() error {
	if err := p.netserv.Start(); err != nil {
		return err
	}
	p.arbiter.Start()
	p.pacer.start()
	p.server.Start()
	return nil
}

// Stop shuts the process down in dependency order: new syncs first, so nothing new reaches the
// pacer or the arbiter, then the pacer (which stops feeding the creator, ending Work), then the
// arbiter and extender, then the network.
func (p *Process) Stop() {
	p.server.Stop()
	p.pacer.stop()
	p.wg.Wait()
	p.arbiter.Stop()
	p.ext.Close()
	p.netserv.Stop()
}
