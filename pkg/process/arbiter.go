// Package process wires together the pieces built in the other packages — the dag, unit
// creation, the random source, linear ordering and the sync servers — into a single running
// committee member.
package process

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/logging"
)

// workItem is one gossip.Adder.AddPreunits call queued up for the arbiter's goroutine.
type workItem struct {
	source uint16
	layers [][]gomel.Preunit
}

// Arbiter is the sole mutator of a dag. Every preunit coming off the wire, from however many
// concurrently running syncs, is funneled through its work channel and resolved one at a time
// on a single goroutine — no two goroutines ever call dag.Insert. Preunits whose parents
// haven't arrived yet are held in a bounded pendingBuffer and retried as soon as the parent
// they were waiting on lands, however it lands (locally created or pulled from a different
// peer than the one they arrived with).
//
// Arbiter implements gossip.Adder, so it can be handed directly to gossip.NewServer.
type Arbiter struct {
	dag     gomel.Dag
	work    chan workItem
	pending *pendingBuffer
	notify  []func(gomel.Unit)
	log     zerolog.Logger

	wg sync.WaitGroup
}

// NewArbiter builds an Arbiter over dag. queueSize bounds how many AddPreunits calls can be
// queued before a gossip worker calling it blocks; pendingCapacity bounds how many preunits may
// sit waiting on missing parents at once.
func NewArbiter(dag gomel.Dag, queueSize, pendingCapacity int, log zerolog.Logger) *Arbiter {
	return &Arbiter{
		dag:     dag,
		work:    make(chan workItem, queueSize),
		pending: newPendingBuffer(pendingCapacity),
		log:     log.With().Int(logging.Service, logging.SchedulerService).Logger(),
	}
}

// Notify registers fn to be called, on the arbiter's own goroutine, with every unit the arbiter
// successfully inserts into the dag. Registering is only safe before Start is called.
func (a *Arbiter) Notify(fn func(gomel.Unit)) {
	a.notify = append(a.notify, fn)
}

// Start launches the arbiter's single processing goroutine.
func (a *Arbiter) Start() {
	a.wg.Add(1)
	go a.run()
}

// Stop drains whatever is already queued, then shuts the arbiter down.
func (a *Arbiter) Stop() {
	close(a.work)
	a.wg.Wait()
}

// AddPreunits satisfies gossip.Adder. It queues layers for processing on the arbiter's own
// goroutine and returns without waiting for them to actually land in the dag, blocking only if
// the queue is already full.
func (a *Arbiter) AddPreunits(source uint16, layers [][]gomel.Preunit) {
	a.work <- workItem{source: source, layers: layers}
}

func (a *Arbiter) run() {
	defer a.wg.Done()
	for item := range a.work {
		for _, layer := range item.layers {
			for _, pu := range layer {
				a.addUnit(item.source, pu)
			}
		}
	}
}

// addUnit tries to resolve and insert pu. If some parent is missing it buffers pu instead and
// returns without error; addUnit is also how a buffered entry gets retried once satisfied.
func (a *Arbiter) addUnit(source uint16, pu gomel.Preunit) {
	log := a.log.With().Uint16(logging.PID, source).Uint16(logging.Creator, pu.Creator()).Int(logging.Height, pu.Height()).Logger()

	if a.dag.GetUnit(pu.Hash()) != nil {
		log.Debug().Msg(logging.DuplicatedPreunits)
		return
	}

	if missing := a.missingParents(pu); len(missing) > 0 {
		a.pending.add(source, pu, missing)
		log.Debug().Int(logging.Size, len(missing)).Msg(logging.UnknownParents)
		return
	}

	parents, err := a.dag.DecodeParents(pu)
	if err != nil {
		log.Error().Str("where", "arbiter.DecodeParents").Msg(err.Error())
		return
	}

	u := a.dag.BuildUnit(pu, parents)
	if err := a.dag.Check(u); err != nil {
		log.Error().Str("where", "arbiter.Check").Msg(err.Error())
		return
	}
	u = a.dag.Transform(u)
	a.dag.Insert(u)
	log.Debug().Msg(logging.ReadyToAdd)

	for _, fn := range a.notify {
		fn(u)
	}

	for _, ready := range a.pending.satisfy(pidHeight{pid: u.Creator(), height: u.Height()}) {
		a.addUnit(ready.source, ready.pu)
	}
}

// missingParents reports, for every non-dealing parent named in pu's crown, the (pid, height)
// pairs not yet present in the dag. A Crown carries only heights and one combined hash, so this
// is the only way to tell which of a preunit's parents is absent.
func (a *Arbiter) missingParents(pu gomel.Preunit) []pidHeight {
	var missing []pidHeight
	for pid, height := range pu.View().Heights {
		if height < 0 {
			continue
		}
		if len(a.dag.UnitsOnHeight(height).Get(uint16(pid))) == 0 {
			missing = append(missing, pidHeight{pid: uint16(pid), height: height})
		}
	}
	return missing
}
