// Package creator produces new units for a single process: it watches units arriving from the
// rest of the committee, keeps the highest-level unit from each creator as a parent candidate,
// and whenever the candidates support a unit at a new level, builds, signs and emits one.
package creator

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/logging"
)

// DataSource supplies the payload to attach to freshly created units.
type DataSource interface {
	Data() []byte
}

// Creator builds new units for one process, at a self-adjusting pace bounded by how much of the
// committee's other output it has seen.
type Creator struct {
	dag        gomel.Dag
	rs         gomel.RandomSource
	pid        uint16
	privKey    gomel.PrivateKey
	maxParents int
	ds         DataSource
	send       func(gomel.Unit)
	legacy     bool

	candidates []gomel.Unit
	quorum     uint16
	maxLvl     int
	onMaxLvl   uint16
	level      int

	mx  sync.Mutex
	log zerolog.Logger
}

// New constructs a creator for the given process. legacyParentSelection switches to the
// exhaustive quadratic-scan parent picker instead of the default one-parent-per-process rule.
func New(dag gomel.Dag, rs gomel.RandomSource, pid uint16, maxParents int, privKey gomel.PrivateKey, ds DataSource, legacyParentSelection bool, send func(gomel.Unit), log zerolog.Logger) *Creator {
	return &Creator{
		dag:        dag,
		rs:         rs,
		pid:        pid,
		privKey:    privKey,
		maxParents: maxParents,
		ds:         ds,
		send:       send,
		legacy:     legacyParentSelection,
		candidates: make([]gomel.Unit, dag.NProc()),
		quorum:     gomel.MinimalQuorum(dag.NProc()),
		maxLvl:     -1,
		log:        log,
	}
}

// Work runs the creator's main loop: it produces a dealing unit immediately, then reacts to
// units arriving on unitBelt until the channel is closed.
func (cr *Creator) Work(unitBelt <-chan gomel.Unit) {
	defer cr.log.Info().Msg(logging.ServiceStopped)

	cr.mx.Lock()
	cr.createUnit(make([]gomel.Unit, cr.dag.NProc()), 0)
	cr.mx.Unlock()

	for u := range unitBelt {
		cr.mx.Lock()
		cr.update(u)
		if cr.ready() {
			n := len(unitBelt)
			for i := 0; i < n; i++ {
				cr.update(<-unitBelt)
			}
			if cr.ready() {
				if cr.legacy {
					cr.createLegacyUnit()
				} else {
					cr.createUnit(cr.parents(), cr.level)
				}
			}
		}
		cr.mx.Unlock()
	}
}

func (cr *Creator) ready() bool {
	pred := cr.candidates[cr.pid]
	predLevel := -1
	if pred != nil {
		predLevel = pred.Level()
	}
	return cr.level > predLevel
}

func (cr *Creator) update(u gomel.Unit) {
	prev := cr.candidates[u.Creator()]
	if prev != nil && prev.Level() >= u.Level() {
		return
	}
	cr.candidates[u.Creator()] = u
	switch {
	case u.Level() == cr.maxLvl:
		cr.onMaxLvl++
	case u.Level() > cr.maxLvl:
		cr.maxLvl = u.Level()
		cr.onMaxLvl = 1
	}
	cr.level = cr.maxLvl
	if gomel.IsQuorum(cr.dag.NProc(), cr.onMaxLvl) {
		cr.level++
	}
}

// parents returns a consistent copy of the current candidates, suitable for a unit at cr.level.
func (cr *Creator) parents() []gomel.Unit {
	result := make([]gomel.Unit, len(cr.candidates))
	copy(result, cr.candidates)
	makeConsistent(result)
	return result
}

// makeConsistent enforces that no parent is below the same-index parent of any other selected
// parent: units seen directly cannot be behind units seen only transitively.
func makeConsistent(parents []gomel.Unit) {
	for i := range parents {
		for j := range parents {
			if parents[j] == nil {
				continue
			}
			indirect := parents[j].Parents()[i]
			if parents[i] == nil || (indirect != nil && indirect.Level() > parents[i].Level()) {
				parents[i] = indirect
			}
		}
	}
}

func (cr *Creator) createUnit(parents []gomel.Unit, level int) {
	view := gomel.CrownFromParents(parents)
	data := cr.data()
	rsData, err := cr.rs.DataToInclude(cr.pid, parents, level)
	if err != nil {
		cr.log.Error().Str("where", "creator.DataToInclude").Msg(err.Error())
		return
	}
	pu := newPreunit(cr.pid, cr.predecessorHeight(parents)+1, view, data, rsData)
	pu.SetSignature(cr.privKey.Sign(pu))
	u, err := cr.addToDag(pu)
	if err != nil {
		cr.log.Error().Str("where", "creator.addToDag").Msg(err.Error())
		return
	}
	cr.log.Info().Uint16(logging.Creator, u.Creator()).Int(logging.Height, u.Height()).Msg(logging.UnitCreated)
	if gomel.Prime(u) {
		cr.log.Info().Uint16(logging.Creator, u.Creator()).Int(logging.Height, u.Height()).Msg(logging.PrimeUnitCreated)
	}
	cr.send(u)
	cr.update(u)
}

func (cr *Creator) predecessorHeight(parents []gomel.Unit) int {
	if pred := parents[cr.pid]; pred != nil {
		return pred.Height()
	}
	return -1
}

func (cr *Creator) data() []byte {
	if cr.ds == nil {
		return nil
	}
	return cr.ds.Data()
}

func (cr *Creator) addToDag(pu gomel.Preunit) (gomel.Unit, error) {
	parents, err := cr.dag.DecodeParents(pu)
	if err != nil {
		return nil, err
	}
	u := cr.dag.BuildUnit(pu, parents)
	if err := cr.dag.Check(u); err != nil {
		return nil, err
	}
	u = cr.dag.Transform(u)
	cr.dag.Insert(u)
	return cr.dag.GetUnit(pu.Hash()), nil
}
