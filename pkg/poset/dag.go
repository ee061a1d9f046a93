package poset

import (
	"sync"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// Dag is the append-only, content-addressed store of units together with the indexes
// (by level, by height, by creator) needed to run compliance checks and the sync protocol.
type Dag struct {
	nProc uint16

	mx           sync.RWMutex
	byHash       map[gomel.Hash]gomel.Unit
	byID         map[uint64][]gomel.Unit
	maxUnits     *slottedUnits
	primesByLvl  map[int]*slottedUnits
	unitsByHght  map[int]*slottedUnits

	checkers  []gomel.UnitChecker
	transform []gomel.UnitTransformer
	before    []gomel.InsertHook
	after     []gomel.InsertHook
}

// NewDag constructs an empty dag for the given committee size.
func NewDag(nProc uint16) *Dag {
	return &Dag{
		nProc:       nProc,
		byHash:      map[gomel.Hash]gomel.Unit{},
		byID:        map[uint64][]gomel.Unit{},
		maxUnits:    newSlottedUnits(nProc),
		primesByLvl: map[int]*slottedUnits{},
		unitsByHght: map[int]*slottedUnits{},
	}
}

// NProc returns the number of processes sharing this dag.
func (dag *Dag) NProc() uint16 { return dag.nProc }

// IsQuorum checks whether subsetSize forms a quorum among all NProc processes.
func (dag *Dag) IsQuorum(subsetSize uint16) bool {
	return gomel.IsQuorum(dag.nProc, subsetSize)
}

// DecodeParents resolves the crown of a preunit into concrete parent units already in the dag,
// verifying the control hash matches the resolved parents.
func (dag *Dag) DecodeParents(pu gomel.Preunit) ([]gomel.Unit, error) {
	view := pu.View()
	parents := make([]gomel.Unit, dag.nProc)
	missing := 0
	for pid, height := range view.Heights {
		if height < 0 {
			continue
		}
		u := dag.getByHeight(uint16(pid), height)
		if u == nil {
			missing++
			continue
		}
		parents[pid] = u
	}
	if missing > 0 {
		return nil, gomel.NewUnknownParents(missing)
	}
	if gomel.CrownFromParents(parents).ControlHash != view.ControlHash {
		return nil, gomel.NewDataError("control hash does not match resolved parents")
	}
	return parents, nil
}

func (dag *Dag) getByHeight(pid uint16, height int) gomel.Unit {
	dag.mx.RLock()
	defer dag.mx.RUnlock()
	su, ok := dag.unitsByHght[height]
	if !ok {
		return nil
	}
	for _, u := range su.Get(pid) {
		return u
	}
	return nil
}

// BuildUnit constructs a new unit from a preunit and its resolved parents, computing its
// derived floor and level.
func (dag *Dag) BuildUnit(pu gomel.Preunit, parents []gomel.Unit) gomel.Unit {
	u := newUnit(pu, parents)
	u.initialize(dag.nProc)
	return u
}

// Check runs the built-in compliance rules followed by any user-supplied checkers.
func (dag *Dag) Check(u gomel.Unit) error {
	if err := dag.checkCompliance(u); err != nil {
		return err
	}
	dag.mx.RLock()
	checkers := dag.checkers
	dag.mx.RUnlock()
	for _, check := range checkers {
		if err := check(u); err != nil {
			return err
		}
	}
	return nil
}

// Transform applies all registered transformers to u, in registration order.
func (dag *Dag) Transform(u gomel.Unit) gomel.Unit {
	dag.mx.RLock()
	transformers := dag.transform
	dag.mx.RUnlock()
	for _, t := range transformers {
		u = t(u)
	}
	return u
}

// Insert adds a checked and transformed unit to the dag, updating all indexes.
func (dag *Dag) Insert(u gomel.Unit) {
	dag.mx.RLock()
	before := dag.before
	after := dag.after
	dag.mx.RUnlock()
	for _, hook := range before {
		hook(u)
	}

	dag.mx.Lock()
	dag.byHash[*u.Hash()] = u
	id := gomel.ID(u.Height(), u.Creator(), dag.nProc)
	dag.byID[id] = append(dag.byID[id], u)

	if _, ok := dag.unitsByHght[u.Height()]; !ok {
		dag.unitsByHght[u.Height()] = newSlottedUnits(dag.nProc)
	}
	dag.unitsByHght[u.Height()].Set(u.Creator(), append(dag.unitsByHght[u.Height()].Get(u.Creator()), u))

	if gomel.Prime(u) {
		if _, ok := dag.primesByLvl[u.Level()]; !ok {
			dag.primesByLvl[u.Level()] = newSlottedUnits(dag.nProc)
		}
		dag.primesByLvl[u.Level()].Set(u.Creator(), append(dag.primesByLvl[u.Level()].Get(u.Creator()), u))
	}

	current := dag.maxUnits.Get(u.Creator())
	updated := mergeMaximal(current, u)
	dag.maxUnits.Set(u.Creator(), updated)
	dag.mx.Unlock()

	for _, hook := range after {
		hook(u)
	}
}

// PrimeUnits returns all prime units at the given level, indexed by creator.
func (dag *Dag) PrimeUnits(level int) gomel.SlottedUnits {
	dag.mx.RLock()
	defer dag.mx.RUnlock()
	if su, ok := dag.primesByLvl[level]; ok {
		return su
	}
	return newSlottedUnits(dag.nProc)
}

// UnitsOnHeight returns all units at the given height, indexed by creator.
func (dag *Dag) UnitsOnHeight(height int) gomel.SlottedUnits {
	dag.mx.RLock()
	defer dag.mx.RUnlock()
	if su, ok := dag.unitsByHght[height]; ok {
		return su
	}
	return newSlottedUnits(dag.nProc)
}

// MaximalUnitsPerProcess returns, for each process, all currently-maximal units it created.
func (dag *Dag) MaximalUnitsPerProcess() gomel.SlottedUnits {
	return dag.maxUnits
}

// GetUnit returns the unit with the given hash, or nil if absent.
func (dag *Dag) GetUnit(h *gomel.Hash) gomel.Unit {
	dag.mx.RLock()
	defer dag.mx.RUnlock()
	return dag.byHash[*h]
}

// GetUnits returns the units for the given hashes, in the same order; missing hashes yield nil.
func (dag *Dag) GetUnits(hashes []*gomel.Hash) []gomel.Unit {
	result := make([]gomel.Unit, len(hashes))
	dag.mx.RLock()
	defer dag.mx.RUnlock()
	for i, h := range hashes {
		if h != nil {
			result[i] = dag.byHash[*h]
		}
	}
	return result
}

// GetByID returns the units for the given ID; there is more than one only in the case of forks.
func (dag *Dag) GetByID(id uint64) []gomel.Unit {
	dag.mx.RLock()
	defer dag.mx.RUnlock()
	return dag.byID[id]
}

// AddCheck extends the list of checkers run by Check.
func (dag *Dag) AddCheck(c gomel.UnitChecker) {
	dag.mx.Lock()
	defer dag.mx.Unlock()
	dag.checkers = append(dag.checkers, c)
}

// AddTransform extends the list of transformers run by Transform.
func (dag *Dag) AddTransform(t gomel.UnitTransformer) {
	dag.mx.Lock()
	defer dag.mx.Unlock()
	dag.transform = append(dag.transform, t)
}

// BeforeInsert adds an action run before Insert.
func (dag *Dag) BeforeInsert(h gomel.InsertHook) {
	dag.mx.Lock()
	defer dag.mx.Unlock()
	dag.before = append(dag.before, h)
}

// AfterInsert adds an action run after Insert.
func (dag *Dag) AfterInsert(h gomel.InsertHook) {
	dag.mx.Lock()
	defer dag.mx.Unlock()
	dag.after = append(dag.after, h)
}
