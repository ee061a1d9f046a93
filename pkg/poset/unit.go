// Package poset implements the core Aleph data structure: an append-only, content-addressed
// dag of units together with the floor/level bookkeeping and compliance rules that keep it well formed.
package poset

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// unit is the concrete implementation of gomel.Unit used by the poset once a preunit has been
// verified and its parents resolved.
type unit struct {
	creator          uint16
	height           int
	level            int
	signature        gomel.Signature
	hash             gomel.Hash
	view             *gomel.Crown
	parents          []gomel.Unit
	floor            [][]gomel.Unit
	data             []byte
	randomSourceData []byte
}

func newUnit(pu gomel.Preunit, parents []gomel.Unit) *unit {
	return &unit{
		creator:          pu.Creator(),
		hash:             *pu.Hash(),
		signature:        pu.Signature(),
		view:             pu.View(),
		data:             pu.Data(),
		randomSourceData: pu.RandomSourceData(),
		parents:          parents,
		height:           pu.Height(),
	}
}

func (u *unit) Creator() uint16              { return u.creator }
func (u *unit) Signature() gomel.Signature   { return u.signature }
func (u *unit) Hash() *gomel.Hash            { return &u.hash }
func (u *unit) Height() int                  { return u.height }
func (u *unit) View() *gomel.Crown           { return u.view }
func (u *unit) Data() []byte                 { return u.data }
func (u *unit) RandomSourceData() []byte     { return u.randomSourceData }
func (u *unit) Parents() []gomel.Unit        { return u.parents }
func (u *unit) Level() int                   { return u.level }
func (u *unit) Floor(pid uint16) []gomel.Unit {
	if int(pid) >= len(u.floor) {
		return nil
	}
	return u.floor[pid]
}

// AboveWithinProc checks if u is above v, assuming v was created by the same process as u.
func (u *unit) AboveWithinProc(v gomel.Unit) bool {
	if v == nil || v.Creator() != u.creator {
		return false
	}
	w := gomel.Unit(u)
	for w != nil && w.Height() >= v.Height() {
		if gomel.SameUnit(w, v) {
			return true
		}
		w = gomel.Predecessor(w)
	}
	return false
}

// initialize computes the derived fields (floor, level) of a unit once its parents are known.
// It must be called exactly once, after the unit has passed parent-correctness checks.
func (u *unit) initialize(nProc uint16) {
	u.computeFloor(nProc)
	u.computeLevel(nProc)
}

// computeFloor sets, for every process pid, the antichain of maximal units created by pid that
// are below-or-equal to u. It combines the corresponding entries from all parents' floors and,
// for u's own creator, folds u itself into the result (replacing its own predecessor).
func (u *unit) computeFloor(nProc uint16) {
	u.floor = make([][]gomel.Unit, nProc)
	if gomel.Dealing(u) {
		u.floor[u.creator] = []gomel.Unit{u}
		return
	}
	for pid := uint16(0); pid < nProc; pid++ {
		combined := combineParentsFloor(u.parents, pid)
		if pid == u.creator {
			var own []gomel.Unit
			for _, v := range combined {
				if !u.AboveWithinProc(v) {
					own = append(own, v)
				}
			}
			combined = append(own, u)
		}
		u.floor[pid] = combined
	}
}

// combineParentsFloor unions, over all parents, the floor entries for the given process into a
// single antichain, dropping any entry dominated by another.
func combineParentsFloor(parents []gomel.Unit, pid uint16) []gomel.Unit {
	var out []gomel.Unit
	for _, parent := range parents {
		if parent == nil {
			continue
		}
		for _, w := range parent.Floor(pid) {
			out = mergeMaximal(out, w)
		}
	}
	return out
}

// mergeMaximal inserts w into the antichain out, replacing any entry it dominates and being
// dropped itself if some entry already dominates it.
func mergeMaximal(out []gomel.Unit, w gomel.Unit) []gomel.Unit {
	for i, v := range out {
		if gomel.Above(w, v) {
			out[i] = w
			return out
		}
		if gomel.Above(v, w) {
			return out
		}
	}
	return append(out, w)
}

// computeLevel implements the level rule: a unit's level is its highest parent's level, bumped
// by one if at least a quorum of distinct creators have a floor-unit at that level.
func (u *unit) computeLevel(nProc uint16) {
	if gomel.Dealing(u) {
		u.level = 0
		return
	}
	maxLevelParents := 0
	for _, p := range u.parents {
		if p != nil && p.Level() > maxLevelParents {
			maxLevelParents = p.Level()
		}
	}
	var nSeen uint16
	if pred := gomel.Predecessor(u); pred != nil && pred.Level() == maxLevelParents {
		nSeen++
	}
	for pid := uint16(0); pid < nProc; pid++ {
		if pid == u.creator {
			continue
		}
		for _, v := range u.floor[pid] {
			if v.Level() == maxLevelParents {
				nSeen++
				break
			}
		}
	}
	if gomel.IsQuorum(nProc, nSeen) {
		u.level = maxLevelParents + 1
	} else {
		u.level = maxLevelParents
	}
}

// hasForkingEvidence checks whether u carries evidence, through its combined floors, that
// creator has produced two incomparable units, i.e. has forked.
func hasForkingEvidence(u gomel.Unit, creator uint16) bool {
	if gomel.Dealing(u) {
		return false
	}
	return len(u.Floor(creator)) > 1
}
