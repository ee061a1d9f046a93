package linear

import (
	"sort"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// timingRound is the set of units decided in a single round of the linear order: a timing unit
// together with every unit it dominates that was not already ordered by an earlier round.
type timingRound struct {
	currentTU gomel.Unit
	lastTUs   []gomel.Unit
}

func newTimingRound(currentTimingUnit gomel.Unit, lastTimingUnits []gomel.Unit) *timingRound {
	return &timingRound{currentTU: currentTimingUnit, lastTUs: lastTimingUnits}
}

// TimingUnit returns the timing unit elected for this round.
func (tr *timingRound) TimingUnit() gomel.Unit {
	return tr.currentTU
}

// OrderedUnits returns every unit newly ordered by this round, in the final linear order.
func (tr *timingRound) OrderedUnits() []gomel.Unit {
	layers := antichainLayers(tr.currentTU, tr.lastTUs)
	return mergeLayers(layers)
}

// alreadyOrdered reports whether u was ordered by an earlier round, i.e. lies below one of the
// previous timing units. Since the timing units are increasing in level, a unit above the level of
// the most recent one cannot be below any of them; otherwise every previous timing unit is
// checked, from the most recent backwards.
func alreadyOrdered(u gomel.Unit, prevTUs []gomel.Unit) bool {
	if len(prevTUs) == 0 {
		return false
	}
	if prevTU := prevTUs[len(prevTUs)-1]; prevTU == nil || u.Level() > prevTU.Level() {
		return false
	}
	for i := len(prevTUs) - 1; i >= 0; i-- {
		if gomel.Above(prevTUs[i], u) {
			return true
		}
	}
	return false
}

// antichainLayers partitions every newly-ordered unit below tu into layers: layer 0 holds the
// minimal such units, layer 1 the minimal units once layer 0 is removed, and so on.
func antichainLayers(tu gomel.Unit, prevTUs []gomel.Unit) [][]gomel.Unit {
	layerOf := map[gomel.Hash]int{}
	visited := map[gomel.Hash]bool{}
	var result [][]gomel.Unit

	var visit func(u gomel.Unit)
	visit = func(u gomel.Unit) {
		visited[*u.Hash()] = true
		minBelow := -1
		for _, parent := range u.Parents() {
			if parent == nil || alreadyOrdered(parent, prevTUs) {
				continue
			}
			if !visited[*parent.Hash()] {
				visit(parent)
			}
			if layerOf[*parent.Hash()] > minBelow {
				minBelow = layerOf[*parent.Hash()]
			}
		}
		layer := minBelow + 1
		layerOf[*u.Hash()] = layer
		if len(result) <= layer {
			result = append(result, []gomel.Unit{u})
		} else {
			result[layer] = append(result[layer], u)
		}
	}
	visit(tu)
	return result
}

// mergeLayers flattens layers into a single order: within a layer units are sorted by a
// tiebreaker derived by XOR-ing each unit's hash against the XOR of the hashes of every unit in
// the round, so the order cannot be predicted or steered by any single process.
func mergeLayers(layers [][]gomel.Unit) []gomel.Unit {
	var totalXOR gomel.Hash
	for _, layer := range layers {
		for _, u := range layer {
			totalXOR.XOREqual(u.Hash())
		}
	}

	tiebreaker := map[gomel.Hash]*gomel.Hash{}
	for _, layer := range layers {
		for _, u := range layer {
			tiebreaker[*u.Hash()] = gomel.XOR(&totalXOR, u.Hash())
		}
	}

	var sorted []gomel.Unit
	for _, layer := range layers {
		layer := layer
		sort.Slice(layer, func(i, j int) bool {
			return tiebreaker[*layer[i].Hash()].LessThan(tiebreaker[*layer[j].Hash()])
		})
		sorted = append(sorted, layer...)
	}
	return sorted
}
