// Package gossip implements the pairwise pull-push sync protocol committee members use to
// exchange units: a three-step (occasionally four-step) exchange of dag summaries, units, and
// requests, run over a network.Server connection and preceded by a handshake.Greet/AcceptGreeting
// identity exchange.
package gossip

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

type unitInfo struct {
	hash   *gomel.Hash
	height uint32
}

type processInfo []unitInfo

// dagInfo is a snapshot of the maximal units known to a process, per creator, sufficient for the
// other side of a sync to work out what it is missing.
type dagInfo []processInfo

type processRequests []*gomel.Hash

type requests []processRequests

func toInfo(u gomel.Unit) unitInfo {
	return unitInfo{u.Hash(), uint32(u.Height())}
}

func toDagInfo(maxSnapshot [][]gomel.Unit) dagInfo {
	result := make(dagInfo, len(maxSnapshot))
	for i, units := range maxSnapshot {
		infoHere := make(processInfo, len(units))
		for j, u := range units {
			infoHere[j] = toInfo(u)
		}
		result[i] = infoHere
	}
	return result
}

// fixMaximal removes from maxes any unit that turns out to be below one of u's parents, and adds
// those parents in its place, recursively — the raw output of MaximalUnitsPerProcess can be
// inconsistent in the presence of forks.
func fixMaximal(u gomel.Unit, maxes [][]gomel.Unit) [][]gomel.Unit {
	for _, p := range u.Parents() {
		if p == nil {
			continue
		}
		creator := p.Creator()
		if !gomel.BelowAny(p, maxes[creator]) {
			newMaxes := []gomel.Unit{}
			for _, m := range maxes[creator] {
				if !gomel.Above(p, m) {
					newMaxes = append(newMaxes, m)
				}
			}
			newMaxes = append(newMaxes, p)
			maxes[creator] = newMaxes
			maxes = fixMaximal(p, maxes)
		}
	}
	return maxes
}

func consistentMaximal(maxes [][]gomel.Unit) [][]gomel.Unit {
	for i := range maxes {
		for _, u := range maxes[i] {
			maxes = fixMaximal(u, maxes)
		}
	}
	return maxes
}

// dagMaxSnapshot returns, for every process, all currently maximal units created by that
// process, fixed up so that no returned unit is below another unit's ancestor.
func dagMaxSnapshot(dag gomel.Dag) [][]gomel.Unit {
	maxUnits := make([][]gomel.Unit, dag.NProc())
	i := 0
	dag.MaximalUnitsPerProcess().Iterate(func(units []gomel.Unit) bool {
		unitsCopy := make([]gomel.Unit, len(units))
		copy(unitsCopy, units)
		maxUnits[i] = unitsCopy
		i++
		return true
	})
	return consistentMaximal(maxUnits)
}

func minimalHeight(info processInfo) int {
	result := -1
	for _, i := range info {
		if int(i.height) < result || result == -1 {
			result = int(i.height)
		}
	}
	return result
}

func maximalHeight(units []gomel.Unit) int {
	result := -1
	for _, u := range units {
		if u.Height() > result {
			result = u.Height()
		}
	}
	return result
}

// toLayers arranges a flat batch of units so that every unit's parents (when also present in the
// batch) sit in an earlier layer, letting the receiving side add them layer by layer without
// hitting unknown-parent errors.
func toLayers(units []gomel.Unit) [][]gomel.Unit {
	if len(units) == 0 {
		return nil
	}
	inBatch := make(map[gomel.Hash]bool, len(units))
	for _, u := range units {
		inBatch[*u.Hash()] = true
	}
	layerOf := make(map[gomel.Hash]int, len(units))
	var computeLayer func(u gomel.Unit) int
	computeLayer = func(u gomel.Unit) int {
		if l, ok := layerOf[*u.Hash()]; ok {
			return l
		}
		maxParentLayer := -1
		for _, p := range u.Parents() {
			if p == nil || !inBatch[*p.Hash()] {
				continue
			}
			if l := computeLayer(p); l > maxParentLayer {
				maxParentLayer = l
			}
		}
		l := maxParentLayer + 1
		layerOf[*u.Hash()] = l
		return l
	}
	maxLayer := 0
	for _, u := range units {
		if l := computeLayer(u); l > maxLayer {
			maxLayer = l
		}
	}
	result := make([][]gomel.Unit, maxLayer+1)
	for _, u := range units {
		l := layerOf[*u.Hash()]
		result[l] = append(result[l], u)
	}
	return result
}

func nonempty(req requests) bool {
	for _, r := range req {
		if len(r) > 0 {
			return true
		}
	}
	return false
}
