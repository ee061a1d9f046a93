package tests

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/poset"
)

// NewRandomDag builds a dag for nProc processes where each process creates height many units,
// round robin, each using every process's current maximal unit as a parent. The result is a
// densely connected, fork-free dag suitable for exercising level- and quorum-dependent code.
func NewRandomDag(nProc uint16, height int) gomel.Dag {
	dag := poset.NewDag(nProc)
	for h := 0; h < height; h++ {
		for creator := uint16(0); creator < nProc; creator++ {
			parents := make([]gomel.Unit, nProc)
			heights := make([]int, nProc)
			maximal := dag.MaximalUnitsPerProcess()
			for pid := uint16(0); pid < nProc; pid++ {
				us := maximal.Get(pid)
				if len(us) == 0 {
					heights[pid] = -1
					continue
				}
				parents[pid] = us[0]
				heights[pid] = us[0].Height()
			}
			view := gomel.CrownFromParents(parents)
			pu := NewPreunit(creator, heights[creator]+1, view, nil, nil)
			if _, err := AddUnit(dag, pu); err != nil {
				panic(err)
			}
		}
	}
	return dag
}
