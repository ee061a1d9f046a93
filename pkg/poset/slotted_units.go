package poset

import (
	"sync"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// slottedUnits is a concurrency-safe gomel.SlottedUnits keyed by creator id.
type slottedUnits struct {
	contents [][]gomel.Unit
	mxs      []sync.RWMutex
}

func newSlottedUnits(n uint16) *slottedUnits {
	return &slottedUnits{
		contents: make([][]gomel.Unit, n),
		mxs:      make([]sync.RWMutex, n),
	}
}

func (su *slottedUnits) Get(id uint16) []gomel.Unit {
	if int(id) >= len(su.mxs) {
		return nil
	}
	su.mxs[id].RLock()
	defer su.mxs[id].RUnlock()
	result := make([]gomel.Unit, len(su.contents[id]))
	copy(result, su.contents[id])
	return result
}

func (su *slottedUnits) Set(id uint16, units []gomel.Unit) {
	if int(id) >= len(su.mxs) {
		return
	}
	su.mxs[id].Lock()
	defer su.mxs[id].Unlock()
	su.contents[id] = make([]gomel.Unit, len(units))
	copy(su.contents[id], units)
}

func (su *slottedUnits) Iterate(work func([]gomel.Unit) bool) {
	for id := range su.contents {
		su.mxs[id].RLock()
		units := su.contents[id]
		su.mxs[id].RUnlock()
		if !work(units) {
			return
		}
	}
}
