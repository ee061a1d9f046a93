package gossip

import (
	"sort"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

func hashesFromInfo(info processInfo) []*gomel.Hash {
	result := make([]*gomel.Hash, len(info))
	for i, in := range info {
		result[i] = in.hash
	}
	return result
}

func hashesFromUnits(units []gomel.Unit) []*gomel.Hash {
	result := make([]*gomel.Hash, len(units))
	for i, u := range units {
		result[i] = u.Hash()
	}
	return result
}

func hashesFromPreunitLayers(layers [][]gomel.Preunit) []*gomel.Hash {
	var result []*gomel.Hash
	for _, layer := range layers {
		for _, pu := range layer {
			result = append(result, pu.Hash())
		}
	}
	return result
}

// staticHashSet is a fixed, sorted set of hashes supporting fast membership checks; used to
// filter out units/hashes already known to the other side of a sync.
type staticHashSet struct {
	hashes []*gomel.Hash
}

func newStaticHashSet(hashes []*gomel.Hash) staticHashSet {
	sorted := make([]*gomel.Hash, len(hashes))
	copy(sorted, hashes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})
	return staticHashSet{hashes: sorted}
}

func (shs staticHashSet) contains(h *gomel.Hash) bool {
	idx := sort.Search(len(shs.hashes), func(i int) bool {
		return !shs.hashes[i].LessThan(h)
	})
	return idx < len(shs.hashes) && *shs.hashes[idx] == *h
}

func (shs staticHashSet) filterOutKnown(hashes []*gomel.Hash) []*gomel.Hash {
	result := []*gomel.Hash{}
	for _, h := range hashes {
		if !shs.contains(h) {
			result = append(result, h)
		}
	}
	return result
}

func (shs staticHashSet) filterOutKnownUnits(units []gomel.Unit) []gomel.Unit {
	result := []gomel.Unit{}
	for _, u := range units {
		if !shs.contains(u.Hash()) {
			result = append(result, u)
		}
	}
	return result
}
