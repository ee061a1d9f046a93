package linear

import (
	"sort"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"golang.org/x/crypto/sha3"
)

// crpIterate walks the prime units on a level in a common random order, stopping early if f
// returns false. The permutation is built in two parts: a deterministic prefix derived only
// from the level and process ids, followed by a suffix derived from the random source, which
// is computed lazily since it may not be available yet.
func crpIterate(dag gomel.Dag, rs gomel.RandomSource, prefixLen int, level int, f func(gomel.Unit) bool) bool {
	prefix, suffix := splitProcesses(dag.NProc(), prefixLen, level)

	for _, u := range defaultPermutation(dag, level, prefix) {
		if !f(u) {
			return true
		}
	}

	perm, ok := randomPermutation(rs, dag, level, suffix)
	if !ok {
		return false
	}
	for _, u := range perm {
		if !f(u) {
			return true
		}
	}
	return true
}

func splitProcesses(nProc uint16, prefixLen int, level int) ([]uint16, []uint16) {
	if prefixLen > int(nProc) {
		prefixLen = int(nProc)
	}
	pids := make([]uint16, nProc)
	for pid := range pids {
		pids[pid] = uint16((pid + level) % int(nProc))
	}
	return pids[:prefixLen], pids[prefixLen:]
}

func defaultPermutation(dag gomel.Dag, level int, pids []uint16) []gomel.Unit {
	var permutation []gomel.Unit
	for _, pid := range pids {
		permutation = append(permutation, dag.PrimeUnits(level).Get(pid)...)
	}
	sort.Slice(permutation, func(i, j int) bool {
		return permutation[i].Hash().LessThan(permutation[j].Hash())
	})
	return permutation
}

func randomPermutation(rs gomel.RandomSource, dag gomel.Dag, level int, pids []uint16) ([]gomel.Unit, bool) {
	var permutation []gomel.Unit
	priority := map[gomel.Hash][]byte{}

	for _, pid := range pids {
		randomBytes := rs.RandomBytes(pid, level)
		if randomBytes == nil {
			return nil, false
		}
		units := dag.PrimeUnits(level).Get(pid)
		for _, u := range units {
			seed := append(append([]byte{}, randomBytes...), (*u.Hash())[:]...)
			digest := make([]byte, 32)
			sha3.ShakeSum128(digest, seed)
			priority[*u.Hash()] = digest
		}
		permutation = append(permutation, units...)
	}

	sort.Slice(permutation, func(i, j int) bool {
		pi := priority[*permutation[i].Hash()]
		pj := priority[*permutation[j].Hash()]
		for x := range pi {
			if pi[x] != pj[x] {
				return pi[x] < pj[x]
			}
		}
		return false
	})
	return permutation, true
}
