package creator

import (
	"math/rand"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// createLegacyUnit builds a unit using the exhaustive quadratic-scan parent picker: starting
// from the process's own predecessor, it repeatedly scans every candidate at the current dag
// level downwards, greedily adding parents that expand the set of level-L primes already
// covered, until maxParents is reached or no level admits further candidates.
func (cr *Creator) createLegacyUnit() {
	predecessor := cr.candidates[cr.pid]
	if predecessor == nil {
		cr.createUnit(make([]gomel.Unit, cr.dag.NProc()), 0)
		return
	}
	parents := []gomel.Unit{predecessor}
	dagLevel := maxCandidateLevel(cr.candidates)
	for level := dagLevel; level >= predecessor.Level() && len(parents) < cr.maxParents; level-- {
		candidates := candidatesAtLevel(cr.candidates, parents, level)
		alreadyCovered := filterNotBelow(cr.dag.PrimeUnits(level), parents)
		parents = combineParents(parents, pickMoreParents(candidates, alreadyCovered, cr.maxParents-len(parents)))
	}
	if len(parents) < 2 {
		return
	}
	full := make([]gomel.Unit, cr.dag.NProc())
	for _, p := range parents {
		full[p.Creator()] = p
	}
	makeConsistent(full)
	level := legacyLevelFromParents(parents, cr.dag)
	cr.createUnit(full, level)
}

func maxCandidateLevel(candidates []gomel.Unit) int {
	result := -1
	for _, u := range candidates {
		if u != nil && u.Level() > result {
			result = u.Level()
		}
	}
	return result
}

// candidatesAtLevel picks, among candidates at the given level, those not already below one of
// the parents chosen so far, and keeps only the maximal ones among them.
func candidatesAtLevel(candidates []gomel.Unit, parents []gomel.Unit, level int) []gomel.Unit {
	var result []gomel.Unit
	for _, u := range candidates {
		if u == nil || u.Level() != level {
			continue
		}
		if gomel.BelowAny(u, parents) {
			continue
		}
		result = append(result, u)
	}
	return filterMaximal(result)
}

func filterMaximal(units []gomel.Unit) []gomel.Unit {
	var result []gomel.Unit
	for _, u := range units {
		maximal := true
		for _, v := range units {
			if u != v && gomel.Below(u, v) {
				maximal = false
				break
			}
		}
		if maximal {
			result = append(result, u)
		}
	}
	return result
}

func filterNotBelow(su gomel.SlottedUnits, units []gomel.Unit) []gomel.Unit {
	var result []gomel.Unit
	su.Iterate(func(primes []gomel.Unit) bool {
		for _, p := range primes {
			if !gomel.BelowAny(p, units) {
				result = append(result, p)
			}
		}
		return true
	})
	return result
}

func filterOutBelow(units []gomel.Unit, unit gomel.Unit) []gomel.Unit {
	var result []gomel.Unit
	for _, u := range units {
		if !gomel.Below(u, unit) {
			result = append(result, u)
		}
	}
	return result
}

// pickMoreParents chooses, in a random order, up to limit candidates that each cover at least
// one prime unit not already covered by the parents picked so far.
func pickMoreParents(candidates, notCovered []gomel.Unit, limit int) []gomel.Unit {
	var result []gomel.Unit
	for _, i := range rand.Perm(len(candidates)) {
		if len(result) == limit {
			return result
		}
		c := candidates[i]
		if gomel.AboveAny(c, notCovered) {
			result = append(result, c)
			notCovered = filterOutBelow(notCovered, c)
		}
	}
	return result
}

// combineParents merges newParents (all at the same level) into the sorted-by-level parents
// slice, keeping the result sorted by ascending level.
func combineParents(parents, newParents []gomel.Unit) []gomel.Unit {
	if len(newParents) == 0 {
		return parents
	}
	level := newParents[0].Level()
	var result []gomel.Unit
	for _, p := range parents {
		if p.Level() <= level {
			result = append(result, p)
		}
	}
	result = append(result, newParents...)
	for _, p := range parents {
		if p.Level() > level {
			result = append(result, p)
		}
	}
	return result
}

// legacyLevelFromParents computes the level a unit with this particular (not necessarily
// nProc-long) parent list would have, by flooding through same-level parents' parents to count
// the distinct creators reachable at the maximal level.
func legacyLevelFromParents(parents []gomel.Unit, dag gomel.Dag) int {
	if len(parents) == 0 {
		return 0
	}
	level := 0
	for _, p := range parents {
		if p.Level() > level {
			level = p.Level()
		}
	}
	seenProc := map[uint16]bool{}
	seenUnit := map[gomel.Hash]bool{}
	var stack []gomel.Unit
	for _, u := range parents {
		if u.Level() != level {
			continue
		}
		stack = append(stack, u)
		seenUnit[*u.Hash()] = true
		seenProc[u.Creator()] = true
	}
	if dag.IsQuorum(uint16(len(seenProc))) {
		return level + 1
	}
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range w.Parents() {
			if v == nil || v.Level() != level || seenUnit[*v.Hash()] {
				continue
			}
			stack = append(stack, v)
			seenUnit[*v.Hash()] = true
			seenProc[v.Creator()] = true
			if dag.IsQuorum(uint16(len(seenProc))) {
				return level + 1
			}
		}
	}
	return level
}
