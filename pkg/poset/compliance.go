package poset

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// checkCompliance runs the rules a unit must satisfy before it is inserted into the dag:
//  1. its parents are correct (self-predecessor matches, parents come from distinct creators),
//  2. it is not itself evidence of its creator forking,
//  3. it respects the forker-muting policy,
//  4. it respects the expand-primes rule.
// Coin-share verification for prime units is delegated to the random source, since the shape
// of that data is opaque to the poset itself.
func (dag *Dag) checkCompliance(u gomel.Unit) error {
	if err := checkParentCorrectness(u); err != nil {
		return err
	}
	if gomel.Dealing(u) {
		return nil
	}
	if err := checkNoSelfForkingEvidence(u); err != nil {
		return err
	}
	if err := checkForkerMuting(u); err != nil {
		return err
	}
	if err := dag.checkExpandPrimes(u); err != nil {
		return err
	}
	return nil
}

// checkParentCorrectness verifies that the self-predecessor parent was created by the same
// process at one less height, and that all parents come from pairwise distinct creators.
func checkParentCorrectness(u gomel.Unit) error {
	if pred := gomel.Predecessor(u); pred != nil {
		if pred.Creator() != u.Creator() {
			return gomel.NewComplianceError("self-predecessor was not created by the same process")
		}
		if pred.Height()+1 != u.Height() {
			return gomel.NewComplianceError("invalid height")
		}
	}
	seen := map[uint16]bool{}
	for _, parent := range u.Parents() {
		if parent == nil {
			continue
		}
		if seen[parent.Creator()] {
			return gomel.NewComplianceError("two parents created by the same process")
		}
		seen[parent.Creator()] = true
	}
	return nil
}

// checkNoSelfForkingEvidence rejects units whose own floor already proves their creator forked.
func checkNoSelfForkingEvidence(u gomel.Unit) error {
	if hasForkingEvidence(u, u.Creator()) {
		return gomel.NewComplianceError("unit is evidence of its own creator forking")
	}
	return nil
}

// checkForkerMuting rejects a unit if one of its parents already has evidence that another of
// its parents' creator is a forker: an honest process must stop building on a known forker.
func checkForkerMuting(u gomel.Unit) error {
	for _, p1 := range u.Parents() {
		if p1 == nil {
			continue
		}
		for _, p2 := range u.Parents() {
			if p2 == nil || gomel.SameUnit(p1, p2) {
				continue
			}
			if hasForkingEvidence(p1, p2.Creator()) {
				return gomel.NewComplianceError("a parent has evidence of another parent's creator forking")
			}
		}
	}
	return nil
}

// checkExpandPrimes verifies that each parent after the first extends the set of level-L prime
// units visible below the unit so far, where L is the level of the previously checked parents;
// a parent that adds nothing new to that set (without raising the level) is disallowed, since it
// would let a unit collect parents without genuinely expanding on what it has seen.
func (dag *Dag) checkExpandPrimes(u gomel.Unit) error {
	parents := u.Parents()
	if len(parents) == 0 {
		return nil
	}
	pred := gomel.Predecessor(u)
	level := 0
	if pred != nil {
		level = pred.Level()
	}
	seen := map[gomel.Hash]bool{}
	for _, prime := range dag.primesBelow(level, parents[0]) {
		seen[*prime.Hash()] = true
	}
	for _, parent := range parents[1:] {
		if parent == nil {
			continue
		}
		if parent.Level() > level {
			level = parent.Level()
			seen = map[gomel.Hash]bool{}
		}
		below := dag.primesBelow(level, parent)
		isSubset := true
		for _, prime := range below {
			if !seen[*prime.Hash()] {
				isSubset = false
			}
			seen[*prime.Hash()] = true
		}
		if isSubset && len(below) > 0 {
			return gomel.NewComplianceError("expand primes rule violated")
		}
	}
	return nil
}

// primesBelow returns the level-L prime units that are below-or-equal to u.
func (dag *Dag) primesBelow(level int, u gomel.Unit) []gomel.Unit {
	var result []gomel.Unit
	dag.PrimeUnits(level).Iterate(func(units []gomel.Unit) bool {
		for _, prime := range units {
			if gomel.Above(u, prime) {
				result = append(result, prime)
			}
		}
		return true
	})
	return result
}
