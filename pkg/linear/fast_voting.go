package linear

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// fastVoter decides popularity using a cheaper, deterministic proof instead of the full
// recursive vote: it is tried first, for the earliest rounds, before falling back to voter.
type fastVoter struct {
	dag       gomel.Dag
	proofMemo map[[2]gomel.Hash]bool
}

func newFastVoter(dag gomel.Dag) *fastVoter {
	return &fastVoter{dag: dag, proofMemo: map[[2]gomel.Hash]bool{}}
}

func (fv *fastVoter) vote(uc, u gomel.Unit) vote {
	if fv.provesPopularity(uc, u) {
		return popular
	}
	return unpopular
}

// provesPopularity checks whether u proves that uc is popular on u's level: whether a quorum
// of processes created a unit w with uc <= w <= u, where w is either at least two levels below
// u or a prime unit exactly one level below u.
func (fv *fastVoter) provesPopularity(uc, u gomel.Unit) (isPopular bool) {
	if uc.Level() >= u.Level() || !gomel.Below(uc, u) {
		return false
	}
	key := [2]gomel.Hash{*uc.Hash(), *u.Hash()}
	if result, ok := fv.proofMemo[key]; ok {
		return result
	}
	defer func() { fv.proofMemo[key] = isPopular }()

	level := u.Level()
	nProc := fv.dag.NProc()
	seen := uint16(0)
	proven := uint16(0)
	for pid := uint16(0); pid < nProc; pid++ {
		seen++
		for _, w := range u.Floor(pid) {
			candidate := w
			for candidate != nil && gomel.Above(candidate, uc) &&
				!(candidate.Level() <= level-2 || (candidate.Level() == level-1 && gomel.Prime(candidate))) {
				candidate = gomel.Predecessor(candidate)
			}
			if candidate != nil && gomel.Above(candidate, uc) {
				proven++
				if fv.dag.IsQuorum(proven) {
					return true
				}
				break
			}
		}
		if !fv.dag.IsQuorum(proven + (nProc - seen)) {
			return false
		}
	}
	return false
}
