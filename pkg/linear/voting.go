// Package linear extends the partial order of a dag into a linear order, by repeatedly
// electing a timing unit for each consecutive round and sorting the units it dominates.
package linear

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

type vote int

const (
	popular vote = iota
	unpopular
	undecided
)

const (
	firstVotingRound              = 1
	commonVoteDeterministicPrefix = 10
)

// voter decides, for a candidate unit uc, whether the units above it are popular: seen by
// enough of the committee that every honest process will eventually agree it is popular.
type voter struct {
	dag  gomel.Dag
	rs   gomel.RandomSource
	memo map[[2]gomel.Hash]vote
}

func newVoter(dag gomel.Dag, rs gomel.RandomSource) *voter {
	return &voter{dag: dag, rs: rs, memo: map[[2]gomel.Hash]vote{}}
}

// vote computes whether u proves uc's popularity, unpopularity, or neither yet.
func (v *voter) vote(uc, u gomel.Unit) (result vote) {
	if uc.Level() >= u.Level() {
		return undecided
	}
	round := u.Level() - uc.Level()
	if round < firstVotingRound {
		return undecided
	}
	key := [2]gomel.Hash{*uc.Hash(), *u.Hash()}
	if cached, ok := v.memo[key]; ok {
		return cached
	}
	defer func() { v.memo[key] = result }()

	if round == firstVotingRound {
		return v.initialVote(uc, u)
	}

	common := v.lazyCommonVote(uc, u.Level()-1)
	var lastVote *vote
	voteUsingPrimeAncestors(uc, u, v.dag, func(uc, ancestor gomel.Unit) (vote, bool) {
		result := v.vote(uc, ancestor)
		if result == undecided {
			result = common()
		}
		if lastVote != nil {
			if *lastVote != result {
				*lastVote = undecided
				return result, true
			}
		} else if result != undecided {
			lastVote = &result
		}
		return result, false
	})
	if lastVote == nil {
		return undecided
	}
	return *lastVote
}

func (v *voter) lazyCommonVote(uc gomel.Unit, level int) func() vote {
	var (
		computed bool
		value    vote
	)
	return func() vote {
		if !computed {
			value = v.commonVote(uc, level)
			computed = true
		}
		return value
	}
}

func (v *voter) initialVote(uc, u gomel.Unit) vote {
	if gomel.Below(uc, u) {
		return popular
	}
	return unpopular
}

// coinToss extracts a pseudorandom bit from the random source for the given level, using uc's
// creator as the nonce so distinct candidates do not share a coin.
func coinToss(uc gomel.Unit, level int, rs gomel.RandomSource) bool {
	bytes := rs.RandomBytes(uc.Creator(), level)
	if len(bytes) == 0 {
		return false
	}
	return bytes[0]&1 == 0
}

// commonVote is the fallback vote used once prime ancestors disagree: a short deterministic
// prefix (matching the whitepaper's chosen constants) followed by a coin toss.
func (v *voter) commonVote(uc gomel.Unit, level int) vote {
	if level <= uc.Level() {
		return undecided
	}
	round := level - uc.Level()
	if round <= firstVotingRound {
		return undecided
	}
	if round <= commonVoteDeterministicPrefix {
		if round == 3 {
			return unpopular
		}
		return popular
	}
	if coinToss(uc, level+1, v.rs) {
		return popular
	}
	return unpopular
}

// voteUsingPrimeAncestors calls cast for every prime unit one level below u that u is above,
// stopping as soon as cast says to finish.
func voteUsingPrimeAncestors(uc, u gomel.Unit, dag gomel.Dag, cast func(uc, ancestor gomel.Unit) (vote, bool)) {
	dag.PrimeUnits(u.Level() - 1).Iterate(func(primes []gomel.Unit) bool {
		finish := false
		for _, w := range primes {
			if !gomel.Below(w, u) {
				continue
			}
			if _, finish = cast(uc, w); finish {
				break
			}
		}
		return !finish
	})
}
