package linear

import (
	"sync/atomic"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

const (
	// firstDecidingRound is how many levels above a candidate its voters must reach before the
	// full recursive vote is consulted; below it only the cheap fast-voting proof is tried.
	firstDecidingRound = 3
	// crpFixedPrefix processes are placed at the front of the common random permutation using
	// only deterministic data, so timing unit candidates can be checked before the random
	// source reveals the level's coin.
	crpFixedPrefix = 4
)

// ordering picks, level by level, the prime unit that serves as each round's timing unit, and
// tracks enough history to turn that sequence into timing rounds.
type ordering struct {
	dag gomel.Dag
	rs  gomel.RandomSource

	fast *fastVoter
	vote *voter

	nextLevel       int
	lastTimingUnits []gomel.Unit

	maxLevel int64
}

func newOrdering(dag gomel.Dag, rs gomel.RandomSource) *ordering {
	o := &ordering{
		dag:  dag,
		rs:   rs,
		fast: newFastVoter(dag),
		vote: newVoter(dag, rs),
	}
	dag.AfterInsert(o.updateMaxLevel)
	return o
}

func (o *ordering) updateMaxLevel(u gomel.Unit) {
	for {
		cur := atomic.LoadInt64(&o.maxLevel)
		if int64(u.Level()) <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&o.maxLevel, cur, int64(u.Level())) {
			return
		}
	}
}

// NextRound attempts to elect the next timing unit. It returns nil if the dag has not yet grown
// enough to reach a decision, in which case the caller should retry once more units arrive.
func (o *ordering) NextRound() gomel.TimingRound {
	maxLevel := int(atomic.LoadInt64(&o.maxLevel))

	var chosen gomel.Unit
	crpIterate(o.dag, o.rs, crpFixedPrefix, o.nextLevel, func(u gomel.Unit) bool {
		if o.decide(u, maxLevel) == popular {
			chosen = u
			return false
		}
		return true
	})
	if chosen == nil {
		return nil
	}

	round := newTimingRound(chosen, append([]gomel.Unit{}, o.lastTimingUnits...))
	o.lastTimingUnits = append(o.lastTimingUnits, chosen)
	o.nextLevel++
	return round
}

// decide attempts to establish whether uc is popular by examining prime units above it,
// increasing the level examined until either a decision is reached or the dag runs out of
// units. Below firstDecidingRound only a cheap proof of popularity is tried; at or above it the
// full recursive vote (which can also prove unpopularity) is consulted.
func (o *ordering) decide(uc gomel.Unit, dagMaxLevel int) vote {
	for level := uc.Level() + 1; level <= dagMaxLevel; level++ {
		round := level - uc.Level()
		decision := undecided
		o.dag.PrimeUnits(level).Iterate(func(primes []gomel.Unit) bool {
			for _, v := range primes {
				if round < firstDecidingRound {
					if o.fast.vote(uc, v) == popular {
						decision = popular
						return false
					}
					continue
				}
				if d := o.vote.vote(uc, v); d != undecided {
					decision = d
					return false
				}
			}
			return true
		})
		if decision != undecided {
			return decision
		}
	}
	return undecided
}
