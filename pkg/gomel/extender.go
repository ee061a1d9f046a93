package gomel

// TimingRound represents a particular round of voting and associated ordering of units.
type TimingRound interface {
	// TimingUnit returns a timing unit selected for this round.
	TimingUnit() Unit
	// OrderedUnits establishes the linear ordering of the units in this timing round and returns them.
	OrderedUnits() []Unit
}
