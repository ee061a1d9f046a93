// Package gomel defines the interfaces representing the basic components of the Aleph protocol.
//
// The main components defined in this package are:
//  1. The unit and preunit, representing the information produced by a single process in a single round of the protocol.
//  2. The dag, containing all the units created by processes and representing the partial order between them.
//  3. The random source interacting with the dag to generate randomness needed for the protocol.
//  4. The timing round, through which the extender (pkg/linear) outputs a linear ordering of all units.
package gomel

// BaseUnit is the part of a unit's identity that is fixed the moment it is created,
// independent of whether it ever gets added to any dag.
type BaseUnit interface {
	// Creator is the id of the process that created this unit.
	Creator() uint16
	// Signature of this unit.
	Signature() Signature
	// Hash value of this unit.
	Hash() *Hash
	// Height of a unit is the length of the path between this unit and a dealing unit in the sub-dag of units created by the same process.
	Height() int
	// View returns the crown summarizing the parents of the unit.
	View() *Crown
	// Data is the payload contained in the unit.
	Data() []byte
	// RandomSourceData is data contained in the unit needed to maintain the common random source among processes.
	RandomSourceData() []byte
}

// Unit that belongs to a dag.
type Unit interface {
	BaseUnit
	// Parents of this unit, indexed by creator id. A nil entry means the unit has no parent from that process.
	Parents() []Unit
	// Level of this unit in the dag.
	Level() int
	// AboveWithinProc checks if this unit is above the given unit produced by the same creator.
	AboveWithinProc(Unit) bool
	// Floor returns the maximal units created by the given process that are below or equal to this unit.
	Floor(uint16) []Unit
}

// SameUnit checks whether u and v are the same unit, as identified by their hash.
func SameUnit(u, v Unit) bool {
	if u == nil || v == nil {
		return u == v
	}
	return *u.Hash() == *v.Hash()
}

// Above checks if u is above v, i.e. v is one of u's ancestors (or u itself).
func Above(u, v Unit) bool {
	if v == nil || u == nil {
		return false
	}
	if SameUnit(u, v) {
		return true
	}
	for _, w := range u.Floor(v.Creator()) {
		if w.AboveWithinProc(v) {
			return true
		}
	}
	return false
}

// Below is the inverse of Above.
func Below(u, v Unit) bool {
	return Above(v, u)
}

// LevelFromParents computes the level a unit with the given parents would have.
func LevelFromParents(parents []Unit) int {
	nProc := uint16(len(parents))
	level := 0
	onLevel := uint16(0)
	for _, p := range parents {
		if p == nil {
			continue
		}
		if p.Level() == level {
			onLevel++
		} else if p.Level() > level {
			onLevel = 1
			level = p.Level()
		}
	}
	if IsQuorum(nProc, onLevel) {
		level++
	}
	return level
}

// HasForkingEvidence checks whether the unit is evidence that its floor entry for the given creator contains a fork,
// i.e. it is above two units created by creator sharing a predecessor, or above a unit by creator that is not its own parent
// (for its own creator: a unit other than itself).
func HasForkingEvidence(u Unit, creator uint16) bool {
	if Dealing(u) {
		return false
	}
	f := u.Floor(creator)
	if len(f) > 1 {
		return true
	}
	if len(f) == 1 {
		if creator == u.Creator() {
			return !SameUnit(f[0], u)
		}
		return !SameUnit(f[0], u.Parents()[creator])
	}
	return false
}

// Prime checks whether the given unit is a prime unit, i.e. its level is strictly greater than its predecessor's.
func Prime(u Unit) bool {
	p := Predecessor(u)
	return p == nil || u.Level() > p.Level()
}

// Predecessor of a unit is the parent created by the same process, or nil for a dealing unit.
func Predecessor(u Unit) Unit {
	return u.Parents()[u.Creator()]
}

// Dealing checks if u is a dealing (genesis-for-its-creator) unit.
func Dealing(u Unit) bool {
	return Predecessor(u) == nil
}

// BelowAny checks whether u is below any of the units in us.
func BelowAny(u Unit, us []Unit) bool {
	for _, v := range us {
		if v != nil && Above(v, u) {
			return true
		}
	}
	return false
}

// AboveAny checks whether u is above any of the units in us.
func AboveAny(u Unit, us []Unit) bool {
	for _, v := range us {
		if v != nil && Above(u, v) {
			return true
		}
	}
	return false
}

// ID encodes a unit's height and creator into a single number, given the number of processes in the dag.
func ID(height int, creator, nProc uint16) uint64 {
	return uint64(creator) + uint64(nProc)*uint64(height)
}

// DecodeID decodes an ID produced by ID back into a (height, creator) pair.
func DecodeID(id uint64, nProc uint16) (int, uint16) {
	return int(id / uint64(nProc)), uint16(id % uint64(nProc))
}

// MaximalByPid computes all maximal units produced by pid that are present among parents and their floors.
func MaximalByPid(parents []Unit, pid uint16) []Unit {
	if int(pid) >= len(parents) || parents[pid] == nil {
		return nil
	}
	maximal := []Unit{parents[pid]}
	for _, parent := range parents {
		if parent == nil {
			continue
		}
		for _, w := range parent.Floor(pid) {
			found, ri := false, -1
			for ix, v := range maximal {
				if Above(w, v) {
					found, ri = true, ix
					break
				}
				if Above(v, w) {
					found = true
					break
				}
			}
			if !found {
				maximal = append(maximal, w)
			} else if ri >= 0 {
				maximal[ri] = w
			}
		}
	}
	return maximal
}

// ToHashes converts a list of units to a list of their hashes.
func ToHashes(units []Unit) []*Hash {
	result := make([]*Hash, len(units))
	for i, u := range units {
		if u != nil {
			result[i] = u.Hash()
		}
	}
	return result
}
