package gossip

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// unitsToSendByProcess returns the units among maxes (the local maximal units of one process) that
// are above what tops (the remote side's reported frontier for that process) already names —
// walking down predecessors from each local maximal unit until hitting a hash the remote side
// already has, or running below the remote's lowest reported height. A remote side reporting no
// units at all for a process (a fresh committee member, say) gets everything.
func unitsToSendByProcess(tops processInfo, maxes []gomel.Unit) []gomel.Unit {
	result := []gomel.Unit{}
	minimalRemoteHeight := minimalHeight(tops)
	remoteHashes := newStaticHashSet(hashesFromInfo(tops))
	for _, u := range maxes {
		possiblySend := []gomel.Unit{}
		for u.Height() >= minimalRemoteHeight {
			if remoteHashes.contains(u.Hash()) {
				result = append(result, possiblySend...)
				break
			}
			possiblySend = append(possiblySend, u)
			v := gomel.Predecessor(u)
			if v == nil {
				result = append(result, possiblySend...)
				break
			}
			u = v
		}
	}
	return result
}

// knownUnits resolves the hashes named in info against the local dag.
func knownUnits(dag gomel.Dag, info processInfo) map[gomel.Unit]bool {
	result := map[gomel.Unit]bool{}
	for _, u := range dag.GetUnits(hashesFromInfo(info)) {
		if u != nil {
			result[u] = true
		}
	}
	return result
}

// dropToHeight replaces every unit in units with its ancestor at the given height, dropping
// everything if height is -1 (nothing known).
func dropToHeight(units map[gomel.Unit]bool, height int) map[gomel.Unit]bool {
	result := map[gomel.Unit]bool{}
	if height == -1 {
		return result
	}
	for u := range units {
		for u.Height() > height {
			u = gomel.Predecessor(u)
		}
		result[u] = true
	}
	return result
}

// splitOffHeight partitions units into those sitting exactly at height and everything else.
func splitOffHeight(units []gomel.Unit, height int) (atHeight, rest []gomel.Unit) {
	for _, u := range units {
		if u.Height() == height {
			atHeight = append(atHeight, u)
		} else {
			rest = append(rest, u)
		}
	}
	return
}

// requestedToSend resolves an explicit batch of requested hashes against the local dag and walks
// each one down through its predecessors until reaching a unit the remote side (per info) already
// has, returning every unit in between.
func requestedToSend(dag gomel.Dag, info processInfo, req processRequests) []gomel.Unit {
	result := []gomel.Unit{}
	if len(req) == 0 {
		return result
	}
	units := dag.GetUnits(req)
	operationHeight := maximalHeight(units)
	knownRemotes := dropToHeight(knownUnits(dag, info), operationHeight)
	var consideredUnits []gomel.Unit
	for len(units) > 0 {
		consideredUnits, units = splitOffHeight(units, operationHeight)
		for _, u := range consideredUnits {
			if u == nil || knownRemotes[u] {
				continue
			}
			result = append(result, u)
			if v := gomel.Predecessor(u); v != nil {
				units = append(units, v)
			}
		}
		operationHeight--
		knownRemotes = dropToHeight(knownRemotes, operationHeight)
	}
	return result
}

// unitsToSend computes the full batch of units to send to a peer who reported dagInfo info out of
// a local maximal-units snapshot, additionally honoring any explicit req naming hashes the peer
// couldn't otherwise resolve (nil req means the initial, request-free round of a sync).
func unitsToSend(dag gomel.Dag, maxSnapshot [][]gomel.Unit, info dagInfo, req requests) []gomel.Unit {
	nProc := dag.NProc()
	toSend := []gomel.Unit{}
	for pid := uint16(0); pid < nProc; pid++ {
		toSendHere := unitsToSendByProcess(info[pid], maxSnapshot[pid])
		if req != nil {
			unfulfilled := newStaticHashSet(hashesFromUnits(toSendHere)).filterOutKnown(req[pid])
			toSendHere = append(toSendHere, requestedToSend(dag, info[pid], unfulfilled)...)
		}
		toSend = append(toSend, toSendHere...)
	}
	return toSend
}

// unknownHashes names the hashes in info that don't resolve to a unit already in the local dag,
// excluding anything already known to be present in alsoKnown (e.g. units freshly received this
// sync but not yet added).
func unknownHashes(dag gomel.Dag, info processInfo, alsoKnown staticHashSet) processRequests {
	result := processRequests{}
	units := dag.GetUnits(hashesFromInfo(info))
	for i, u := range units {
		if u == nil && !alsoKnown.contains(info[i].hash) {
			result = append(result, info[i].hash)
		}
	}
	return result
}

// requestsToSend builds the full per-process requests batch for a peer who reported dagInfo info.
func requestsToSend(dag gomel.Dag, info dagInfo, alsoKnown staticHashSet) requests {
	result := make(requests, len(info))
	for pid := range info {
		result[pid] = unknownHashes(dag, info[pid], alsoKnown)
	}
	return result
}
