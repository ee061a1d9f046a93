package gossip

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// Adder receives preunits decoded off the wire, grouped into layers by toLayers so that a
// unit's parents, when present in the same batch, always sit in an earlier layer than the
// unit itself, and is responsible for actually resolving and inserting them into a dag.
// Gossip itself never calls gomel.Dag's mutating methods — every preunit it decodes, whether
// from its own sync or a peer's, passes through whatever Adder the caller supplies, so that
// dag insertion can be serialized across every concurrently running sync.
type Adder interface {
	AddPreunits(source uint16, layers [][]gomel.Preunit)
}
