package process

import (
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// preunitView adapts an already-built gomel.Unit back to the gomel.Preunit shape
// gomel.PublicKey.Verify expects. SetSignature is never actually invoked: Verify only reads
// Signature and Hash, both of which a Unit already carries from the preunit it was built from.
type preunitView struct {
	gomel.Unit
}

func (preunitView) SetSignature(gomel.Signature) {
	panic("SetSignature called through a preunitView")
}

// checkSignatures returns a checker verifying a unit's signature against its creator's public
// key, rejecting units from a creator with no registered key and units whose signature does
// not verify.
func checkSignatures(keys []gomel.PublicKey) gomel.UnitChecker {
	return func(u gomel.Unit) error {
		if int(u.Creator()) >= len(keys) {
			return gomel.NewDataError("invalid creator")
		}
		if !keys[u.Creator()].Verify(preunitView{u}) {
			return gomel.NewDataError("invalid signature")
		}
		return nil
	}
}
