package tests

import "github.com/aleph-committee/aleph-poset/pkg/gomel"

// AddUnit runs a preunit through the standard decode/build/check/insert pipeline of a dag,
// the way the arbiter does in production, and returns the resulting unit.
func AddUnit(dag gomel.Dag, pu gomel.Preunit) (gomel.Unit, error) {
	parents, err := dag.DecodeParents(pu)
	if err != nil {
		return nil, err
	}
	u := dag.BuildUnit(pu, parents)
	if err := dag.Check(u); err != nil {
		return nil, err
	}
	u = dag.Transform(u)
	dag.Insert(u)
	return dag.GetUnit(pu.Hash()), nil
}
