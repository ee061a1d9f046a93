package config

import "github.com/aleph-committee/aleph-poset/pkg/gomel"

// Valid checks that a configuration is complete and internally consistent enough to start a
// process with.
func Valid(cnf Config) error {
	if cnf.NProc < 4 {
		return gomel.NewConfigError("nProc must be at least 4")
	}
	if cnf.PrivateKey == nil {
		return gomel.NewConfigError("private key is missing")
	}
	if len(cnf.PublicKeys) != int(cnf.NProc) {
		for _, pk := range cnf.PublicKeys {
			if pk == nil {
				return gomel.NewConfigError("public keys contain a nil entry")
			}
		}
		return gomel.NewConfigError("wrong number of public keys")
	}
	if cnf.MaxParents < 2 {
		return gomel.NewConfigError("maxParents must be at least 2")
	}
	if cnf.CreateDelay <= 0 {
		return gomel.NewConfigError("createDelay must be positive")
	}
	if cnf.Timeout <= 0 {
		return gomel.NewConfigError("timeout must be positive")
	}
	if cnf.NInSync == 0 {
		return gomel.NewConfigError("nInSync cannot be 0")
	}
	if cnf.NOutSync == 0 {
		return gomel.NewConfigError("nOutSync cannot be 0")
	}
	if cnf.CRPFixedPrefix > cnf.NProc {
		return gomel.NewConfigError("crpFixedPrefix cannot exceed nProc")
	}
	n := int(cnf.NProc)
	if len(cnf.Addresses["gossip"]) != n || len(cnf.Addresses["fetch"]) != n {
		return gomel.NewConfigError("wrong number of sync addresses")
	}
	return nil
}
