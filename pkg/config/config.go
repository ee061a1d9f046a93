// Package config assembles the parameters, keys and committee information a process needs to
// start: adjustable protocol parameters loaded from a JSON file, and per-committee-member key
// material loaded from a member/committee file pair.
package config

import (
	"time"

	"github.com/aleph-committee/aleph-poset/pkg/crypto/tcoin"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

const (
	// MaxDataBytesPerUnit is the maximal allowed size of data included in a unit, in bytes.
	MaxDataBytesPerUnit = 2e6
	// MaxRandomSourceDataBytesPerUnit is the maximal allowed size of random source data included in a unit, in bytes.
	MaxRandomSourceDataBytesPerUnit = 1e6
	// MaxUnitsInChunk is the maximal number of units a single sync exchange may transfer.
	MaxUnitsInChunk = 1e6
)

// Config is the complete configuration a process needs to run: its own keys, the committee's
// public data, and the tunable protocol parameters.
type Config struct {
	Params

	// Pid is the process id of this committee member.
	Pid uint16
	// NProc is the number of processes in the committee.
	NProc uint16

	// PrivateKey signs the units this process creates.
	PrivateKey gomel.PrivateKey
	// PublicKeys verify units created by every process, indexed by pid.
	PublicKeys []gomel.PublicKey

	// ThresholdCoin is this process's share of the committee's common coin, or nil if this
	// process does not provide shares (e.g. it only observes the coin).
	ThresholdCoin *tcoin.ThresholdCoin
	// ThresholdProviders marks which processes are expected to attach coin shares to their
	// prime units.
	ThresholdProviders map[uint16]bool

	// Addresses of every committee member, keyed by service name ("gossip", "fetch", "mcast").
	Addresses map[string][]string
}

// Generate combines protocol parameters, one member's private data and the committee's public
// data into a complete configuration.
func Generate(p Params, m *Member, c *Committee) Config {
	return Config{
		Params:             p,
		Pid:                m.Pid,
		NProc:              uint16(len(c.PublicKeys)),
		PrivateKey:         m.PrivateKey,
		PublicKeys:         c.PublicKeys,
		ThresholdCoin:      m.ThresholdCoin,
		ThresholdProviders: c.ThresholdProviders,
		Addresses:          c.Addresses,
	}
}

// TimeoutDuration returns the configured sync timeout as a time.Duration.
func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

// CreateDelayDuration returns the configured minimum delay between creation attempts.
func (c Config) CreateDelayDuration() time.Duration {
	return time.Duration(c.CreateDelay * float64(time.Second))
}
