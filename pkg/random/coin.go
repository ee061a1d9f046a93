// Package random implements the common random source used by the linear-ordering module's
// coin toss: a threshold coin whose shares are carried as payload on prime units.
package random

import (
	"sync"

	"github.com/aleph-committee/aleph-poset/pkg/crypto/tcoin"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// Coin is a gomel.RandomSource backed by a threshold coin: every prime unit created by a
// share-providing process carries one coin share, and once a level accumulates a threshold of
// verified shares any process can combine them into the level's random bytes.
type Coin struct {
	dag       gomel.Dag
	tc        *tcoin.ThresholdCoin
	providers map[uint16]bool

	mx     sync.RWMutex
	shares map[gomel.Hash]*tcoin.CoinShare
}

// NewCoin returns a random source using the given threshold coin, with every process in
// providers expected to attach a coin share to each of its prime units.
func NewCoin(tc *tcoin.ThresholdCoin, providers map[uint16]bool) *Coin {
	return &Coin{
		tc:        tc,
		providers: providers,
		shares:    map[gomel.Hash]*tcoin.CoinShare{},
	}
}

// Bind attaches the coin to a dag, wiring its Update/CheckCompliance behaviour into the
// dag's insertion pipeline, and returns the dag unchanged.
func (c *Coin) Bind(dag gomel.Dag) gomel.Dag {
	c.dag = dag
	dag.AddCheck(c.checkCompliance)
	dag.AfterInsert(c.update)
	return dag
}

// RandomBytes returns the combined random bytes for the given level, or nil if not enough
// verified shares have been observed yet. The creator argument is unused by this source.
func (c *Coin) RandomBytes(_ uint16, level int) []byte {
	shares := c.collectShares(level)
	if len(shares) < c.tc.Threshold() {
		return nil
	}
	coin, ok := c.tc.CombineCoinShares(shares)
	if !ok {
		return nil
	}
	return coin.RandomBytes()
}

func (c *Coin) collectShares(level int) []*tcoin.CoinShare {
	su := c.dag.PrimeUnits(level)
	if su == nil {
		return nil
	}
	seen := map[uint16]bool{}
	var shares []*tcoin.CoinShare
	su.Iterate(func(units []gomel.Unit) bool {
		for _, u := range units {
			if !c.providers[u.Creator()] || seen[u.Creator()] {
				continue
			}
			c.mx.RLock()
			cs := c.shares[*u.Hash()]
			c.mx.RUnlock()
			if cs == nil {
				continue
			}
			shares = append(shares, cs)
			seen[u.Creator()] = true
		}
		return len(shares) < c.tc.Threshold()
	})
	return shares
}

// update caches the coin share carried by a newly inserted prime unit.
func (c *Coin) update(u gomel.Unit) {
	if !gomel.Prime(u) || !c.providers[u.Creator()] {
		return
	}
	cs, err := tcoin.UnmarshalCoinShare(u.RandomSourceData())
	if err != nil {
		return
	}
	c.mx.Lock()
	c.shares[*u.Hash()] = cs
	c.mx.Unlock()
}

// checkCompliance verifies that a unit carries a valid coin share exactly when it should.
func (c *Coin) checkCompliance(u gomel.Unit) error {
	if gomel.Prime(u) && c.providers[u.Creator()] {
		cs, err := tcoin.UnmarshalCoinShare(u.RandomSourceData())
		if err != nil {
			return gomel.NewComplianceError("malformed coin share")
		}
		if !c.tc.VerifyCoinShare(cs, u.Level()) {
			return gomel.NewComplianceError("invalid coin share")
		}
	} else if len(u.RandomSourceData()) != 0 {
		return gomel.NewComplianceError("unit should not carry random source data")
	}
	return nil
}

// DataToInclude returns the coin share this process should attach when creating a prime unit
// at the given level, or nil if the unit under construction will not be prime.
func (c *Coin) DataToInclude(creator uint16, parents []gomel.Unit, level int) ([]byte, error) {
	if !c.providers[creator] {
		return nil, nil
	}
	pred := parents[creator]
	if pred != nil && pred.Level() == level {
		return nil, nil
	}
	return c.tc.CreateCoinShare(level).Marshal(), nil
}
