// Command gomel-keys generates key material for a local test committee: one shared committee
// file and one member file per process, all pointing at localhost addresses with consecutive ports.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aleph-committee/aleph-poset/pkg/config"
	"github.com/aleph-committee/aleph-poset/pkg/crypto/signing"
	"github.com/aleph-committee/aleph-poset/pkg/crypto/tcoin"
)

const basePort = 21037

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: gomel-keys <number-of-processes>.\n")
		return
	}
	n, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Usage: gomel-keys <number-of-processes>.\n")
		return
	}
	if n < 4 {
		fmt.Fprintf(os.Stderr, "Cannot have less than 4 processes.\n")
		return
	}

	dealt := tcoin.Deal(n, n/3+1)

	committee := &config.Committee{
		ThresholdProviders: make(map[uint16]bool),
		Addresses:          map[string][]string{"gossip": make([]string, n), "fetch": make([]string, n)},
	}
	members := make([]*config.Member, n)

	for i := 0; i < n; i++ {
		pub, priv, err := signing.GenerateKeys()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed generating keys for process %d: %s.\n", i, err)
			return
		}
		committee.PublicKeys = append(committee.PublicKeys, pub)
		committee.ThresholdProviders[uint16(i)] = true
		committee.Addresses["gossip"][i] = "127.0.0.1:" + strconv.Itoa(basePort+i)
		committee.Addresses["fetch"][i] = "127.0.0.1:" + strconv.Itoa(basePort+n+i)

		members[i] = &config.Member{
			Pid:           uint16(i),
			PrivateKey:    priv,
			ThresholdCoin: dealt.ThresholdCoin(i),
		}
	}

	committeeFile, err := os.Create("committee.conf")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed creating committee.conf: %s.\n", err)
		return
	}
	defer committeeFile.Close()
	if err := config.StoreCommittee(committeeFile, committee); err != nil {
		fmt.Fprintf(os.Stderr, "Failed writing committee.conf: %s.\n", err)
		return
	}

	for i, m := range members {
		name := strconv.Itoa(i) + ".priv"
		f, err := os.Create(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed creating %s: %s.\n", name, err)
			return
		}
		err = config.StoreMember(f, m)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed writing %s: %s.\n", name, err)
			return
		}
	}
}
