package config

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aleph-committee/aleph-poset/pkg/crypto/signing"
	"github.com/aleph-committee/aleph-poset/pkg/crypto/tcoin"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// Member represents the private data about a single committee member.
type Member struct {
	// Pid is the process id of this member.
	Pid uint16
	// PrivateKey signs the units this member creates.
	PrivateKey gomel.PrivateKey
	// ThresholdCoin is this member's share of the committee's common coin, dealt once before
	// the committee starts. Nil if this member does not provide coin shares.
	ThresholdCoin *tcoin.ThresholdCoin
}

// Committee represents the public data about the committee, known to every member before the
// protocol starts.
type Committee struct {
	// PublicKeys verify units created by every process, ordered by pid.
	PublicKeys []gomel.PublicKey
	// ThresholdProviders marks which processes are expected to provide coin shares.
	ThresholdProviders map[uint16]bool
	// Addresses of every member, keyed by service name.
	Addresses map[string][]string
}

const malformedData = "malformed committee data"

// LoadMember reads one line of the form "privateKey thresholdCoin pid" and builds a Member.
// ThresholdCoin may be the literal "-" if this member provides no coin shares.
func LoadMember(r io.Reader) (*Member, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	if !scanner.Scan() {
		return nil, errors.New(malformedData)
	}
	privateKey, err := signing.DecodePrivateKey(scanner.Text())
	if err != nil {
		return nil, err
	}

	if !scanner.Scan() {
		return nil, errors.New(malformedData)
	}
	var tc *tcoin.ThresholdCoin
	if raw := scanner.Text(); raw != "-" {
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, err
		}
		tc, err = tcoin.UnmarshalThresholdCoin(data)
		if err != nil {
			return nil, err
		}
	}

	if !scanner.Scan() {
		return nil, errors.New(malformedData)
	}
	pid, err := strconv.Atoi(scanner.Text())
	if err != nil {
		return nil, err
	}

	return &Member{Pid: uint16(pid), PrivateKey: privateKey, ThresholdCoin: tc}, nil
}

// StoreMember writes m to w in the format LoadMember expects.
func StoreMember(w io.Writer, m *Member) error {
	coin := "-"
	if m.ThresholdCoin != nil {
		data, err := m.ThresholdCoin.MarshalBinary()
		if err != nil {
			return err
		}
		coin = base64.StdEncoding.EncodeToString(data)
	}
	_, err := fmt.Fprintf(w, "%s %s %d\n", m.PrivateKey.Encode(), coin, m.Pid)
	return err
}

// parseCommitteeLine splits a line of the form "publicKey|providesCoin|addresses" where
// addresses is a space-separated list of single-letter-prefixed entries ("g<addr>" for
// gossip, "f<addr>" for fetch, "m<addr>" for multicast).
func parseCommitteeLine(line string) (string, bool, map[string]string, error) {
	s := strings.Split(line, "|")
	if len(s) != 3 {
		return "", false, nil, errors.New("committee line should be of the form:\npublicKey|providesCoin|addresses")
	}
	pk, providesRaw, addrsList := s[0], s[1], s[2]
	if len(pk) == 0 {
		return "", false, nil, errors.New(malformedData)
	}
	provides := providesRaw == "1"

	addrs := make(map[string]string)
	for _, addr := range strings.Split(addrsList, " ") {
		if len(addr) == 0 {
			continue
		}
		switch addr[0] {
		case 'g':
			addrs["gossip"] = addr[1:]
		case 'f':
			addrs["fetch"] = addr[1:]
		case 'm':
			addrs["mcast"] = addr[1:]
		}
	}
	return pk, provides, addrs, nil
}

// LoadCommittee reads a committee description, one member per line, from r.
func LoadCommittee(r io.Reader) (*Committee, error) {
	scanner := bufio.NewScanner(r)

	c := &Committee{Addresses: make(map[string][]string), ThresholdProviders: make(map[uint16]bool)}
	var pid uint16
	for scanner.Scan() {
		pk, provides, addrs, err := parseCommitteeLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		publicKey, err := signing.DecodePublicKey(pk)
		if err != nil {
			return nil, err
		}
		c.PublicKeys = append(c.PublicKeys, publicKey)
		if provides {
			c.ThresholdProviders[pid] = true
		}
		c.Addresses["gossip"] = append(c.Addresses["gossip"], addrs["gossip"])
		c.Addresses["fetch"] = append(c.Addresses["fetch"], addrs["fetch"])
		c.Addresses["mcast"] = append(c.Addresses["mcast"], addrs["mcast"])
		pid++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(c.PublicKeys) < 4 {
		return nil, errors.New(malformedData)
	}
	return c, nil
}

// StoreCommittee writes c to w in the format LoadCommittee expects.
func StoreCommittee(w io.Writer, c *Committee) error {
	for i, pk := range c.PublicKeys {
		provides := "0"
		if c.ThresholdProviders[uint16(i)] {
			provides = "1"
		}
		addrs := []string{
			"g" + c.Addresses["gossip"][i],
			"f" + c.Addresses["fetch"][i],
		}
		if mcast := c.Addresses["mcast"]; len(mcast) > i && mcast[i] != "" {
			addrs = append(addrs, "m"+mcast[i])
		}
		if _, err := fmt.Fprintf(w, "%s|%s|%s\n", pk.Encode(), provides, strings.Join(addrs, " ")); err != nil {
			return err
		}
	}
	return nil
}
