// Package tcoin implements a (threshold, n) BLS-style threshold coin: a shared secret,
// generated once at dealing time, which lets any threshold of processes combine their
// individual shares into a single value nobody could have predicted alone. It backs the
// common coin used by the linear-ordering module's fallback vote.
package tcoin

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"io"
	"math/big"
	"sync"

	"golang.org/x/crypto/bn256"
)

var generator = new(bn256.G2).ScalarBaseMult(big.NewInt(1))

type secretKey struct {
	key *big.Int
}

type verificationKey struct {
	key *bn256.G2
}

func (sk secretKey) sign(msg *big.Int) []byte {
	msgHash := new(bn256.G1).ScalarBaseMult(msg)
	return new(bn256.G1).ScalarMult(msgHash, sk.key).Marshal()
}

func (vk verificationKey) verify(sig []byte, msg *big.Int) bool {
	sHash, ok := new(bn256.G1).Unmarshal(sig)
	if !ok {
		return false
	}
	lhs := bn256.Pair(sHash, generator).Marshal()
	rhs := bn256.Pair(new(bn256.G1).ScalarBaseMult(msg), vk.key).Marshal()
	return subtle.ConstantTimeCompare(lhs, rhs) == 1
}

// Dealt holds every process's secret share after a single dealing; it exists only transiently
// on whichever process (or offline tool) performs the dealing and must never be transmitted whole.
type Dealt struct {
	threshold int
	globalVK  verificationKey
	vks       []verificationKey
	sks       []secretKey
}

// Deal generates a fresh threshold coin for n processes with the given threshold.
func Deal(n, threshold int) *Dealt {
	coeffs := make([]*big.Int, threshold)
	for i := range coeffs {
		c, _, _ := bn256.RandomG1(rand.Reader)
		coeffs[i] = c
	}
	secret := coeffs[threshold-1]
	globalVK := verificationKey{key: new(bn256.G2).ScalarBaseMult(secret)}

	sks := make([]secretKey, n)
	vks := make([]verificationKey, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sks[i] = secretKey{key: evalPoly(coeffs, big.NewInt(int64(i+1)))}
			vks[i] = verificationKey{key: new(bn256.G2).ScalarBaseMult(sks[i].key)}
		}(i)
	}
	wg.Wait()

	return &Dealt{threshold: threshold, globalVK: globalVK, vks: vks, sks: sks}
}

// ThresholdCoin returns the process-local view of the dealt coin for the given process id.
func (d *Dealt) ThresholdCoin(pid int) *ThresholdCoin {
	return &ThresholdCoin{
		threshold: d.threshold,
		pid:       pid,
		mySk:      d.sks[pid],
		globalVK:  d.globalVK,
		vks:       d.vks,
	}
}

// ThresholdCoin is the share of the coin visible to a single process: its own secret key plus
// every process's public verification key.
type ThresholdCoin struct {
	threshold int
	pid       int
	mySk      secretKey
	globalVK  verificationKey
	vks       []verificationKey
}

// Threshold returns the number of shares needed to combine a coin.
func (tc *ThresholdCoin) Threshold() int {
	return tc.threshold
}

// MarshalBinary encodes a single process's view of a dealt coin, so that it can be handed to
// that process out of band after an offline dealing ceremony.
func (tc *ThresholdCoin) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	writeUint32(&buf, uint32(tc.threshold))
	writeUint32(&buf, uint32(tc.pid))
	writeChunk(&buf, tc.mySk.key.Bytes())
	writeChunk(&buf, tc.globalVK.key.Marshal())
	writeUint32(&buf, uint32(len(tc.vks)))
	for _, vk := range tc.vks {
		writeChunk(&buf, vk.key.Marshal())
	}
	return buf.Bytes(), nil
}

// UnmarshalThresholdCoin decodes a threshold coin share previously produced by MarshalBinary.
func UnmarshalThresholdCoin(data []byte) (*ThresholdCoin, error) {
	r := bytes.NewReader(data)
	threshold, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	pid, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	skBytes, err := readChunk(r)
	if err != nil {
		return nil, err
	}
	vkBytes, err := readChunk(r)
	if err != nil {
		return nil, err
	}
	globalVK := verificationKey{key: new(bn256.G2)}
	if _, ok := globalVK.key.Unmarshal(vkBytes); !ok {
		return nil, errors.New("malformed global verification key")
	}
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	vks := make([]verificationKey, n)
	for i := range vks {
		b, err := readChunk(r)
		if err != nil {
			return nil, err
		}
		vks[i] = verificationKey{key: new(bn256.G2)}
		if _, ok := vks[i].key.Unmarshal(b); !ok {
			return nil, errors.New("malformed verification key")
		}
	}
	return &ThresholdCoin{
		threshold: int(threshold),
		pid:       int(pid),
		mySk:      secretKey{key: new(big.Int).SetBytes(skBytes)},
		globalVK:  globalVK,
		vks:       vks,
	}, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func writeChunk(buf *bytes.Buffer, data []byte) {
	writeUint32(buf, uint32(len(data)))
	buf.Write(data)
}

func readChunk(r *bytes.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// CoinShare is one process's contribution towards revealing the coin for a given nonce.
type CoinShare struct {
	pid int
	sig []byte
}

// Coin is the pseudorandom value obtained by combining threshold-many coin shares.
type Coin struct {
	sig []byte
}

// Toss extracts a pseudorandom bit from a combined coin.
func (c *Coin) Toss() bool {
	return c.sig[0]&1 == 1
}

// RandomBytes returns the combined coin's signature, usable as the process's contribution to
// the common random source for a given level.
func (c *Coin) RandomBytes() []byte {
	return c.sig
}

// Marshal encodes a coin share as owner (2 bytes, little-endian) followed by its signature.
func (cs *CoinShare) Marshal() []byte {
	data := make([]byte, 2, 2+len(cs.sig))
	data[0] = byte(cs.pid)
	data[1] = byte(cs.pid >> 8)
	return append(data, cs.sig...)
}

// UnmarshalCoinShare decodes a coin share previously produced by Marshal.
func UnmarshalCoinShare(data []byte) (*CoinShare, error) {
	if len(data) < 2 {
		return nil, errors.New("coin share data too short")
	}
	pid := int(data[0]) | int(data[1])<<8
	sig := make([]byte, len(data)-2)
	copy(sig, data[2:])
	return &CoinShare{pid: pid, sig: sig}, nil
}

// CreateCoinShare produces this process's share of the coin for the given nonce (e.g. a level).
func (tc *ThresholdCoin) CreateCoinShare(nonce int) *CoinShare {
	return &CoinShare{pid: tc.pid, sig: tc.mySk.sign(big.NewInt(int64(nonce)))}
}

// VerifyCoinShare checks that a coin share was produced by its claimed owner for the nonce.
func (tc *ThresholdCoin) VerifyCoinShare(share *CoinShare, nonce int) bool {
	if share.pid < 0 || share.pid >= len(tc.vks) {
		return false
	}
	return tc.vks[share.pid].verify(share.sig, big.NewInt(int64(nonce)))
}

// VerifyCoin checks that a combined coin is the correct one for the given nonce.
func (tc *ThresholdCoin) VerifyCoin(c *Coin, nonce int) bool {
	return tc.globalVK.verify(c.sig, big.NewInt(int64(nonce)))
}

// CombineCoinShares combines exactly threshold shares (from distinct processes) into a Coin.
func (tc *ThresholdCoin) CombineCoinShares(shares []*CoinShare) (*Coin, bool) {
	if len(shares) != tc.threshold {
		return nil, false
	}
	points := make([]int, len(shares))
	for i, sh := range shares {
		points[i] = sh.pid
	}

	summands := make([]*bn256.G1, len(shares))
	ok := true
	var wg sync.WaitGroup
	for i, sh := range shares {
		wg.Add(1)
		go func(i int, sh *CoinShare) {
			defer wg.Done()
			elem, success := new(bn256.G1).Unmarshal(sh.sig)
			if !success {
				ok = false
				return
			}
			summands[i] = elem.ScalarMult(elem, lagrangeAt0(points, sh.pid))
		}(i, sh)
	}
	wg.Wait()
	if !ok {
		return nil, false
	}

	combined := summands[0]
	for _, s := range summands[1:] {
		combined.Add(combined, s)
	}
	return &Coin{sig: combined.Marshal()}, true
}

// lagrangeAt0 computes the Lagrange coefficient of point x when interpolating at 0, given the
// set of participating points (each shifted by +1, since dealt secret keys use 1-indexed x values).
func lagrangeAt0(points []int, x int) *big.Int {
	num := big.NewInt(1)
	den := big.NewInt(1)
	for _, p := range points {
		if p == x {
			continue
		}
		num.Mul(num, big.NewInt(int64(-(p + 1))))
		den.Mul(den, big.NewInt(int64(x-p)))
	}
	den.ModInverse(den, bn256.Order)
	num.Mul(num, den)
	num.Mod(num, bn256.Order)
	return num
}

func evalPoly(coeffs []*big.Int, x *big.Int) *big.Int {
	result := big.NewInt(0)
	for _, c := range coeffs {
		result.Mul(result, x)
		result.Add(result, c)
		result.Mod(result, bn256.Order)
	}
	return result
}
