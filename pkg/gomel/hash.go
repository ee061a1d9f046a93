package gomel

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/sha3"
)

// HashLength is the size in bytes of a unit's content hash.
const HashLength = 32

// Hash identifies a unit by the SHA-256 digest of its canonical content.
type Hash [HashLength]byte

// ZeroHash is a hash containing zeros at all positions, used for missing units.
var ZeroHash Hash

// Short returns a shortened, human-readable version of the hash.
func (h *Hash) Short() string {
	return base64.StdEncoding.EncodeToString(h[:8])
}

// LessThan defines a lexicographic order on hashes, used to break ties deterministically.
func (h *Hash) LessThan(k *Hash) bool {
	for i := range h {
		if h[i] < k[i] {
			return true
		} else if h[i] > k[i] {
			return false
		}
	}
	return false
}

// XOR returns the bitwise xor of two hashes.
func XOR(h, k *Hash) *Hash {
	var result Hash
	for i := range result {
		result[i] = h[i] ^ k[i]
	}
	return &result
}

// XOREqual updates h in place to be the xor of h and k.
func (h *Hash) XOREqual(k *Hash) {
	for i := range h {
		h[i] ^= k[i]
	}
}

// ComputeHash computes the canonical content hash of a unit from its fixed fields, per the wire layout.
// Unlike CombineHashes (used for internal tiebreaking and CRP derivation) this is the unit's identity hash.
func ComputeHash(creator uint16, height int, view *Crown, data, randomSourceData []byte) *Hash {
	h := sha256.New()
	var buf [10]byte
	buf[0] = byte(creator)
	buf[1] = byte(creator >> 8)
	putInt64(buf[2:10], int64(height))
	h.Write(buf[:])
	for _, ht := range view.Heights {
		var hbuf [8]byte
		putInt64(hbuf[:], int64(ht))
		h.Write(hbuf[:])
	}
	h.Write(view.ControlHash[:])
	h.Write(data)
	h.Write(randomSourceData)
	var result Hash
	copy(result[:], h.Sum(nil))
	return &result
}

func putInt64(buf []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> (8 * i))
	}
}

// CombineHashes computes a combined tiebreaking hash from a sequence of hashes, using Shake128
// as the internal CRP and antichain-ordering machinery does.
func CombineHashes(hashes []*Hash) *Hash {
	var (
		result Hash
		data   bytes.Buffer
	)
	for _, h := range hashes {
		if h != nil {
			data.Write(h[:])
		} else {
			data.Write(ZeroHash[:])
		}
	}
	sha3.ShakeSum128(result[:], data.Bytes())
	return &result
}
