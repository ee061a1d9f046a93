// Package signing provides unit-signing keys built on NaCl signatures.
package signing

import (
	"encoding/base64"

	"golang.org/x/crypto/nacl/sign"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

type publicKey struct {
	data *[32]byte
}

type privateKey struct {
	data *[64]byte
}

// Verify checks a preunit's signature against this public key.
func (pub *publicKey) Verify(pu gomel.Preunit) bool {
	msgSig := append(append([]byte{}, pu.Signature()...), pu.Hash()[:]...)
	_, ok := sign.Open(nil, msgSig, pub.data)
	return ok
}

// Encode returns the base64 encoding of the public key.
func (pub *publicKey) Encode() string {
	return base64.StdEncoding.EncodeToString(pub.data[:])
}

// Sign produces the signature of a preunit's hash.
func (priv *privateKey) Sign(pu gomel.Preunit) gomel.Signature {
	return gomel.Signature(sign.Sign(nil, pu.Hash()[:], priv.data)[:sign.Overhead])
}

// Encode returns the base64 encoding of the private key.
func (priv *privateKey) Encode() string {
	return base64.StdEncoding.EncodeToString(priv.data[:])
}

// GenerateKeys produces a fresh public/private keypair for signing units.
func GenerateKeys() (gomel.PublicKey, gomel.PrivateKey, error) {
	pubData, privData, err := sign.GenerateKey(nil)
	if err != nil {
		return nil, nil, err
	}
	return &publicKey{pubData}, &privateKey{privData}, nil
}

// DecodePublicKey decodes a base64-encoded public key.
func DecodePublicKey(enc string) (gomel.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, err
	}
	var data [32]byte
	copy(data[:], raw)
	return &publicKey{&data}, nil
}

// DecodePrivateKey decodes a base64-encoded private key.
func DecodePrivateKey(enc string) (gomel.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, err
	}
	var data [64]byte
	copy(data[:], raw)
	return &privateKey{&data}, nil
}
