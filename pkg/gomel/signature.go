package gomel

import "bytes"

// Signature of a unit.
type Signature []byte

// SigEq checks two signatures for equality.
func SigEq(s, r Signature) bool {
	return bytes.Equal(s, r)
}

// PublicKey is used to verify the signature on a preunit.
type PublicKey interface {
	// Verify checks if a preunit has a correct signature.
	Verify(Preunit) bool
	// Encode encodes the public key in base64.
	Encode() string
}

// PrivateKey is used to sign preunits created by the committee member holding it.
type PrivateKey interface {
	// Sign computes and returns a signature of a preunit.
	Sign(Preunit) Signature
	// Encode encodes the private key in base64.
	Encode() string
}
