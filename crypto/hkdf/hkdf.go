// Package hkdf wraps golang.org/x/crypto/hkdf the way the teacher's
// crypto/hkdf package does: a generic buffer-filling KDF plus a
// convenience 32-byte extractor, kept from the teacher and generalized
// to accept a caller-supplied domain-separation info string instead of
// a single package-wide constant.
package hkdf

import (
	"crypto/sha256"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Derive fills out with HKDF(hashFn, secret, salt, info) output. hashFn
// defaults to SHA-256 if nil.
func Derive(hashFn func() hash.Hash, secret, salt, info []byte, out []byte) error {
	if hashFn == nil {
		hashFn = sha256.New
	}
	reader := hkdf.New(hashFn, secret, salt, info)
	_, err := io.ReadFull(reader, out)
	return err
}

// Derive32 is Derive specialized to a single 32-byte output, the shape
// X3DH's session-root derivation needs. The ratchet's KDF_RK calls
// Derive directly for its 64-byte output.
func Derive32(secret, salt, info []byte) ([32]byte, error) {
	var out [32]byte
	if err := Derive(nil, secret, salt, info, out[:]); err != nil {
		return [32]byte{}, err
	}
	return out, nil
}
