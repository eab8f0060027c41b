// Package curve25519 wraps golang.org/x/crypto/curve25519 with the
// clamped key-pair and Diffie-Hellman shapes the rest of this module
// needs: identity keys, signed prekeys, one-time prekeys, and ephemeral
// keys are all just clamped X25519 scalars.
package curve25519

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/dtonda2/signal-core/signalerr"
)

// KeySize is the fixed size, in bytes, of an X25519 scalar or point.
const KeySize = 32

// PrivateKey is a clamped X25519 scalar.
type PrivateKey [KeySize]byte

// PublicKey is an X25519 point.
type PublicKey [KeySize]byte

// clamp applies the RFC 7748 bit-twiddling that turns 32 random bytes
// into a valid Curve25519 scalar.
func clamp(k *PrivateKey) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}

// GenerateKeyPair draws a fresh clamped scalar from rnd (crypto/rand.Reader
// if nil) and returns it along with its public point.
func GenerateKeyPair(rnd io.Reader) (PrivateKey, PublicKey, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	var priv PrivateKey
	if _, err := io.ReadFull(rnd, priv[:]); err != nil {
		return PrivateKey{}, PublicKey{}, err
	}
	clamp(&priv)
	pub, err := priv.Public()
	if err != nil {
		return PrivateKey{}, PublicKey{}, err
	}
	return priv, pub, nil
}

// Public derives the public point for priv.
func (priv PrivateKey) Public() (PublicKey, error) {
	out, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return PublicKey{}, err
	}
	var pub PublicKey
	copy(pub[:], out)
	return pub, nil
}

// DH computes the X25519 shared secret between priv and pub, rejecting
// the all-zero output that results from a low-order or otherwise
// degenerate public point.
func DH(priv PrivateKey, pub PublicKey) ([KeySize]byte, error) {
	out, err := curve25519.X25519(priv[:], pub[:])
	if err != nil {
		return [KeySize]byte{}, err
	}
	var secret [KeySize]byte
	copy(secret[:], out)
	if isZero(secret[:]) {
		return [KeySize]byte{}, signalerr.ErrDerivationFailed
	}
	return secret, nil
}

func isZero(b []byte) bool {
	var v byte
	for _, x := range b {
		v |= x
	}
	return v == 0
}
