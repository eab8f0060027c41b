// Package edwards derives the Edwards25519 twin of a clamped Montgomery
// (X25519) scalar and provides the point/scalar arithmetic XEdDSA and
// VXEdDSA are built from. It generalizes the teacher's key_ed25519
// package, which used the same kyber suite for Edwards-native keys, to
// instead treat any X25519 scalar as an Edwards scalar on demand.
package edwards

import (
	"math/big"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/suites"
)

// Suite is the Edwards25519 group. Its point encoding matches the
// standard Ed25519 wire format: a compressed y-coordinate with the sign
// of x folded into the top bit of the last byte.
var Suite = suites.MustFind("Ed25519")

// p25519 is 2^255 - 19, the field modulus shared by Curve25519 and
// Edwards25519 since one is a birational transform of the other.
var p25519, _ = new(big.Int).SetString(
	"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffed", 16)

// ScalarFromBytes reduces a 32-byte little-endian integer modulo the
// group order by repeated doubling. A clamped X25519 scalar is not
// canonical modulo the (smaller) Edwards group order, so it cannot be
// handed to kyber's UnmarshalBinary directly; this walks the bits from
// most to least significant instead, which is valid for any input.
func ScalarFromBytes(b [32]byte) kyber.Scalar {
	two := Suite.Scalar().SetInt64(2)
	one := Suite.Scalar().One()
	s := Suite.Scalar().Zero()
	for i := len(b) - 1; i >= 0; i-- {
		for bit := 7; bit >= 0; bit-- {
			s = Suite.Scalar().Mul(s, two)
			if b[i]&(1<<uint(bit)) != 0 {
				s = Suite.Scalar().Add(s, one)
			}
		}
	}
	return s
}

// ScalarFromWideBytes reduces an arbitrary-length (typically 64-byte,
// SHA-512-sized) big-endian-agnostic digest modulo the group order, the
// same way ScalarFromBytes does but over more input bits. XEdDSA feeds
// it raw SHA-512 output for both the nonce scalar r and the challenge
// scalar h.
func ScalarFromWideBytes(b []byte) kyber.Scalar {
	two := Suite.Scalar().SetInt64(2)
	one := Suite.Scalar().One()
	s := Suite.Scalar().Zero()
	for i := len(b) - 1; i >= 0; i-- {
		for bit := 7; bit >= 0; bit-- {
			s = Suite.Scalar().Mul(s, two)
			if b[i]&(1<<uint(bit)) != 0 {
				s = Suite.Scalar().Add(s, one)
			}
		}
	}
	return s
}

// PointMulBase returns s times the Edwards base point.
func PointMulBase(s kyber.Scalar) kyber.Point {
	return Suite.Point().Mul(s, nil)
}

// PointMul returns s times p.
func PointMul(s kyber.Scalar, p kyber.Point) kyber.Point {
	return Suite.Point().Mul(s, p)
}

// PointAdd returns a + b.
func PointAdd(a, b kyber.Point) kyber.Point {
	return Suite.Point().Add(a, b)
}

// SignBit returns the high-order sign bit of p's canonical 32-byte
// encoding — the bit XEdDSA folds the Montgomery scalar's negation
// decision into.
func SignBit(p kyber.Point) (byte, error) {
	enc, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return enc[len(enc)-1] >> 7, nil
}

// Canonical returns p's encoding with the sign bit cleared, and whether
// it already was clear.
func Canonical(p kyber.Point) ([]byte, bool, error) {
	enc, err := p.MarshalBinary()
	if err != nil {
		return nil, false, err
	}
	out := make([]byte, len(enc))
	copy(out, enc)
	wasCanonical := out[len(out)-1]&0x80 == 0
	out[len(out)-1] &^= 0x80
	return out, wasCanonical, nil
}

// FromMontgomery converts a Curve25519 (Montgomery u-coordinate) public
// key into the canonical Edwards point sharing the same private scalar,
// via the birational map u = (1+y)/(1-y), y = (u-1)/(u+1). It always
// returns the point with sign bit cleared, matching the canonical form
// XEdDSA signs and verifies against.
func FromMontgomery(u [32]byte) (kyber.Point, error) {
	uInt := new(big.Int).SetBytes(reverse(u[:]))
	one := big.NewInt(1)

	denom := new(big.Int).Add(uInt, one)
	denom.ModInverse(denom, p25519)

	y := new(big.Int).Sub(uInt, one)
	y.Mul(y, denom)
	y.Mod(y, p25519)

	yBytes := make([]byte, 32)
	yBig := y.Bytes()
	copy(yBytes[32-len(yBig):], yBig)
	reverseInPlace(yBytes)
	yBytes[31] &^= 0x80

	p := Suite.Point()
	if err := p.UnmarshalBinary(yBytes); err != nil {
		return nil, err
	}
	return p, nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func reverseInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
