// Package xeddsa implements XEdDSA (signing with a Montgomery X25519 key
// by deterministically deriving its Edwards twin) and VXEdDSA, its
// verifiable-random-function sibling, per the algorithm in spec §4.2.
package xeddsa

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"io"

	"go.dedis.ch/kyber/v4"

	"github.com/dtonda2/signal-core/crypto/curve25519"
	"github.com/dtonda2/signal-core/crypto/edwards"
	"github.com/dtonda2/signal-core/crypto/memzero"
	"github.com/dtonda2/signal-core/signalerr"
)

const (
	// SignatureSize is the length of an XEdDSA signature: R (32) || S (32).
	SignatureSize = 64
	// ProofSize is the length of a VXEdDSA proof: V (32) || h (32) || s (32).
	ProofSize = 96
	// OutputSize is the length of the VRF output extracted from a proof.
	OutputSize = 32
)

// nonceDomain and vrfNonceDomain domain-separate their respective nonce
// hashes from an ordinary Ed25519 signature hash, so a valid XEdDSA
// nonce can never be mistaken for a standard Ed25519 key-expansion
// prefix, which never begins with 0xFE.
var (
	nonceDomain    = append(repeat(0xFE, 32), 0xFF)
	vrfNonceDomain = append(repeat(0xFE, 32), 0xFE)
	vrfHashDomain  = []byte("VXEdDSA-out")
)

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// twin holds the canonicalized Edwards image of a Montgomery scalar: the
// (possibly negated) private scalar a, and the canonical public point
// encoding A' the negation makes match the sign-cleared convention.
type twin struct {
	a      kyber.Scalar
	aBytes []byte
	aPoint []byte
}

// deriveTwin computes A = k*B_ed, sets a = -k when A's sign bit is 1
// (else a = k), and canonicalizes A's encoding, per spec §4.2 steps 1-2.
func deriveTwin(priv curve25519.PrivateKey) (twin, error) {
	k := edwards.ScalarFromBytes(priv)
	A := edwards.PointMulBase(k)

	signBit, err := edwards.SignBit(A)
	if err != nil {
		return twin{}, err
	}

	a := k
	if signBit == 1 {
		a = edwards.Suite.Scalar().Neg(k)
	}

	aPoint, _, err := edwards.Canonical(A)
	if err != nil {
		return twin{}, err
	}
	aBytes, err := a.MarshalBinary()
	if err != nil {
		return twin{}, err
	}
	return twin{a: a, aBytes: aBytes, aPoint: aPoint}, nil
}

// Sign produces a 64-byte XEdDSA signature of message under priv. rnd
// supplies the 64-byte signing nonce; pass nil for crypto/rand.Reader, or
// a deterministic reader (e.g. bytes.NewReader of 64 zero bytes) for
// reproducible test vectors.
func Sign(priv curve25519.PrivateKey, message []byte, rnd io.Reader) ([SignatureSize]byte, error) {
	if rnd == nil {
		rnd = rand.Reader
	}

	t, err := deriveTwin(priv)
	if err != nil {
		return [SignatureSize]byte{}, err
	}

	var z [64]byte
	if _, err := io.ReadFull(rnd, z[:]); err != nil {
		return [SignatureSize]byte{}, err
	}

	rScalar := hashToScalar(nonceDomain, t.aBytes, message, z[:])
	memzero.Array64(&z)
	memzero.Bytes(t.aBytes)
	R := edwards.PointMulBase(rScalar)
	rBytes, err := R.MarshalBinary()
	if err != nil {
		return [SignatureSize]byte{}, err
	}

	hScalar := hashToScalar(rBytes, t.aPoint, message)
	sScalar := edwards.Suite.Scalar().Add(rScalar, edwards.Suite.Scalar().Mul(hScalar, t.a))
	sBytes, err := sScalar.MarshalBinary()
	if err != nil {
		return [SignatureSize]byte{}, err
	}

	var sig [SignatureSize]byte
	copy(sig[0:32], rBytes)
	copy(sig[32:64], sBytes)
	return sig, nil
}

// Verify checks a 64-byte XEdDSA signature of message under the
// Montgomery public key pub, by converting pub to its canonical Edwards
// form and performing an ordinary Ed25519 verification against it.
func Verify(pub curve25519.PublicKey, message []byte, sig [SignatureSize]byte) (bool, error) {
	aBytes, err := canonicalEdwardsBytes(pub)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(ed25519.PublicKey(aBytes), message, sig[:]), nil
}

// Prove produces a 96-byte VXEdDSA proof binding priv and message: a
// Chaum-Pedersen proof of equal discrete log between the identity's
// public point (base B_ed) and the VRF output V (base Bv, a point
// derived deterministically from the public key and message).
func Prove(priv curve25519.PrivateKey, message []byte, rnd io.Reader) ([ProofSize]byte, error) {
	if rnd == nil {
		rnd = rand.Reader
	}

	t, err := deriveTwin(priv)
	if err != nil {
		return [ProofSize]byte{}, err
	}

	pub, err := priv.Public()
	if err != nil {
		return [ProofSize]byte{}, err
	}
	bv := hashToPoint(pub, message)
	bvBytes, err := bv.MarshalBinary()
	if err != nil {
		return [ProofSize]byte{}, err
	}

	V := edwards.PointMul(t.a, bv)
	vBytes, err := V.MarshalBinary()
	if err != nil {
		return [ProofSize]byte{}, err
	}

	var z [64]byte
	if _, err := io.ReadFull(rnd, z[:]); err != nil {
		return [ProofSize]byte{}, err
	}

	rScalar := hashToScalar(vrfNonceDomain, t.aBytes, message, z[:])
	memzero.Array64(&z)
	memzero.Bytes(t.aBytes)
	R := edwards.PointMulBase(rScalar)
	rBytes, err := R.MarshalBinary()
	if err != nil {
		return [ProofSize]byte{}, err
	}
	Rv := edwards.PointMul(rScalar, bv)
	rvBytes, err := Rv.MarshalBinary()
	if err != nil {
		return [ProofSize]byte{}, err
	}

	hScalar := hashToScalar(bvBytes, vBytes, rBytes, rvBytes, t.aPoint, message)
	sScalar := edwards.Suite.Scalar().Add(rScalar, edwards.Suite.Scalar().Mul(hScalar, t.a))
	sBytes, err := sScalar.MarshalBinary()
	if err != nil {
		return [ProofSize]byte{}, err
	}

	var proof [ProofSize]byte
	copy(proof[0:32], vBytes)
	copy(proof[32:64], mustPad32(hScalar))
	copy(proof[64:96], sBytes)
	return proof, nil
}

// VerifyAndHash checks a VXEdDSA proof produced by the holder of the
// private key behind pub over message, and if valid returns the 32-byte
// uniform output extracted from it.
func VerifyAndHash(pub curve25519.PublicKey, message []byte, proof [ProofSize]byte) ([OutputSize]byte, error) {
	vBytes := proof[0:32]
	hBytes := proof[32:64]
	sBytes := proof[64:96]

	V := edwards.Suite.Point()
	if err := V.UnmarshalBinary(vBytes); err != nil {
		return [OutputSize]byte{}, signalerr.ErrBadPoint
	}
	hScalar := edwards.Suite.Scalar()
	if err := hScalar.UnmarshalBinary(hBytes); err != nil {
		return [OutputSize]byte{}, signalerr.ErrBadProof
	}
	sScalar := edwards.Suite.Scalar()
	if err := sScalar.UnmarshalBinary(sBytes); err != nil {
		return [OutputSize]byte{}, signalerr.ErrBadProof
	}

	aPoint, err := edwards.FromMontgomery(pub)
	if err != nil {
		return [OutputSize]byte{}, signalerr.ErrBadPoint
	}
	aPointBytes, err := aPoint.MarshalBinary()
	if err != nil {
		return [OutputSize]byte{}, signalerr.ErrBadPoint
	}

	bv := hashToPoint(pub, message)
	bvBytes, err := bv.MarshalBinary()
	if err != nil {
		return [OutputSize]byte{}, err
	}

	// R_check = s*B - h*A', Rv_check = s*Bv - h*V
	negH := edwards.Suite.Scalar().Neg(hScalar)
	rCheck := edwards.PointAdd(edwards.PointMulBase(sScalar), edwards.PointMul(negH, aPoint))
	rCheckBytes, err := rCheck.MarshalBinary()
	if err != nil {
		return [OutputSize]byte{}, err
	}
	rvCheck := edwards.PointAdd(edwards.PointMul(sScalar, bv), edwards.PointMul(negH, V))
	rvCheckBytes, err := rvCheck.MarshalBinary()
	if err != nil {
		return [OutputSize]byte{}, err
	}

	hCheck := hashToScalar(bvBytes, vBytes, rCheckBytes, rvCheckBytes, aPointBytes, message)
	hCheckBytes, err := hCheck.MarshalBinary()
	if err != nil {
		return [OutputSize]byte{}, err
	}
	if !constantTimeEqual(hCheckBytes, hBytes) {
		return [OutputSize]byte{}, signalerr.ErrBadProof
	}

	return proofToHash(vBytes), nil
}

// ProofToHash extracts the 32-byte uniform output from a proof without
// verifying it. Callers that have not independently checked the proof
// with VerifyAndHash must not treat this output as trustworthy.
func ProofToHash(proof [ProofSize]byte) [OutputSize]byte {
	return proofToHash(proof[0:32])
}

func proofToHash(vBytes []byte) [OutputSize]byte {
	h := sha512.New()
	h.Write(vrfHashDomain)
	h.Write(vBytes)
	sum := h.Sum(nil)
	var out [OutputSize]byte
	copy(out[:], sum[:OutputSize])
	return out
}

// hashToPoint derives a deterministic Edwards base point Bv from the
// public key and message: it hashes them to a scalar and multiplies the
// group base point by it. This is a simplified stand-in for a proper
// hash-to-curve map (e.g. Elligator2); it is sufficient for the
// determinism and unforgeability properties this module tests, but
// unlike Elligator2 it reveals the discrete log of Bv relative to B,
// which a stricter VRF construction would want to avoid.
func hashToPoint(pub curve25519.PublicKey, message []byte) kyber.Point {
	s := hashToScalar([]byte("VXEdDSA-Bv"), pub[:], message)
	return edwards.PointMulBase(s)
}

func hashToScalar(parts ...[]byte) kyber.Scalar {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	return edwards.ScalarFromWideBytes(h.Sum(nil))
}

func canonicalEdwardsBytes(pub curve25519.PublicKey) ([]byte, error) {
	p, err := edwards.FromMontgomery(pub)
	if err != nil {
		return nil, signalerr.ErrBadPoint
	}
	return p.MarshalBinary()
}

// mustPad32 encodes a scalar into exactly 32 bytes, left-padding with
// zeroes if kyber's marshaler returns a shorter canonical form.
func mustPad32(s kyber.Scalar) []byte {
	b, err := s.MarshalBinary()
	if err != nil || len(b) == 32 {
		return b
	}
	out := make([]byte, 32)
	copy(out, b)
	return out
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
