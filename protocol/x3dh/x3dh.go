// Package x3dh implements the Extended Triple Diffie-Hellman handshake:
// responders publish a prekey bundle, initiators consume it to derive a
// shared session root together with the material the first ratchet
// message needs. It generalizes the teacher's role-split
// protocol/x3dh/{alice,bob} packages (PerformKeyAgreement naming,
// bundle-then-derive structure) into a single package operating on
// Curve25519 keys directly, and restores the top-level package's
// domain-separation prefix that the role-split version dropped.
package x3dh

import (
	"io"

	"github.com/dtonda2/signal-core/crypto/curve25519"
	"github.com/dtonda2/signal-core/crypto/hkdf"
	"github.com/dtonda2/signal-core/crypto/xeddsa"
	"github.com/dtonda2/signal-core/signalerr"
)

// info is the HKDF context string binding a derived key to this protocol.
const info = "X3DH-Signal"

// domainSeparator is 32 bytes of 0xFF prepended to the DH concatenation,
// preventing a session root derived here from colliding with a key
// derived by some other protocol that happens to concatenate the same
// DH outputs in the same order.
var domainSeparator = func() [32]byte {
	var f [32]byte
	for i := range f {
		f[i] = 0xFF
	}
	return f
}()

// IdentityKeyPair is a user's long-lived Curve25519 key pair, doing
// double duty as an X3DH agreement key and (via XEdDSA) a signing key.
type IdentityKeyPair struct {
	Private curve25519.PrivateKey
	Public  curve25519.PublicKey
}

// SignedPrekey is a medium-lived responder key, signed by its owner's
// identity key so an initiator can authenticate it without a separate
// certificate chain.
type SignedPrekey struct {
	Private   curve25519.PrivateKey
	Public    curve25519.PublicKey
	Signature [xeddsa.SignatureSize]byte
}

// OneTimePrekey is a single-use responder key. The private half is held
// by the responder and consumed (never reused) on the first handshake
// that names it.
type OneTimePrekey struct {
	Private curve25519.PrivateKey
	Public  curve25519.PublicKey
}

// PrekeyBundle is the public material a responder publishes so any
// initiator can start a session without the responder being online.
type PrekeyBundle struct {
	IdentityKey     curve25519.PublicKey
	SignedPrekey    curve25519.PublicKey
	PrekeySignature [xeddsa.SignatureSize]byte
	// OneTimePrekey is nil when the responder's OPK pool is exhausted.
	OneTimePrekey *curve25519.PublicKey
	// OneTimePrekeyID identifies which OPK was offered, so the responder
	// can look up and delete the matching private half. Ignored when
	// OneTimePrekey is nil.
	OneTimePrekeyID uint32
}

// InitiatorResult is what a successful InitiateHandshake call produces:
// the derived session root, plus the fields the initiator must place in
// its initial message so the responder can reproduce the same DH
// outputs.
type InitiatorResult struct {
	SessionKey      [32]byte
	EphemeralPublic curve25519.PublicKey
	// UsedOPK reports whether bundle.OneTimePrekey was consumed in the
	// derivation, so the initiator knows whether to include OneTimePrekeyID
	// in the initial message.
	UsedOPK bool
}

// InitiateHandshake verifies bundle's prekey signature, generates a fresh
// ephemeral key from rnd (crypto/rand.Reader if nil), and derives the
// X3DH session root. It never mutates bundle; the caller decides whether
// the offered OPK should be recorded as spent — that is a responder-side
// bookkeeping concern, not this function's.
func InitiateHandshake(bundle PrekeyBundle, initiatorIdentity IdentityKeyPair, rnd io.Reader) (InitiatorResult, error) {
	ok, err := xeddsa.Verify(bundle.IdentityKey, bundle.SignedPrekey[:], bundle.PrekeySignature)
	if err != nil || !ok {
		return InitiatorResult{}, signalerr.ErrBadPrekeySignature
	}

	ephPriv, ephPub, err := curve25519.GenerateKeyPair(rnd)
	if err != nil {
		return InitiatorResult{}, err
	}

	dh1, err := curve25519.DH(initiatorIdentity.Private, bundle.SignedPrekey)
	if err != nil {
		return InitiatorResult{}, err
	}
	dh2, err := curve25519.DH(ephPriv, bundle.IdentityKey)
	if err != nil {
		return InitiatorResult{}, err
	}
	dh3, err := curve25519.DH(ephPriv, bundle.SignedPrekey)
	if err != nil {
		return InitiatorResult{}, err
	}

	ikm := concatIKM(dh1, dh2, dh3)
	usedOPK := false
	if bundle.OneTimePrekey != nil {
		dh4, err := curve25519.DH(ephPriv, *bundle.OneTimePrekey)
		if err != nil {
			return InitiatorResult{}, err
		}
		ikm = concatIKM(dh1, dh2, dh3, dh4)
		usedOPK = true
	}

	sk, err := hkdf.Derive32(ikm, make([]byte, 32), []byte(info))
	if err != nil {
		return InitiatorResult{}, signalerr.ErrDerivationFailed
	}

	return InitiatorResult{
		SessionKey:      sk,
		EphemeralPublic: ephPub,
		UsedOPK:         usedOPK,
	}, nil
}

// OPKLookup resolves an OPK ID sent by an initiator to the matching
// unconsumed private key, and marks it consumed. It returns
// signalerr.ErrUnknownOPK when the ID is unrecognized or already spent.
// Callers implement this against their own OPK storage; the protocol
// itself is storage-agnostic, and the caller MUST delete the OPK before
// this function returns so it cannot be replayed against a second
// initial message.
type OPKLookup func(id uint32) (curve25519.PrivateKey, error)

// CompleteHandshake is the responder side: given the initiator's identity
// public key, ephemeral public key, and (if any) the OPK ID it claims to
// have used, reproduce the same session root the initiator derived.
func CompleteHandshake(
	responderIdentity IdentityKeyPair,
	responderPrekey SignedPrekey,
	initiatorIdentityPublic curve25519.PublicKey,
	initiatorEphemeralPublic curve25519.PublicKey,
	opkID *uint32,
	opkLookup OPKLookup,
) ([32]byte, error) {
	dh1, err := curve25519.DH(responderPrekey.Private, initiatorIdentityPublic)
	if err != nil {
		return [32]byte{}, err
	}
	dh2, err := curve25519.DH(responderIdentity.Private, initiatorEphemeralPublic)
	if err != nil {
		return [32]byte{}, err
	}
	dh3, err := curve25519.DH(responderPrekey.Private, initiatorEphemeralPublic)
	if err != nil {
		return [32]byte{}, err
	}

	ikm := concatIKM(dh1, dh2, dh3)
	if opkID != nil {
		if opkLookup == nil {
			return [32]byte{}, signalerr.ErrMissingPrekey
		}
		opkPriv, err := opkLookup(*opkID)
		if err != nil {
			return [32]byte{}, signalerr.ErrUnknownOPK
		}
		dh4, err := curve25519.DH(opkPriv, initiatorEphemeralPublic)
		if err != nil {
			return [32]byte{}, err
		}
		ikm = concatIKM(dh1, dh2, dh3, dh4)
	}

	sk, err := hkdf.Derive32(ikm, make([]byte, 32), []byte(info))
	if err != nil {
		return [32]byte{}, signalerr.ErrDerivationFailed
	}
	return sk, nil
}

// concatIKM builds F ∥ dh1 ∥ dh2 ∥ dh3 [∥ dh4], the input keying material
// for the session-root HKDF call.
func concatIKM(dhs ...[32]byte) []byte {
	ikm := make([]byte, 0, 32+32*len(dhs))
	ikm = append(ikm, domainSeparator[:]...)
	for _, dh := range dhs {
		ikm = append(ikm, dh[:]...)
	}
	return ikm
}

// AssociatedData builds the AD = IK_A-pub ∥ IK_B-pub blob X3DH binds into
// the first ratchet message's AEAD associated data.
func AssociatedData(initiatorIdentityPublic, responderIdentityPublic curve25519.PublicKey) []byte {
	ad := make([]byte, 0, 64)
	ad = append(ad, initiatorIdentityPublic[:]...)
	ad = append(ad, responderIdentityPublic[:]...)
	return ad
}

// SignPrekey produces the XEdDSA signature a responder attaches to a
// freshly generated signed prekey.
func SignPrekey(identity IdentityKeyPair, prekeyPublic curve25519.PublicKey, rnd io.Reader) ([xeddsa.SignatureSize]byte, error) {
	return xeddsa.Sign(identity.Private, prekeyPublic[:], rnd)
}

// GenerateIdentity draws a fresh long-lived identity key pair.
func GenerateIdentity(rnd io.Reader) (IdentityKeyPair, error) {
	priv, pub, err := curve25519.GenerateKeyPair(rnd)
	if err != nil {
		return IdentityKeyPair{}, err
	}
	return IdentityKeyPair{Private: priv, Public: pub}, nil
}

// GenerateSignedPrekey draws a fresh medium-lived prekey and signs its
// public half under identity.
func GenerateSignedPrekey(identity IdentityKeyPair, rnd io.Reader) (SignedPrekey, error) {
	priv, pub, err := curve25519.GenerateKeyPair(rnd)
	if err != nil {
		return SignedPrekey{}, err
	}
	sig, err := SignPrekey(identity, pub, rnd)
	if err != nil {
		return SignedPrekey{}, err
	}
	return SignedPrekey{Private: priv, Public: pub, Signature: sig}, nil
}

// GenerateOneTimePrekeys draws n single-use prekeys for a responder's OPK
// pool.
func GenerateOneTimePrekeys(n int, rnd io.Reader) ([]OneTimePrekey, error) {
	opks := make([]OneTimePrekey, n)
	for i := 0; i < n; i++ {
		priv, pub, err := curve25519.GenerateKeyPair(rnd)
		if err != nil {
			return nil, err
		}
		opks[i] = OneTimePrekey{Private: priv, Public: pub}
	}
	return opks, nil
}
