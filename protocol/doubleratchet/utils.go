package doubleratchet

import (
	"crypto/rand"

	"github.com/dtonda2/signal-core/crypto/aead"
	"github.com/dtonda2/signal-core/crypto/curve25519"
	"github.com/dtonda2/signal-core/crypto/hkdf"
	"github.com/dtonda2/signal-core/crypto/hmac"
	"github.com/dtonda2/signal-core/framing"
)

// saltKDFRK and infoMessageNonce are the domain-separation labels this
// package's two HKDF call sites use, each passed as the HKDF info
// argument (kdfRK uses RK itself as the salt); each KDF has its own label.
var (
	saltKDFRK        = []byte("DR-RK")
	infoMessageNonce = []byte("DR-nonce")
)

// generateDH draws a fresh Curve25519 key pair for a DH ratchet step.
func generateDH() (DHPair, error) {
	priv, pub, err := curve25519.GenerateKeyPair(rand.Reader)
	if err != nil {
		return DHPair{}, err
	}
	return DHPair{Priv: priv, Pub: pub}, nil
}

// dh computes the shared secret between one side's private key and the
// peer's public key.
func dh(priv curve25519.PrivateKey, pub curve25519.PublicKey) (RatchetKey, error) {
	secret, err := curve25519.DH(priv, pub)
	if err != nil {
		return RatchetKey{}, err
	}
	return RatchetKey(secret), nil
}

// kdfRK implements KDF_RK(RK, dh_out): HKDF(ikm=dh_out, salt=RK,
// info="DR-RK", 64), split into the new root key and a fresh chain key.
func kdfRK(rk RatchetKey, dhOut RatchetKey) (RatchetKey, RatchetKey, error) {
	buf := make([]byte, 64)
	if err := hkdf.Derive(nil, dhOut[:], rk[:], saltKDFRK, buf); err != nil {
		return RatchetKey{}, RatchetKey{}, err
	}
	var newRK, ck RatchetKey
	copy(newRK[:], buf[:32])
	copy(ck[:], buf[32:])
	return newRK, ck, nil
}

// kdfCK implements KDF_CK(CK) via the HMAC construction: MK = HMAC(CK,
// 0x01), CK' = HMAC(CK, 0x02). This is the construction spec.md's Open
// Question (a) requires picking and documenting; both ends of a session
// must use the same one, and this package is the only place it's called.
func kdfCK(ck RatchetKey) (RatchetKey, MsgKey) {
	mk := hmac.Hash(nil, ck[:], []byte{0x01})
	nextCK := hmac.Hash(nil, ck[:], []byte{0x02})
	var newCK RatchetKey
	var messageKey MsgKey
	copy(newCK[:], nextCK)
	copy(messageKey[:], mk)
	return newCK, messageKey
}

// messageNonce derives the per-message AEAD nonce from the message key
// via a separate HKDF call, per spec.md's Open Question (b): MK is used
// exactly once, so a nonce derived from it can never repeat under a
// fixed key.
func messageNonce(mk MsgKey) ([aead.NonceSize]byte, error) {
	buf := make([]byte, aead.NonceSize)
	if err := hkdf.Derive(nil, mk[:], nil, infoMessageNonce, buf); err != nil {
		return [aead.NonceSize]byte{}, err
	}
	var nonce [aead.NonceSize]byte
	copy(nonce[:], buf)
	return nonce, nil
}

// encrypt seals plaintext under mk, binding associatedData (AD ∥ header
// bytes) into the AEAD tag.
func encrypt(mk MsgKey, plaintext, associatedData []byte) ([]byte, error) {
	nonce, err := messageNonce(mk)
	if err != nil {
		return nil, err
	}
	return aead.Seal([32]byte(mk), nonce, plaintext, associatedData)
}

// decrypt opens a ciphertext produced by encrypt.
func decrypt(mk MsgKey, ciphertext, associatedData []byte) ([]byte, error) {
	nonce, err := messageNonce(mk)
	if err != nil {
		return nil, err
	}
	return aead.Open([32]byte(mk), nonce, ciphertext, associatedData)
}

// concatAD appends the wire encoding of header to associatedData,
// producing the full AEAD associated-data blob spec.md §4.3/§4.4 call
// "AD ∥ H".
func concatAD(associatedData []byte, header Header) []byte {
	headerBytes := framing.EncodeRatchetHeader(header.DHPub, uint32(header.Pn), uint32(header.N))
	return append(append([]byte{}, associatedData...), headerBytes...)
}
