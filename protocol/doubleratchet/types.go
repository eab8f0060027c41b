// Package doubleratchet implements the Double Ratchet stateful messaging
// protocol: a Diffie-Hellman ratchet layered over a symmetric chain
// ratchet, with a bounded skipped-message-key store for out-of-order
// delivery. It generalizes the teacher's protocol/doubleratchet package
// (State/DoubleRatchet split, InitAlice/InitBob naming, skipMessageKeys/
// trySkippedMessageKeys helper split) from its Edwards key pair and
// JSON-framed header onto the Curve25519 keys and binary framing this
// module uses everywhere else, and folds in the exported State shape its
// own tests already assumed.
package doubleratchet

import "github.com/dtonda2/signal-core/crypto/curve25519"

// MsgIndex counts messages within one sending or receiving chain.
type MsgIndex uint32

// MsgKey is a one-time AEAD key derived by the chain ratchet.
type MsgKey [32]byte

// RatchetKey is a 32-byte root or chain key.
type RatchetKey [32]byte

// Header identifies where a ciphertext falls in the sender's ratchet:
// which DH ratchet public key was current, how many messages the
// previous sending chain contained, and this message's index in the
// current chain.
type Header struct {
	DHPub curve25519.PublicKey
	Pn    MsgIndex
	N     MsgIndex
}

// Equals reports whether h and other name the same position in the
// ratchet.
func (h Header) Equals(other Header) bool {
	return h.DHPub == other.DHPub && h.Pn == other.Pn && h.N == other.N
}

// DHPair is a Curve25519 key pair used as one side of the DH ratchet.
type DHPair struct {
	Priv curve25519.PrivateKey
	Pub  curve25519.PublicKey
}

// MkSkippedKey identifies one entry in the skipped-message-key store: the
// sender ratchet public key that was current when the key was derived,
// and that message's index within its chain.
type MkSkippedKey struct {
	RatchetPub curve25519.PublicKey
	N          MsgIndex
}

// State holds everything one session endpoint owns: the current DH
// ratchet pair, the peer's current DH public key, the root and chain
// keys, per-direction message counters, and skipped message keys
// retained across DH ratchet epochs so a late message can still be
// decrypted after the chain has moved on.
type State struct {
	Dhs DHPair
	Dhr *curve25519.PublicKey

	Rk  RatchetKey
	Cks *RatchetKey
	Ckr *RatchetKey

	Ns, Nr, Pn MsgIndex

	// MkSkipped maps a (ratchet public key, message index) pair to the
	// message key skipped at that position.
	MkSkipped map[MkSkippedKey]*MsgKey

	// epochOrder records the distinct ratchet public keys that have
	// appeared as Dhr, oldest first, bounded to MaxSkipSessions entries;
	// it drives eviction of the oldest epoch's skipped keys on overflow.
	epochOrder []curve25519.PublicKey
}
