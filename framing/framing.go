// Package framing defines the fixed, byte-exact wire layouts of ratchet
// headers, ratchet messages, prekey bundles, and initial messages. It
// generalizes the teacher's protocol/doubleratchet Header.Marshal/
// UnmarshalHeader (JSON-based) and common/types.go's MessageBundle
// struct into the length-prefixed binary encodings the specification
// requires for cross-language wire compatibility, using network
// (big-endian) byte order throughout as the teacher's own binary.Write
// call sites (protocol/x3dh test fixtures aside) always do.
//
// This package depends only on crypto/curve25519 and crypto/xeddsa for
// field sizes; it knows nothing about session or handshake state, so
// that protocol/x3dh and protocol/doubleratchet can both depend on it
// without a cycle.
package framing

import (
	"encoding/binary"

	"github.com/dtonda2/signal-core/crypto/curve25519"
	"github.com/dtonda2/signal-core/crypto/xeddsa"
	"github.com/dtonda2/signal-core/signalerr"
)

// RatchetHeaderSize is the fixed wire size of a ratchet header: a
// 32-byte public key plus two big-endian uint32 counters.
const RatchetHeaderSize = curve25519.KeySize + 4 + 4

// EncodeRatchetHeader lays out a ratchet header as dh_pub[32] ∥
// prev_chain_len(u32) ∥ msg_number(u32), per spec.md §4.5.
func EncodeRatchetHeader(dhPub curve25519.PublicKey, prevChainLen, msgNumber uint32) []byte {
	out := make([]byte, RatchetHeaderSize)
	copy(out[0:32], dhPub[:])
	binary.BigEndian.PutUint32(out[32:36], prevChainLen)
	binary.BigEndian.PutUint32(out[36:40], msgNumber)
	return out
}

// DecodeRatchetHeader parses a header produced by EncodeRatchetHeader.
func DecodeRatchetHeader(b []byte) (dhPub curve25519.PublicKey, prevChainLen, msgNumber uint32, err error) {
	if len(b) != RatchetHeaderSize {
		return curve25519.PublicKey{}, 0, 0, signalerr.ErrBadLength
	}
	copy(dhPub[:], b[0:32])
	prevChainLen = binary.BigEndian.Uint32(b[32:36])
	msgNumber = binary.BigEndian.Uint32(b[36:40])
	return dhPub, prevChainLen, msgNumber, nil
}

// EncodeRatchetMessage concatenates an encoded header with its AEAD
// ciphertext (tag included), the two fields of a RatchetMessage.
func EncodeRatchetMessage(headerBytes, ciphertext []byte) []byte {
	out := make([]byte, 0, len(headerBytes)+len(ciphertext))
	out = append(out, headerBytes...)
	out = append(out, ciphertext...)
	return out
}

// DecodeRatchetMessage splits a wire ratchet message back into its fixed
// header and variable-length ciphertext.
func DecodeRatchetMessage(b []byte) (headerBytes, ciphertext []byte, err error) {
	if len(b) < RatchetHeaderSize {
		return nil, nil, signalerr.ErrBadLength
	}
	return b[:RatchetHeaderSize], b[RatchetHeaderSize:], nil
}

// opkPresent/opkAbsent are the sentinel bytes prefixing the optional
// one-time-prekey fields of a bundle or initial message.
const (
	opkAbsent  byte = 0x00
	opkPresent byte = 0x01
)

// EncodePrekeyBundle lays out identity_key[32] ∥ signed_prekey[32] ∥
// prekey_sig[64] ∥ opk_present(u8) ∥ [opk_id(u32) ∥ opk_pub[32]].
func EncodePrekeyBundle(identityKey, signedPrekey curve25519.PublicKey, sig [xeddsa.SignatureSize]byte, opk *curve25519.PublicKey, opkID uint32) []byte {
	size := 32 + 32 + xeddsa.SignatureSize + 1
	if opk != nil {
		size += 4 + 32
	}
	out := make([]byte, 0, size)
	out = append(out, identityKey[:]...)
	out = append(out, signedPrekey[:]...)
	out = append(out, sig[:]...)
	if opk == nil {
		out = append(out, opkAbsent)
		return out
	}
	out = append(out, opkPresent)
	var idBuf [4]byte
	binary.BigEndian.PutUint32(idBuf[:], opkID)
	out = append(out, idBuf[:]...)
	out = append(out, opk[:]...)
	return out
}

// DecodedPrekeyBundle is the parsed form of EncodePrekeyBundle's output.
type DecodedPrekeyBundle struct {
	IdentityKey     curve25519.PublicKey
	SignedPrekey    curve25519.PublicKey
	PrekeySignature [xeddsa.SignatureSize]byte
	OneTimePrekey   *curve25519.PublicKey
	OneTimePrekeyID uint32
}

// DecodePrekeyBundle parses a bundle produced by EncodePrekeyBundle.
func DecodePrekeyBundle(b []byte) (DecodedPrekeyBundle, error) {
	minSize := 32 + 32 + xeddsa.SignatureSize + 1
	if len(b) < minSize {
		return DecodedPrekeyBundle{}, signalerr.ErrBadLength
	}
	var out DecodedPrekeyBundle
	off := 0
	copy(out.IdentityKey[:], b[off:off+32])
	off += 32
	copy(out.SignedPrekey[:], b[off:off+32])
	off += 32
	copy(out.PrekeySignature[:], b[off:off+xeddsa.SignatureSize])
	off += xeddsa.SignatureSize

	flag := b[off]
	off++
	if flag == opkAbsent {
		if off != len(b) {
			return DecodedPrekeyBundle{}, signalerr.ErrBadLength
		}
		return out, nil
	}
	if flag != opkPresent {
		return DecodedPrekeyBundle{}, signalerr.ErrBadLength
	}
	if len(b)-off != 4+32 {
		return DecodedPrekeyBundle{}, signalerr.ErrBadLength
	}
	out.OneTimePrekeyID = binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	var opk curve25519.PublicKey
	copy(opk[:], b[off:off+32])
	out.OneTimePrekey = &opk
	return out, nil
}

// EncodeInitialMessage lays out initiator_ik[32] ∥ initiator_ek[32] ∥
// opk_present(u8) ∥ [opk_id(u32)] ∥ ciphertext_len(u32) ∥ ciphertext, the
// first message of an X3DH-initiated session.
func EncodeInitialMessage(initiatorIK, initiatorEK curve25519.PublicKey, opkID *uint32, ciphertext []byte) []byte {
	size := 32 + 32 + 1 + 4 + len(ciphertext)
	if opkID != nil {
		size += 4
	}
	out := make([]byte, 0, size)
	out = append(out, initiatorIK[:]...)
	out = append(out, initiatorEK[:]...)
	if opkID == nil {
		out = append(out, opkAbsent)
	} else {
		out = append(out, opkPresent)
		var idBuf [4]byte
		binary.BigEndian.PutUint32(idBuf[:], *opkID)
		out = append(out, idBuf[:]...)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(ciphertext)))
	out = append(out, lenBuf[:]...)
	out = append(out, ciphertext...)
	return out
}

// DecodedInitialMessage is the parsed form of EncodeInitialMessage's
// output.
type DecodedInitialMessage struct {
	InitiatorIK curve25519.PublicKey
	InitiatorEK curve25519.PublicKey
	OneTimePrekeyID *uint32
	Ciphertext      []byte
}

// DecodeInitialMessage parses a message produced by EncodeInitialMessage.
func DecodeInitialMessage(b []byte) (DecodedInitialMessage, error) {
	if len(b) < 32+32+1 {
		return DecodedInitialMessage{}, signalerr.ErrBadLength
	}
	var out DecodedInitialMessage
	off := 0
	copy(out.InitiatorIK[:], b[off:off+32])
	off += 32
	copy(out.InitiatorEK[:], b[off:off+32])
	off += 32

	flag := b[off]
	off++
	if flag == opkPresent {
		if len(b)-off < 4 {
			return DecodedInitialMessage{}, signalerr.ErrBadLength
		}
		id := binary.BigEndian.Uint32(b[off : off+4])
		out.OneTimePrekeyID = &id
		off += 4
	} else if flag != opkAbsent {
		return DecodedInitialMessage{}, signalerr.ErrBadLength
	}

	if len(b)-off < 4 {
		return DecodedInitialMessage{}, signalerr.ErrBadLength
	}
	ctLen := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	if uint32(len(b)-off) != ctLen {
		return DecodedInitialMessage{}, signalerr.ErrBadLength
	}
	out.Ciphertext = append([]byte{}, b[off:]...)
	return out, nil
}
