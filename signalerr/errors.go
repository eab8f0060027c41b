// Package signalerr collects the sentinel errors shared by the XEdDSA,
// X3DH, and Double Ratchet packages. Centralizing them lets callers use
// errors.Is against a single vocabulary instead of one per package, since
// a ratchet failure and an X3DH failure are both, from the caller's point
// of view, one of these ten kinds.
package signalerr

import "errors"

var (
	// ErrBadLength is returned by the framing decoders when a wire-encoded
	// header, message, prekey bundle, or initial message does not have the
	// expected length or layout.
	ErrBadLength = errors.New("signalerr: bad length")

	// ErrBadPoint is returned when a 32-byte value fails to decode as a
	// curve point.
	ErrBadPoint = errors.New("signalerr: bad point encoding")

	// ErrBadSignature names an XEdDSA signature that fails to verify. No
	// function in this module returns it: xeddsa.Verify reports such a
	// signature as false with a nil error.
	ErrBadSignature = errors.New("signalerr: bad signature")

	// ErrBadPrekeySignature is returned when a signed prekey's signature
	// fails to verify against the claimed identity key.
	ErrBadPrekeySignature = errors.New("signalerr: bad prekey signature")

	// ErrBadProof is returned when a VXEdDSA proof fails to verify.
	ErrBadProof = errors.New("signalerr: bad VRF proof")

	// ErrUnknownOPK is returned when a responder is asked to consume a
	// one-time prekey it does not have (already used, or never issued).
	ErrUnknownOPK = errors.New("signalerr: unknown one-time prekey")

	// ErrMissingPrekey is returned when a responder is asked to complete a
	// handshake that names a one-time prekey but is given no way to look
	// that prekey up.
	ErrMissingPrekey = errors.New("signalerr: missing prekey")

	// ErrDerivationFailed is returned when a key derivation step
	// (Diffie-Hellman or HKDF) produces an unusable output, e.g. the
	// all-zero X25519 contributory-behavior rejection.
	ErrDerivationFailed = errors.New("signalerr: key derivation failed")

	// ErrDecryptFailed is returned when AEAD tag verification fails
	// during a ratchet receive. This is expected during normal operation
	// (forged or stale packets) and is not itself fatal to the session.
	ErrDecryptFailed = errors.New("signalerr: decryption failed")

	// ErrChainTooLong is returned when a receive would have to skip more
	// message keys than the configured cap allows. It is fatal to the
	// session: the caller must re-handshake. The Double Ratchet's Send
	// also returns it when the session has no sending chain yet (a
	// responder that has not received a message); that case clears once
	// the first message is received.
	ErrChainTooLong = errors.New("signalerr: too many skipped messages in chain")
)
