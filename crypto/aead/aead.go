// Package aead provides the AES-256-GCM authenticated encryption spec.md
// §4.1 fixes as the ratchet's message cipher, replacing the teacher's
// CBC+PKCS7+HMAC construction with a single AEAD call.
package aead

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/dtonda2/signal-core/signalerr"
)

// KeySize is the AES-256 key size in bytes.
const KeySize = 32

// NonceSize is the GCM nonce size in bytes.
const NonceSize = 12

// Overhead is the GCM authentication tag size in bytes appended to every
// ciphertext.
const Overhead = 16

// Seal encrypts and authenticates plaintext under key and nonce, binding
// associatedData (typically the wire-encoded ratchet header) into the
// tag without encrypting it.
func Seal(key [KeySize]byte, nonce [NonceSize]byte, plaintext, associatedData []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce[:], plaintext, associatedData), nil
}

// Open decrypts and authenticates a ciphertext produced by Seal, returning
// signalerr.ErrDecryptFailed if the tag does not verify.
func Open(key [KeySize]byte, nonce [NonceSize]byte, ciphertext, associatedData []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce[:], ciphertext, associatedData)
	if err != nil {
		return nil, signalerr.ErrDecryptFailed
	}
	return plaintext, nil
}

func newGCM(key [KeySize]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
