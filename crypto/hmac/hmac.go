// Package hmac wraps crypto/hmac the way the teacher's crypto/hmac
// package does, kept unchanged since KDF_CK needs exactly this shape.
package hmac

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
)

// Hash returns the HMAC of data under key, using hashFn as the underlying
// hash function (sha256.New if nil).
func Hash(hashFn func() hash.Hash, key, data []byte) []byte {
	if hashFn == nil {
		hashFn = sha256.New
	}
	mac := hmac.New(hashFn, key)
	mac.Write(data)
	return mac.Sum(nil)
}
