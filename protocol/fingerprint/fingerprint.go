// Package fingerprint computes a Signal-style safety-number digest of an
// identity public key, kept nearly verbatim from the teacher's
// protocol/fingerprint package and retargeted from the Edwards public
// key type to the Curve25519 one used throughout this module.
package fingerprint

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/dtonda2/signal-core/crypto/curve25519"
)

// Digits is the number of decimal digits in a rendered fingerprint,
// grouped into six chunks of five as Signal's own app does.
const Digits = 30

// Fingerprint stretches pubKey concatenated with a caller-supplied
// identifier (e.g. a username or phone number) through 5200 rounds of
// SHA-512, then formats the first 30 bytes of the final digest as 30
// decimal digits.
func Fingerprint(pubKey curve25519.PublicKey, identifier []byte) [Digits]int {
	digest := append(append([]byte{}, pubKey[:]...), identifier...)
	h := sha512.New()
	for i := 0; i < 5200; i++ {
		h.Write(digest)
		digest = h.Sum(nil)
		h.Reset()
	}

	var result [30]byte
	copy(result[:], digest[:30])

	var out [Digits]int
	for i := 0; i < 6; i++ {
		chunk := result[i*5 : (i+1)*5]
		num := binary.BigEndian.Uint64(append([]byte{0, 0, 0}, chunk...)) % 100000
		for j := 4; j >= 0; j-- {
			out[i*5+j] = int(num % 10)
			num /= 10
		}
	}
	return out
}
