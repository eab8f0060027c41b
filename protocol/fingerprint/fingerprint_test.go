package fingerprint

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtonda2/signal-core/crypto/curve25519"
)

func TestFingerprintIsDeterministic(t *testing.T) {
	_, pub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)

	a := Fingerprint(pub, []byte("alice"))
	b := Fingerprint(pub, []byte("alice"))
	assert.Equal(t, a, b)
}

func TestFingerprintDiffersByIdentifier(t *testing.T) {
	_, pub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)

	a := Fingerprint(pub, []byte("alice"))
	b := Fingerprint(pub, []byte("bob"))
	assert.NotEqual(t, a, b)
}

func TestFingerprintProducesThirtyDigits(t *testing.T) {
	_, pub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)

	digits := Fingerprint(pub, []byte("carol"))
	assert.Len(t, digits, 30)
	for _, d := range digits {
		assert.GreaterOrEqual(t, d, 0)
		assert.LessOrEqual(t, d, 9)
	}
}
