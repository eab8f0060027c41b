package curve25519

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyPairAndDH(t *testing.T) {
	aPriv, aPub, err := GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)
	bPriv, bPub, err := GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)

	secretA, err := DH(aPriv, bPub)
	assert.NoError(t, err)
	secretB, err := DH(bPriv, aPub)
	assert.NoError(t, err)

	assert.Equal(t, secretA, secretB)
}

func TestPublicIsDeterministic(t *testing.T) {
	priv, pub, err := GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)

	again, err := priv.Public()
	assert.NoError(t, err)
	assert.Equal(t, pub, again)
}

func TestClampingAppliesRFC7748Bits(t *testing.T) {
	priv, _, err := GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)

	assert.Equal(t, byte(0), priv[0]&0x07)
	assert.Equal(t, byte(0), priv[31]&0x80)
	assert.Equal(t, byte(0x40), priv[31]&0x40)
}
