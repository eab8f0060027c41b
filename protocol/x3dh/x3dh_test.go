package x3dh

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtonda2/signal-core/crypto/curve25519"
)

func newIdentity(t *testing.T) IdentityKeyPair {
	t.Helper()
	priv, pub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)
	return IdentityKeyPair{Private: priv, Public: pub}
}

func TestHandshakeAgreementWithOneTimePrekey(t *testing.T) {
	responder := newIdentity(t)
	initiator := newIdentity(t)

	spkPriv, spkPub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)
	sig, err := SignPrekey(responder, spkPub, rand.Reader)
	assert.NoError(t, err)

	opkPriv, opkPub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)

	bundle := PrekeyBundle{
		IdentityKey:     responder.Public,
		SignedPrekey:    spkPub,
		PrekeySignature: sig,
		OneTimePrekey:   &opkPub,
		OneTimePrekeyID: 7,
	}

	result, err := InitiateHandshake(bundle, initiator, rand.Reader)
	assert.NoError(t, err)
	assert.True(t, result.UsedOPK)

	opkID := bundle.OneTimePrekeyID
	spent := false
	responderKey, err := CompleteHandshake(
		responder,
		SignedPrekey{Private: spkPriv, Public: spkPub, Signature: sig},
		initiator.Public,
		result.EphemeralPublic,
		&opkID,
		func(id uint32) (curve25519.PrivateKey, error) {
			assert.Equal(t, opkID, id)
			spent = true
			return opkPriv, nil
		},
	)
	assert.NoError(t, err)
	assert.True(t, spent)
	assert.Equal(t, result.SessionKey, responderKey)
}

func TestHandshakeAgreementWithoutOneTimePrekey(t *testing.T) {
	responder := newIdentity(t)
	initiator := newIdentity(t)

	spkPriv, spkPub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)
	sig, err := SignPrekey(responder, spkPub, rand.Reader)
	assert.NoError(t, err)

	bundle := PrekeyBundle{
		IdentityKey:     responder.Public,
		SignedPrekey:    spkPub,
		PrekeySignature: sig,
	}

	result, err := InitiateHandshake(bundle, initiator, rand.Reader)
	assert.NoError(t, err)
	assert.False(t, result.UsedOPK)

	responderKey, err := CompleteHandshake(
		responder,
		SignedPrekey{Private: spkPriv, Public: spkPub, Signature: sig},
		initiator.Public,
		result.EphemeralPublic,
		nil,
		nil,
	)
	assert.NoError(t, err)
	assert.Equal(t, result.SessionKey, responderKey)
}

func TestInitiateHandshakeRejectsBadPrekeySignature(t *testing.T) {
	responder := newIdentity(t)
	initiator := newIdentity(t)

	_, spkPub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)
	sig, err := SignPrekey(responder, spkPub, rand.Reader)
	assert.NoError(t, err)
	sig[0] ^= 0xFF

	bundle := PrekeyBundle{
		IdentityKey:     responder.Public,
		SignedPrekey:    spkPub,
		PrekeySignature: sig,
	}

	_, err = InitiateHandshake(bundle, initiator, rand.Reader)
	assert.Error(t, err)
}

func TestGenerateIdentityAndSignedPrekeyAgreeThroughHandshake(t *testing.T) {
	responder, err := GenerateIdentity(rand.Reader)
	assert.NoError(t, err)
	initiator, err := GenerateIdentity(rand.Reader)
	assert.NoError(t, err)

	spk, err := GenerateSignedPrekey(responder, rand.Reader)
	assert.NoError(t, err)

	opks, err := GenerateOneTimePrekeys(3, rand.Reader)
	assert.NoError(t, err)
	assert.Len(t, opks, 3)

	bundle := PrekeyBundle{
		IdentityKey:     responder.Public,
		SignedPrekey:    spk.Public,
		PrekeySignature: spk.Signature,
		OneTimePrekey:   &opks[0].Public,
		OneTimePrekeyID: 0,
	}

	result, err := InitiateHandshake(bundle, initiator, rand.Reader)
	assert.NoError(t, err)

	opkID := uint32(0)
	responderKey, err := CompleteHandshake(
		responder,
		spk,
		initiator.Public,
		result.EphemeralPublic,
		&opkID,
		func(id uint32) (curve25519.PrivateKey, error) { return opks[0].Private, nil },
	)
	assert.NoError(t, err)
	assert.Equal(t, result.SessionKey, responderKey)
}

func TestCompleteHandshakeRejectsUnknownOPK(t *testing.T) {
	responder := newIdentity(t)
	initiator := newIdentity(t)

	spkPriv, spkPub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)
	sig, err := SignPrekey(responder, spkPub, rand.Reader)
	assert.NoError(t, err)

	_, ephPub, err := curve25519.GenerateKeyPair(rand.Reader)
	assert.NoError(t, err)

	opkID := uint32(99)
	_, err = CompleteHandshake(
		responder,
		SignedPrekey{Private: spkPriv, Public: spkPub, Signature: sig},
		initiator.Public,
		ephPub,
		&opkID,
		func(id uint32) (curve25519.PrivateKey, error) {
			return curve25519.PrivateKey{}, assert.AnError
		},
	)
	assert.Error(t, err)
}
