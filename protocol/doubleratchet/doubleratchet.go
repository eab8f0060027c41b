package doubleratchet

import (
	"github.com/dtonda2/signal-core/crypto/curve25519"
	"github.com/dtonda2/signal-core/crypto/memzero"
)

const (
	// MaxSkipPerChain bounds how many message keys a single receive call
	// will derive and cache while catching up to a later message index
	// within one DH ratchet epoch.
	MaxSkipPerChain = 1000

	// MaxSkipSessions bounds how many distinct past DHr values keep their
	// skipped-key entries around; older epochs are evicted first. This
	// is spec.md §4.4.5's "oldest entries are evicted" policy, chosen
	// over the alternative of failing outright on overflow, grounded on
	// Ciphera's ratchet.go skipUntil eviction loop.
	MaxSkipSessions = 5
)

// DoubleRatchet is the mutable, single-owner state machine spec.md §9
// calls for: a session endpoint's ratchet state plus the operations that
// advance it.
type DoubleRatchet struct {
	CurrentState *State
}

func newDoubleRatchet(s *State) *DoubleRatchet {
	if s.MkSkipped == nil {
		s.MkSkipped = make(map[MkSkippedKey]*MsgKey)
	}
	return &DoubleRatchet{CurrentState: s}
}

// InitAlice initializes a session for the initiator: given the X3DH
// session root and the responder's signed-prekey public key (serving as
// the initial DHr), it runs the first DH ratchet half-step immediately
// so the initiator's first Send has a sending chain ready.
func InitAlice(sk RatchetKey, responderDHPub curve25519.PublicKey) (*DoubleRatchet, error) {
	dhs, err := generateDH()
	if err != nil {
		return nil, err
	}

	dhOut, err := dh(dhs.Priv, responderDHPub)
	if err != nil {
		return nil, err
	}
	rk, cks, err := kdfRK(sk, dhOut)
	if err != nil {
		return nil, err
	}

	dhr := responderDHPub
	return newDoubleRatchet(&State{
		Dhs: dhs,
		Dhr: &dhr,
		Rk:  rk,
		Cks: &cks,
	}), nil
}

// InitBob initializes a session for the responder: given the X3DH
// session root and its own signed-prekey pair (serving as the initial
// DHs), it leaves both chain keys unset. The first inbound message
// triggers the responder's first DH ratchet step, per spec.md §4.4.2.
func InitBob(sk RatchetKey, ownDHPair DHPair) *DoubleRatchet {
	return newDoubleRatchet(&State{
		Dhs: ownDHPair,
		Rk:  sk,
	})
}

// Send performs a symmetric-key ratchet step and encrypts plaintext,
// returning the header the peer needs to decrypt it. associatedData is
// prepended to the wire-encoded header to form the AEAD associated data.
// It returns ErrChainTooLong when no sending chain exists yet, as for a
// responder that has not received its first message.
func (dr *DoubleRatchet) Send(associatedData, plaintext []byte) (Header, []byte, error) {
	st := dr.CurrentState
	if st.Cks == nil {
		return Header{}, nil, ErrChainTooLong
	}

	newCK, mk := kdfCK(*st.Cks)
	st.Cks = &newCK

	header := Header{DHPub: st.Dhs.Pub, Pn: st.Pn, N: st.Ns}
	st.Ns++

	ct, err := encrypt(mk, plaintext, concatAD(associatedData, header))
	memzero.Array32((*[32]byte)(&mk))
	if err != nil {
		return Header{}, nil, err
	}
	return header, ct, nil
}

// Recv decrypts a message given its header and ciphertext. On any error
// the session state is left unchanged, matching spec.md §7's requirement
// that a failed receive not mutate state.
func (dr *DoubleRatchet) Recv(associatedData []byte, header Header, ciphertext []byte) ([]byte, error) {
	if pt, ok, err := dr.trySkipped(header, ciphertext, associatedData); err != nil {
		return nil, err
	} else if ok {
		return pt, nil
	}

	next := *dr.CurrentState
	next.MkSkipped = cloneSkipped(dr.CurrentState.MkSkipped)
	next.epochOrder = append([]curve25519.PublicKey(nil), dr.CurrentState.epochOrder...)
	incomingEpoch := Header{DHPub: header.DHPub}
	currentEpoch := next.Dhr != nil && incomingEpoch.Equals(Header{DHPub: *next.Dhr})
	if !currentEpoch {
		if next.Dhr != nil {
			if err := skipMessageKeys(&next, header.Pn); err != nil {
				return nil, err
			}
		}
		if err := dhRatchetStep(&next, header.DHPub); err != nil {
			return nil, err
		}
	}

	if err := skipMessageKeys(&next, header.N); err != nil {
		return nil, err
	}

	newCK, mk := kdfCK(*next.Ckr)
	next.Ckr = &newCK
	next.Nr++

	pt, err := decrypt(mk, ciphertext, concatAD(associatedData, header))
	memzero.Array32((*[32]byte)(&mk))
	if err != nil {
		return nil, err
	}

	*dr.CurrentState = next
	return pt, nil
}

// trySkipped looks up and consumes a previously skipped message key for
// (header.DHPub, header.N), if one exists. The entry is only removed from
// the store once decryption succeeds, so a forged ciphertext against a
// valid skipped-key index does not burn the real key.
func (dr *DoubleRatchet) trySkipped(header Header, ciphertext, associatedData []byte) ([]byte, bool, error) {
	key := MkSkippedKey{RatchetPub: header.DHPub, N: header.N}
	mk, ok := dr.CurrentState.MkSkipped[key]
	if !ok {
		return nil, false, nil
	}
	pt, err := decrypt(*mk, ciphertext, concatAD(associatedData, header))
	if err != nil {
		return nil, false, err
	}
	delete(dr.CurrentState.MkSkipped, key)
	memzero.Array32((*[32]byte)(mk))
	return pt, true, nil
}

// cloneSkipped copies a skipped-key map, including the pointed-to keys,
// so mutating the copy (or memzeroing an entry consumed from it) never
// touches the map it was cloned from.
func cloneSkipped(m map[MkSkippedKey]*MsgKey) map[MkSkippedKey]*MsgKey {
	out := make(map[MkSkippedKey]*MsgKey, len(m))
	for k, v := range m {
		copied := *v
		out[k] = &copied
	}
	return out
}

// skipMessageKeys derives and stores message keys in the current receive
// chain from st.Nr up to (not including) until, enforcing MaxSkipPerChain
// and evicting the oldest retained epoch if this is a new one.
func skipMessageKeys(st *State, until MsgIndex) error {
	if st.Ckr == nil {
		return nil
	}
	if st.Nr+MaxSkipPerChain < until {
		return ErrChainTooLong
	}

	epoch := *st.Dhr
	registerEpoch(st, epoch)

	for st.Nr < until {
		newCK, mk := kdfCK(*st.Ckr)
		st.Ckr = &newCK
		st.MkSkipped[MkSkippedKey{RatchetPub: epoch, N: st.Nr}] = &mk
		st.Nr++
	}
	return nil
}

// registerEpoch records epoch as the most recently seen DHr value and
// evicts the oldest tracked epoch's skipped keys once more than
// MaxSkipSessions distinct epochs have been seen.
func registerEpoch(st *State, epoch curve25519.PublicKey) {
	for _, e := range st.epochOrder {
		if e == epoch {
			return
		}
	}
	st.epochOrder = append(st.epochOrder, epoch)
	if len(st.epochOrder) <= MaxSkipSessions {
		return
	}
	oldest := st.epochOrder[0]
	st.epochOrder = st.epochOrder[1:]
	for k := range st.MkSkipped {
		if k.RatchetPub == oldest {
			delete(st.MkSkipped, k)
		}
	}
}

// dhRatchetStep performs a full DH ratchet step on receipt of a new peer
// ratchet public key: it advances the receive chain from the old DHs,
// then generates a fresh DHs and advances the send chain to match.
func dhRatchetStep(st *State, newDhr curve25519.PublicKey) error {
	st.Pn = st.Ns
	st.Ns = 0
	st.Nr = 0
	st.Dhr = &newDhr

	dhOut, err := dh(st.Dhs.Priv, *st.Dhr)
	if err != nil {
		return err
	}
	rk, ckr, err := kdfRK(st.Rk, dhOut)
	if err != nil {
		return err
	}
	st.Rk = rk
	st.Ckr = &ckr

	newDhs, err := generateDH()
	if err != nil {
		return err
	}
	st.Dhs = newDhs

	dhOut2, err := dh(st.Dhs.Priv, *st.Dhr)
	if err != nil {
		return err
	}
	rk2, cks, err := kdfRK(st.Rk, dhOut2)
	if err != nil {
		return err
	}
	st.Rk = rk2
	st.Cks = &cks
	return nil
}
