package commands

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtonda2/signal-core/crypto/curve25519"
	"github.com/dtonda2/signal-core/logging"
	"github.com/dtonda2/signal-core/protocol/doubleratchet"
)

func conversationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conversation",
		Short: "Run a ping-pong ratchet exchange after a shared session key",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sk doubleratchet.RatchetKey
			if _, err := rand.Read(sk[:]); err != nil {
				return err
			}

			bobPriv, bobPub, err := curve25519.GenerateKeyPair(rand.Reader)
			if err != nil {
				return err
			}

			alice, err := doubleratchet.InitAlice(sk, bobPub)
			if err != nil {
				return err
			}
			bob := doubleratchet.InitBob(sk, doubleratchet.DHPair{Priv: bobPriv, Pub: bobPub})

			ad := []byte("demo-associated-data")

			header, ct, err := alice.Send(ad, []byte("ping"))
			if err != nil {
				return err
			}
			pt, err := bob.Recv(ad, header, ct)
			if err != nil {
				return err
			}
			fmt.Printf("bob received: %q\n", pt)
			logger.WithFields(logging.SessionFields(bob.CurrentState.Dhs.Pub, uint32(bob.CurrentState.Ns), uint32(bob.CurrentState.Nr))).Info("bob advanced ratchet")

			header, ct, err = bob.Send(ad, []byte("pong"))
			if err != nil {
				return err
			}
			pt, err = alice.Recv(ad, header, ct)
			if err != nil {
				return err
			}
			fmt.Printf("alice received: %q\n", pt)
			logger.WithFields(logging.SessionFields(alice.CurrentState.Dhs.Pub, uint32(alice.CurrentState.Ns), uint32(alice.CurrentState.Nr))).Info("alice advanced ratchet")

			logger.Info("completed ratchet exchange")
			return nil
		},
	}
}
