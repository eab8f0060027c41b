package commands

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtonda2/signal-core/crypto/curve25519"
	"github.com/dtonda2/signal-core/protocol/x3dh"
)

func handshakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handshake",
		Short: "Run an X3DH handshake between two freshly generated identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			responderIdentity, err := x3dh.GenerateIdentity(rand.Reader)
			if err != nil {
				return err
			}
			initiatorIdentity, err := x3dh.GenerateIdentity(rand.Reader)
			if err != nil {
				return err
			}

			spk, err := x3dh.GenerateSignedPrekey(responderIdentity, rand.Reader)
			if err != nil {
				return err
			}

			opks, err := x3dh.GenerateOneTimePrekeys(1, rand.Reader)
			if err != nil {
				return err
			}

			bundle := x3dh.PrekeyBundle{
				IdentityKey:     responderIdentity.Public,
				SignedPrekey:    spk.Public,
				PrekeySignature: spk.Signature,
				OneTimePrekey:   &opks[0].Public,
				OneTimePrekeyID: 1,
			}

			result, err := x3dh.InitiateHandshake(bundle, initiatorIdentity, rand.Reader)
			if err != nil {
				return err
			}

			opkID := bundle.OneTimePrekeyID
			responderKey, err := x3dh.CompleteHandshake(
				responderIdentity,
				spk,
				initiatorIdentity.Public,
				result.EphemeralPublic,
				&opkID,
				func(id uint32) (curve25519.PrivateKey, error) { return opks[0].Private, nil },
			)
			if err != nil {
				return err
			}

			fmt.Printf("initiator session key: %x\n", result.SessionKey)
			fmt.Printf("responder session key: %x\n", responderKey)
			fmt.Printf("agree: %v\n", result.SessionKey == responderKey)
			logger.Info("completed X3DH handshake")
			return nil
		},
	}
}
