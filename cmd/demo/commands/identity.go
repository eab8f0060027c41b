package commands

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtonda2/signal-core/crypto/curve25519"
	"github.com/dtonda2/signal-core/protocol/fingerprint"
)

func identityCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Generate an identity key pair and print its fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, pub, err := curve25519.GenerateKeyPair(rand.Reader)
			if err != nil {
				return err
			}
			digits := fingerprint.Fingerprint(pub, []byte(user))

			fmt.Printf("private: %x\n", priv)
			fmt.Printf("public:  %x\n", pub)
			fmt.Print("fingerprint: ")
			for i, d := range digits {
				if i > 0 && i%5 == 0 {
					fmt.Print(" ")
				}
				fmt.Print(d)
			}
			fmt.Println()
			logger.WithField("public_prefix", pub[:4]).Info("generated identity")
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "demo-user", "identifier folded into the fingerprint")
	return cmd
}
