package commands

import (
	"github.com/spf13/cobra"

	"github.com/dtonda2/signal-core/logging"
)

var logger = logging.New()

// Execute builds and runs the demo command tree.
func Execute() error {
	root := &cobra.Command{
		Use:   "demo",
		Short: "Exercises identity generation, X3DH, and the ratchet end to end",
	}
	root.AddCommand(identityCmd(), handshakeCmd(), conversationCmd())
	return root.Execute()
}
