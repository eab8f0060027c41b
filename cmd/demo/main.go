// Command demo is an illustrative CLI exercising identity generation,
// X3DH, and a ratchet message exchange end to end, standing in for the
// teacher's bare cmd/gen_keys binary generalized to a small command tree
// using Ciphera's cmd/ciphera/commands/root.go cobra shape. It is a
// caller of this module, not part of the core: spec.md §6 is explicit
// that the core itself owns no CLI.
package main

import (
	"fmt"
	"os"

	"github.com/dtonda2/signal-core/cmd/demo/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
