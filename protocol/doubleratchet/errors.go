package doubleratchet

import "github.com/dtonda2/signal-core/signalerr"

// These are local aliases for the shared sentinel vocabulary, kept so
// existing call sites in this package read as errors about ratchet
// state specifically rather than the module's error taxonomy in general.
var (
	ErrChainTooLong  = signalerr.ErrChainTooLong
	ErrDecryptFailed = signalerr.ErrDecryptFailed
)
