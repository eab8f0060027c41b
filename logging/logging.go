// Package logging is the structured-logging injection point for session
// and ratchet diagnostics, grounded on the teacher's own logrus.New()
// package-level logger convention (server/server.go, cmd/server/main.go)
// carried over even though the WebSocket server that originally held it
// is out of scope for this module.
//
// The package builds a logger (New) and secret-free log fields
// (SessionFields). The protocol packages take no logger and do not log;
// cmd/demo is the only caller that logs. Nothing here ever logs key
// material, matching spec.md §5's "keys MUST NOT be logged".
package logging

import "github.com/sirupsen/logrus"

// New returns a logrus.Logger configured for this module's diagnostics:
// text formatting, full timestamps, and logrus's default level (Info).
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

// SessionFields builds the log fields safe to attach to a ratchet
// session event: the epoch's public key fingerprint bytes are fine to
// log since they're public; RK/CK/MK never appear here.
func SessionFields(dhPub [32]byte, ns, nr uint32) logrus.Fields {
	return logrus.Fields{
		"dh_pub_prefix": dhPub[:4],
		"ns":            ns,
		"nr":            nr,
	}
}
