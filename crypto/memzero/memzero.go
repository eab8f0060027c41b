// Package memzero provides best-effort erasure of secret byte buffers.
package memzero

import "runtime"

// Bytes zeroes b in place. This cannot guarantee the compiler won't have
// already copied the data elsewhere, but it stops the obvious case: a
// live buffer that's simply gone out of use lingering in memory.
//
//go:noinline
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Array32 zeroes a fixed 32-byte secret in place.
//
//go:noinline
func Array32(b *[32]byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Array64 zeroes a fixed 64-byte secret in place.
//
//go:noinline
func Array64(b *[64]byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
