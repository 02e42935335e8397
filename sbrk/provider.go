// Package sbrk provides the external heap-growth collaborator the heap
// package depends on: something that owns a contiguous, monotonically
// growable byte region and hands out more of it on request.
//
// A real sbrk(2) call never moves memory it already handed out; growth
// only ever extends the region at its high end. The implementations in
// this package honor the same contract even though, internally, a Go
// slice backing that region may be reallocated to a new address on
// growth — callers never hold raw pointers into the region, only
// offsets obtained from Bytes(), so a reallocation is invisible to them
// as long as they re-fetch Bytes() after every Sbrk call.
package sbrk

import "errors"

// ErrOutOfMemory is returned when a provider cannot grow the managed
// region further. It is the Go-idiomatic replacement for the -1
// sentinel a C sbrk() implementation would return.
var ErrOutOfMemory = errors.New("sbrk: out of memory")

// Provider is the sbrk collaborator the heap package grows its managed
// region through: something that extends that region by a requested
// byte count and reports the region's current bounds.
type Provider interface {
	// Sbrk grows the managed region by n bytes (n must be > 0) and
	// returns the offset, within Bytes(), of the first newly-added
	// byte. Returns ErrOutOfMemory if the region cannot grow further.
	Sbrk(n int) (int, error)

	// Bytes returns the current view of the entire managed region.
	// The returned slice must be re-fetched after every Sbrk call —
	// a provider is free to reallocate its backing storage on growth.
	Bytes() []byte

	// HeapLo is the offset of the first byte ever handed out. It is
	// always 0 for these implementations but is exposed for the
	// checker's use.
	HeapLo() int

	// HeapHi is the offset one past the last byte currently managed,
	// i.e. len(Bytes()).
	HeapHi() int
}
