package heap

import "errors"

var (
	// ErrOutOfMemory indicates the sbrk provider could not grow the
	// managed region far enough to satisfy a request. Surfaces as a
	// nil Ptr from Alloc/Realloc/Calloc and as a non-nil error from New.
	ErrOutOfMemory = errors.New("heap: out of memory")

	// ErrBadSize indicates a size argument that cannot be serviced,
	// such as a Calloc element count/size product that overflows.
	ErrBadSize = errors.New("heap: bad size")
)
