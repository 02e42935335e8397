package heap

// Config holds the tunable knobs of the allocator. The size-class
// boundary table itself is fixed rather than tunable, since its exact
// ordering is part of the wire contract, not a performance knob.
type Config struct {
	// ChunkSize is the number of bytes to extend the heap by when no
	// free block fits a request. Must be a multiple of 8.
	ChunkSize int
}

// DefaultConfig extends the heap by 224 bytes at a time: (1<<8) - (1<<5).
var DefaultConfig = Config{
	ChunkSize: (1 << 8) - (1 << 5),
}

// ListCount is the number of segregated free lists.
const ListCount = 24

// classBounds holds the upper size bound (in bytes) of size classes
// 0..22; class 23 is the catch-all for anything larger than the last
// bound. Includes a deliberate ordering inversion: bound 16 is 40000,
// followed by bound 17 at 32768, smaller than its predecessor. Since
// getSizeClass below scans in index order and returns on the first
// bound a size satisfies, and every size <= 32768 also satisfies the
// earlier, larger bound 40000, bound 16 always wins first: class 17
// is permanently unreachable, for any size whatsoever. Replicated
// rather than "fixed" — see DESIGN.md.
var classBounds = [ListCount - 1]int{
	16, 24, 48, 128, 256, 512, 1024, 2048, 4096,
	9200, 12000, 16000, 20000, 24000, 28000, 32000,
	40000, 32768, 65536, 131072, 262144, 524288, 1048576,
}

// getSizeClass returns the index of the first list in classBounds
// whose bound is >= size, scanning in index order, or ListCount-1
// (the catch-all) if size exceeds every bound.
//
// Walks classBounds linearly rather than with a binary search: the
// table is not sorted (see the comment above), so a binary search
// could return a class earlier than the first-match index a linear
// scan finds, masking the dead-class anomaly instead of reproducing it.
func getSizeClass(size uint32) int {
	for i, bound := range classBounds {
		if size <= uint32(bound) {
			return i
		}
	}
	return ListCount - 1
}
