package heap

import (
	"fmt"
	"os"

	"github.com/segalloc/segalloc/internal/wire"
)

// CheckHeap walks the entire managed region and every free list,
// checking the structural invariants the allocator depends on:
// alignment, header/footer agreement, prev-alloc bit correctness, the
// no-adjacent-frees rule, minimum block size, and free-list
// membership consistency in both directions. It never modifies state.
// Violations are returned as human-readable strings; when verbose is
// true they are also written to stderr as they're found, a "print and
// keep going" style that matches the rest of this allocator's debug
// diagnostics.
//
// Block size is always read through sizeOf, which consults the
// header, rather than trusted from an earlier read — a corrupted
// payload can't mask a bad header from the checker this way.
func (h *Heap) CheckHeap(verbose bool) []string {
	var violations []string
	report := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		violations = append(violations, msg)
		if verbose {
			fmt.Fprintln(os.Stderr, "checkheap:", msg)
		}
	}

	data := h.data()
	lo, hi := h.provider.HeapLo(), h.provider.HeapHi()

	if hdr := wire.ReadU32(data, headerOff(h.heapBase)); hdr&sizeMask != wire.DWordSize || hdr&allocBit == 0 {
		report("prologue header at %d is malformed: %#x", h.heapBase, hdr)
	}

	walked := make(map[int]bool)
	// The prologue was checked above; the walk starts at the first
	// block after it, whose predecessor (the prologue) is allocated.
	prevAlloc := true
	bp := nextPhys(data, h.heapBase)

	for {
		size := sizeOf(data, bp)
		if size == 0 {
			if !allocOf(data, bp) {
				report("epilogue at %d is marked free", bp)
			}
			break
		}

		if bp%wire.DWordSize != 0 {
			report("block at %d is not 8-byte aligned", bp)
		}
		if bp < lo || bp+int(size) > hi {
			report("block at %d (size %d) extends outside the managed region [%d,%d)", bp, size, lo, hi)
		}
		if size < minBlockSize || size%wire.DWordSize != 0 {
			report("block at %d has invalid size %d", bp, size)
		}
		if prevAllocOf(data, bp) != prevAlloc {
			report("block at %d has prev-alloc bit %v, but predecessor's actual alloc state is %v", bp, prevAllocOf(data, bp), prevAlloc)
		}

		alloc := allocOf(data, bp)
		if !alloc {
			if !prevAlloc {
				report("block at %d is free and so is its predecessor: adjacent free blocks", bp)
			}
			hdr := wire.ReadU32(data, headerOff(bp)) &^ prevAllocBit
			ftr := wire.ReadU32(data, footerOff(bp, size))
			if hdr != ftr {
				report("block at %d has mismatched header/footer: %#x vs %#x", bp, hdr, ftr)
			}
			walked[bp] = true
		}

		prevAlloc = alloc
		bp = nextPhys(data, bp)
	}

	fromLists := make(map[int]bool)
	for class := 0; class < ListCount; class++ {
		cur := wire.ReadU32(data, h.headSlot(class))
		for cur != 0 {
			node := h.absOff(cur)
			if allocOf(data, node) {
				report("block at %d is in free list %d but marked allocated", node, class)
			}
			if got := getSizeClass(sizeOf(data, node)); got != class {
				report("block at %d (size %d) sits in list %d but belongs in list %d", node, sizeOf(data, node), class, got)
			}
			if fromLists[node] {
				report("block at %d appears more than once across the free lists", node)
			}
			fromLists[node] = true
			cur = wire.ReadU32(data, node)
		}
	}

	for bp := range walked {
		if !fromLists[bp] {
			report("free block at %d was found walking the heap but is not in any free list", bp)
		}
	}
	for bp := range fromLists {
		if !walked[bp] {
			report("block at %d is in a free list but was not found walking the heap", bp)
		}
	}

	return violations
}
