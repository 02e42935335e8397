package heap

import "github.com/segalloc/segalloc/internal/wire"

// The free lists live inside the managed region itself: a fixed array
// of ListCount head slots sits right after the alignment pad at the
// very start of the heap, and each free block's first two payload
// words are repurposed as a next/prev pair. Both the head slots and
// the next/prev pairs store 32-bit offsets *relative to heapBase*
// rather than absolute offsets, with 0 doubling as the nil sentinel —
// safe because heapBase itself is the prologue, which is permanently
// allocated and can never be a free-list member.

// relOff converts an absolute payload offset to the heap-relative
// encoding stored in free-list links. bp must never equal heapBase.
func (h *Heap) relOff(bp int) uint32 { return uint32(bp - h.heapBase) }

// absOff is the inverse of relOff. A rel of 0 means nil; callers must
// check for that before calling absOff.
func (h *Heap) absOff(rel uint32) int { return h.heapBase + int(rel) }

func (h *Heap) headSlot(class int) int { return h.headsOff + class*wire.WordSize }

// listInsert pushes bp onto the head of its size class's free list.
// LIFO: the most recently freed block of a given size is the first
// one reused.
func (h *Heap) listInsert(data []byte, bp int) {
	class := getSizeClass(sizeOf(data, bp))
	slot := h.headSlot(class)
	oldHead := wire.ReadU32(data, slot)

	wire.PutU32(data, bp, oldHead) // bp.next = old head
	wire.PutU32(data, bp+wire.WordSize, 0) // bp.prev = nil
	if oldHead != 0 {
		wire.PutU32(data, h.absOff(oldHead)+wire.WordSize, h.relOff(bp)) // old_head.prev = bp
	}
	wire.PutU32(data, slot, h.relOff(bp))
}

// listRemove unlinks bp from its size class's free list. The four
// cases are kept mutually exclusive (a switch over (next==0, prev==0),
// not a run of independent ifs) so that unlinking the sole member of a
// list can't also run the "has a next" or "has a prev" branch against
// stale data.
func (h *Heap) listRemove(data []byte, bp int) {
	class := getSizeClass(sizeOf(data, bp))
	slot := h.headSlot(class)
	next := wire.ReadU32(data, bp)
	prev := wire.ReadU32(data, bp+wire.WordSize)

	switch {
	case next == 0 && prev == 0:
		wire.PutU32(data, slot, 0)
	case next == 0 && prev != 0:
		wire.PutU32(data, h.absOff(prev), 0) // prev.next = nil
	case next != 0 && prev == 0:
		wire.PutU32(data, h.absOff(next)+wire.WordSize, 0) // next.prev = nil
		wire.PutU32(data, slot, next)                      // head = next
	default:
		wire.PutU32(data, h.absOff(prev), next)                  // prev.next = next
		wire.PutU32(data, h.absOff(next)+wire.WordSize, prev)     // next.prev = prev
	}
}

// findFirst scans size classes from getSizeClass(asize) upward and
// returns the first free block at least asize bytes, or 0 if none
// exists. Because classBounds is not monotonic, "upward" means
// ascending class index, not ascending size.
func (h *Heap) findFirst(data []byte, asize uint32) int {
	for class := getSizeClass(asize); class < ListCount; class++ {
		cur := wire.ReadU32(data, h.headSlot(class))
		for cur != 0 {
			bp := h.absOff(cur)
			if sizeOf(data, bp) >= asize {
				return bp
			}
			cur = wire.ReadU32(data, bp)
		}
	}
	return 0
}
