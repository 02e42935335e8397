package heap

// coalesce merges bp with any free physical neighbors and returns the
// payload pointer of the resulting block, inserting it into the
// appropriate free list before returning. The caller (free, or
// extendHeap for the block it just carved out) must not have already
// inserted bp into a free list — coalesce always does that itself,
// exactly once, for whichever address the merge settles on.
func (h *Heap) coalesce(bp int) int {
	data := h.data()
	prevAlloc := prevAllocOf(data, bp)
	next := nextPhys(data, bp)
	nextAlloc := allocOf(data, next)
	size := sizeOf(data, bp)

	switch {
	case prevAlloc && nextAlloc:
		// Case 1: both neighbors allocated. Nothing to merge.
		clearPrevAlloc(data, next)
		h.listInsert(data, bp)

	case prevAlloc && !nextAlloc:
		// Case 2: merge with the following block.
		h.stats.CoalesceForward++
		h.listRemove(data, next)
		size += sizeOf(data, next)
		setHeaderPreservePrev(data, bp, size, false)
		writeFooter(data, bp, size, false)
		h.listInsert(data, bp)

	case !prevAlloc && nextAlloc:
		// Case 3: merge with the preceding block.
		h.stats.CoalesceBackward++
		prev := prevPhys(data, bp)
		h.listRemove(data, prev)
		size += sizeOf(data, prev)
		setHeaderPreservePrev(data, prev, size, false)
		writeFooter(data, prev, size, false)
		bp = prev
		clearPrevAlloc(data, next)
		h.listInsert(data, bp)

	default:
		// Case 4: merge with both neighbors.
		h.stats.CoalesceForward++
		h.stats.CoalesceBackward++
		prev := prevPhys(data, bp)
		h.listRemove(data, prev)
		h.listRemove(data, next)
		size += sizeOf(data, prev) + sizeOf(data, next)
		setHeaderPreservePrev(data, prev, size, false)
		writeFooter(data, prev, size, false)
		bp = prev
		h.listInsert(data, bp)
	}

	return bp
}
