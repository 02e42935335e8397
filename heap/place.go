package heap

// place carves asize bytes out of the free block bp, which must
// already be known to be at least that large, and marks the carved
// portion allocated. bp has not yet been removed from its free list;
// place does that itself before touching the header.
//
// If the remainder is at least minBlockSize it is left behind as a new
// free block and reinserted into the appropriate list (splitting);
// otherwise the whole block is handed to the caller as-is — a
// remainder too small to hold a header, footer, and any payload isn't
// worth splitting off.
func (h *Heap) place(bp int, asize uint32) {
	data := h.data()
	h.listRemove(data, bp)
	csize := sizeOf(data, bp)

	if csize-asize >= minBlockSize {
		h.stats.SplitCount++
		setHeaderPreservePrev(data, bp, asize, true)

		rem := csize - asize
		remBp := bp + int(asize)
		setHeaderFull(data, remBp, rem, false, true)
		writeFooter(data, remBp, rem, false)
		h.listInsert(data, remBp)

		clearPrevAlloc(data, nextPhys(data, remBp))
	} else {
		setHeaderPreservePrev(data, bp, csize, true)
		setPrevAlloc(data, nextPhys(data, bp))
	}
}
