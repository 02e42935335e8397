package heap

import "github.com/segalloc/segalloc/internal/wire"

// This file implements the bit-level encoding of headers and footers
// and the pointer arithmetic for walking physically adjacent blocks.
// Every function here takes the current view of the managed region
// (data) plus an absolute byte offset bp that plays the role of a C
// payload pointer — the first byte of a block's payload, one word
// past its header.

const (
	minBlockSize = 2 * wire.DWordSize // 16 bytes: header/footer plus 8 bytes of usable payload

	allocBit     uint32 = 1 << 0
	prevAllocBit uint32 = 1 << 1
	sizeMask     uint32 = ^uint32(0x7)
)

func headerOff(bp int) int { return bp - wire.WordSize }

// footerOff returns the offset of a block's footer given its known
// size. Only free blocks carry a footer.
func footerOff(bp int, size uint32) int { return bp + int(size) - wire.DWordSize }

func sizeOf(data []byte, bp int) uint32 {
	return wire.ReadU32(data, headerOff(bp)) & sizeMask
}

func allocOf(data []byte, bp int) bool {
	return wire.ReadU32(data, headerOff(bp))&allocBit != 0
}

func prevAllocOf(data []byte, bp int) bool {
	return wire.ReadU32(data, headerOff(bp))&prevAllocBit != 0
}

// nextPhys returns the payload pointer of the block physically
// following bp.
func nextPhys(data []byte, bp int) int {
	return bp + int(sizeOf(data, bp))
}

// prevPhys returns the payload pointer of the block physically
// preceding bp. Valid only when prevAllocOf(data, bp) is false — the
// previous block must be free, and thus must carry a footer, for this
// to mean anything.
func prevPhys(data []byte, bp int) int {
	prevFooter := wire.ReadU32(data, bp-wire.DWordSize)
	return bp - int(prevFooter&sizeMask)
}

// setHeaderFull writes a block's header from scratch, setting all
// three meaningful bits explicitly. Used only where there is no prior
// value worth preserving (block creation, prologue/epilogue setup).
func setHeaderFull(data []byte, bp int, size uint32, alloc, prevAlloc bool) {
	wire.PutU32(data, headerOff(bp), packHeader(size, alloc, prevAlloc))
}

// setHeaderPreservePrev rewrites a block's size/alloc fields while
// carrying forward whatever prev-alloc bit the header already held.
// Every header write that is not itself updating the prev-alloc
// relationship must go through this path, or a neighbor's earlier
// update to that bit gets silently clobbered.
func setHeaderPreservePrev(data []byte, bp int, size uint32, alloc bool) {
	off := headerOff(bp)
	prevBit := wire.ReadU32(data, off) & prevAllocBit
	var a uint32
	if alloc {
		a = allocBit
	}
	wire.PutU32(data, off, size|prevBit|a)
}

func packHeader(size uint32, alloc, prevAlloc bool) uint32 {
	w := size
	if alloc {
		w |= allocBit
	}
	if prevAlloc {
		w |= prevAllocBit
	}
	return w
}

// writeFooter writes a free block's footer. The footer mirrors only
// the header's size and current-allocated bit: it never carries a
// prev-alloc bit, because "previous block allocated" is a property of
// this block's *position*, not of the footer the block hands the next
// block for backward traversal. DESIGN.md records the reasoning
// behind scoping the header==footer equality check to these two
// fields rather than the raw header word.
func writeFooter(data []byte, bp int, size uint32, alloc bool) {
	var a uint32
	if alloc {
		a = allocBit
	}
	wire.PutU32(data, footerOff(bp, size), size|a)
}

// setPrevAlloc and clearPrevAlloc set or clear bit 1 of bp's own
// header. Callers pass the successor of the block whose allocation
// state changed, so the bit records whether that predecessor is
// allocated, from the point of view of its successor. This is the
// mechanism that lets allocated blocks go without a footer: the
// successor's header is the only place that fact is recorded.
func setPrevAlloc(data []byte, bp int) {
	off := headerOff(bp)
	wire.PutU32(data, off, wire.ReadU32(data, off)|prevAllocBit)
}

func clearPrevAlloc(data []byte, bp int) {
	off := headerOff(bp)
	wire.PutU32(data, off, wire.ReadU32(data, off)&^prevAllocBit)
}
