package heap

import (
	"fmt"

	"github.com/segalloc/segalloc/internal/wire"
	"github.com/segalloc/segalloc/sbrk"
)

// Ptr is a stable handle to an allocated block: an offset into the
// managed region that remains valid across any later Alloc, Free, or
// Realloc call, even though those calls may grow the provider's
// backing storage and move it to a new address. Code that needs the
// bytes themselves should call Payload(p) to get a fresh view rather
// than hold on to a slice returned by an earlier call — exactly the
// refetch discipline sbrk.Provider.Bytes() already requires.
type Ptr int32

// Nil is the zero value of Ptr, used throughout as the "no block"
// sentinel — the offset 0 can never be a real payload pointer, since
// it is the alignment pad word at the very start of the region.
const Nil Ptr = 0

// Heap is a single segregated-free-list allocator instance.
type Heap struct {
	provider sbrk.Provider
	cfg      Config

	heapBase int // payload offset of the prologue block
	headsOff int // offset of the first free-list head slot

	stats Stats
}

// New creates an allocator over a freshly constructed provider and
// performs the one-time heap layout: the alignment pad, the free-list
// head array, the prologue, and the epilogue, followed by an initial
// extension by cfg.ChunkSize bytes. provider must not have been grown
// before — New assumes it owns the entire region from offset 0.
func New(cfg Config, provider sbrk.Provider) (*Heap, error) {
	if provider.HeapHi() != provider.HeapLo() {
		return nil, fmt.Errorf("heap: new: provider already has %d bytes of prior growth", provider.HeapHi()-provider.HeapLo())
	}
	if cfg.ChunkSize <= 0 || cfg.ChunkSize%wire.DWordSize != 0 {
		return nil, fmt.Errorf("heap: new: chunk size %d must be a positive multiple of %d", cfg.ChunkSize, wire.DWordSize)
	}

	h := &Heap{provider: provider, cfg: cfg}

	prefix := (1 + ListCount + 2 + 1) * wire.WordSize // pad + heads + prologue hdr/ftr + epilogue hdr
	base, err := provider.Sbrk(prefix)
	if err != nil {
		return nil, fmt.Errorf("heap: new: %w", ErrOutOfMemory)
	}
	data := provider.Bytes()

	wire.PutU32(data, base, 0) // alignment pad
	h.headsOff = base + wire.WordSize
	for class := 0; class < ListCount; class++ {
		wire.PutU32(data, h.headsOff+class*wire.WordSize, 0)
	}

	prologueHeaderOff := h.headsOff + ListCount*wire.WordSize
	h.heapBase = prologueHeaderOff + wire.WordSize

	setHeaderFull(data, h.heapBase, wire.DWordSize, true, true)
	writeFooter(data, h.heapBase, wire.DWordSize, true)
	setHeaderFull(data, h.heapBase+wire.DWordSize, 0, true, true) // epilogue

	if h.heapBase%wire.DWordSize != 0 {
		return nil, fmt.Errorf("heap: new: prologue payload at %d is not 8-byte aligned", h.heapBase)
	}

	if _, err := h.extendHeap(cfg.ChunkSize); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Heap) data() []byte { return h.provider.Bytes() }

// extendHeap grows the managed region by at least minBytes, rounded
// up to an even number of words, folds the old epilogue word into the
// new free block's header, writes a fresh epilogue past it, coalesces
// the new block with whatever free block preceded the old epilogue,
// and returns the resulting payload pointer.
func (h *Heap) extendHeap(minBytes int) (int, error) {
	words := (minBytes + wire.WordSize - 1) / wire.WordSize
	if words%2 != 0 {
		words++
	}
	nBytes := words * wire.WordSize

	bp, err := h.provider.Sbrk(nBytes)
	if err != nil {
		return 0, ErrOutOfMemory
	}
	h.stats.GrowCalls++
	data := h.data()

	size := uint32(nBytes)
	setHeaderPreservePrev(data, bp, size, false)
	writeFooter(data, bp, size, false)
	setHeaderFull(data, bp+int(size), 0, true, false) // new epilogue

	return h.coalesce(bp), nil
}

// asizeFor converts a requested payload size into the actual block
// size to carve out, including header overhead and the double-word
// floor every block size is rounded up to.
func asizeFor(size uint32) uint32 {
	if size <= wire.DWordSize {
		return 2 * wire.DWordSize
	}
	return wire.Align8U32(size + wire.WordSize)
}

// Alloc reserves a block of at least size usable bytes. Passing size
// 0 returns (Nil, nil, nil) — a deliberate no-op, not an error. The
// returned slice aliases the provider's backing storage directly; it
// stays valid until the next call that grows the heap, after which
// Payload(p) should be used to get a fresh view.
func (h *Heap) Alloc(size uint32) (Ptr, []byte, error) {
	h.stats.AllocCalls++
	if size == 0 {
		return Nil, nil, nil
	}

	asize := asizeFor(size)
	data := h.data()
	bp := h.findFirst(data, asize)
	if bp != 0 {
		h.stats.AllocFastPath++
	} else {
		h.stats.AllocSlowPath++
		extend := asize
		if uint32(h.cfg.ChunkSize) > extend {
			extend = uint32(h.cfg.ChunkSize)
		}
		grown, err := h.extendHeap(int(extend))
		if err != nil {
			return Nil, nil, err
		}
		bp = grown
	}

	h.place(bp, asize)
	data = h.data()
	h.stats.BytesAllocated += int64(sizeOf(data, bp))
	return Ptr(bp), h.payloadSlice(data, bp), nil
}

func (h *Heap) payloadSlice(data []byte, bp int) []byte {
	n := int(sizeOf(data, bp)) - wire.WordSize
	return data[bp : bp+n]
}

// Payload returns a fresh view of p's usable bytes. Call this instead
// of reusing a slice from an earlier Alloc/Realloc/Calloc call if any
// heap-growing call may have happened in between.
func (h *Heap) Payload(p Ptr) []byte {
	if p == Nil {
		return nil
	}
	return h.payloadSlice(h.data(), int(p))
}

// Free releases the block p references. Freeing Nil is a no-op.
func (h *Heap) Free(p Ptr) {
	h.stats.FreeCalls++
	if p == Nil {
		return
	}
	bp := int(p)
	data := h.data()
	size := sizeOf(data, bp)
	h.stats.BytesFreed += int64(size)

	setHeaderPreservePrev(data, bp, size, false)
	writeFooter(data, bp, size, false)
	clearPrevAlloc(data, nextPhys(data, bp))
	h.coalesce(bp)
}

// Realloc resizes the block p references to hold size usable bytes,
// preserving its content up to the smaller of the old and new sizes.
// Calling with p == Nil behaves like Alloc; calling with size == 0
// behaves like Free and returns (Nil, nil, nil).
func (h *Heap) Realloc(p Ptr, size uint32) (Ptr, []byte, error) {
	if size == 0 {
		h.Free(p)
		return Nil, nil, nil
	}
	if p == Nil {
		return h.Alloc(size)
	}

	oldBp := int(p)
	oldData := h.data()
	oldSize := int(sizeOf(oldData, oldBp)) - wire.WordSize
	old := make([]byte, oldSize)
	copy(old, h.payloadSlice(oldData, oldBp))

	newP, newBuf, err := h.Alloc(size)
	if err != nil || newP == Nil {
		return Nil, nil, err
	}
	n := len(old)
	if n > len(newBuf) {
		n = len(newBuf)
	}
	copy(newBuf, old[:n])
	h.Free(p)
	return newP, newBuf, nil
}

// Calloc allocates space for n elements of size elemSize each,
// zero-initialized. Returns ErrBadSize if the product overflows.
func (h *Heap) Calloc(n, elemSize uint32) (Ptr, []byte, error) {
	if n == 0 || elemSize == 0 {
		return Nil, nil, nil
	}
	total := uint64(n) * uint64(elemSize)
	if total > uint64(^uint32(0)) {
		return Nil, nil, ErrBadSize
	}
	p, buf, err := h.Alloc(uint32(total))
	if err != nil || p == Nil {
		return Nil, nil, err
	}
	for i := range buf {
		buf[i] = 0
	}
	return p, buf, nil
}

// Stats returns a snapshot of the allocator's running counters.
func (h *Heap) Stats() Stats { return h.stats }
