package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckHeap_CleanAfterInit(t *testing.T) {
	h := newTestHeap(t)
	require.Empty(t, h.CheckHeap(false))
}

func TestCheckHeap_CatchesHandCorruptedFooter(t *testing.T) {
	h := newTestHeap(t)
	p, _, err := h.Alloc(32)
	require.NoError(t, err)
	h.Free(p)
	require.Empty(t, h.CheckHeap(false))

	data := h.data()
	// Corrupt the free block's footer so it no longer matches its
	// header, without touching anything the allocator itself would
	// ever do through its public API.
	size := sizeOf(data, int(p))
	off := footerOff(int(p), size)
	data[off] ^= 0xFF

	violations := h.CheckHeap(false)
	require.NotEmpty(t, violations)
}

func TestCheckHeap_StaysCleanAcrossManyOperations(t *testing.T) {
	h := newTestHeap(t)
	var live []Ptr
	for i := 0; i < 64; i++ {
		p, _, err := h.Alloc(uint32(16 + i))
		require.NoError(t, err)
		live = append(live, p)
		if i%5 == 0 && len(live) > 1 {
			h.Free(live[0])
			live = live[1:]
		}
	}
	for _, p := range live {
		h.Free(p)
	}
	require.Empty(t, h.CheckHeap(false))
}
