package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/segalloc/segalloc/sbrk"
)

func newTestHeap(t *testing.T) *Heap {
	t.Helper()
	h, err := New(Config{ChunkSize: DefaultConfig.ChunkSize}, sbrk.NewMemProvider(0))
	require.NoError(t, err)
	return h
}

func TestNew_LaysOutAlignedPrologue(t *testing.T) {
	h := newTestHeap(t)
	require.Zero(t, h.heapBase%8)
	require.Empty(t, h.CheckHeap(false))
}

func TestAlloc_ZeroSizeIsNoop(t *testing.T) {
	h := newTestHeap(t)
	p, buf, err := h.Alloc(0)
	require.NoError(t, err)
	require.Equal(t, Nil, p)
	require.Nil(t, buf)
}

func TestAlloc_ReturnsAlignedUsablePayload(t *testing.T) {
	h := newTestHeap(t)
	for _, size := range []uint32{1, 7, 8, 9, 100, 1000} {
		p, buf, err := h.Alloc(size)
		require.NoError(t, err)
		require.NotEqual(t, Nil, p)
		require.GreaterOrEqual(t, len(buf), int(size))
		require.Zero(t, int(p)%8)
	}
	require.Empty(t, h.CheckHeap(false))
}

func TestAlloc_PayloadIsWritable(t *testing.T) {
	h := newTestHeap(t)
	p, buf, err := h.Alloc(64)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = byte(i)
	}
	fresh := h.Payload(p)
	for i := range fresh {
		require.Equal(t, byte(i), fresh[i])
	}
}

func TestFree_ThenReallocReusesSpace(t *testing.T) {
	h := newTestHeap(t)
	before := h.Stats().GrowCalls

	p1, _, err := h.Alloc(32)
	require.NoError(t, err)
	h.Free(p1)
	require.Empty(t, h.CheckHeap(false))

	p2, _, err := h.Alloc(32)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p2)
	require.Equal(t, before, h.Stats().GrowCalls, "reusing a freed block should not grow the heap")
}

func TestFree_Nil_IsNoop(t *testing.T) {
	h := newTestHeap(t)
	h.Free(Nil)
	require.Empty(t, h.CheckHeap(false))
}

func TestFree_CoalescesAdjacentFreeBlocks(t *testing.T) {
	h := newTestHeap(t)
	p1, _, err := h.Alloc(32)
	require.NoError(t, err)
	p2, _, err := h.Alloc(32)
	require.NoError(t, err)
	p3, _, err := h.Alloc(32)
	require.NoError(t, err)

	h.Free(p1)
	h.Free(p3)
	h.Free(p2)
	require.Empty(t, h.CheckHeap(false))

	// After freeing all three contiguous blocks, a request spanning
	// all of them should be satisfiable without growing the heap.
	before := h.Stats().GrowCalls
	_, buf, err := h.Alloc(90)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(buf), 90)
	require.Equal(t, before, h.Stats().GrowCalls)
}

func TestRealloc_GrowPreservesContent(t *testing.T) {
	h := newTestHeap(t)
	p, buf, err := h.Alloc(16)
	require.NoError(t, err)
	copy(buf, "hello world")

	p2, buf2, err := h.Realloc(p, 256)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p2)
	require.Equal(t, "hello world", string(buf2[:11]))
}

func TestRealloc_ShrinkPreservesPrefix(t *testing.T) {
	h := newTestHeap(t)
	p, buf, err := h.Alloc(256)
	require.NoError(t, err)
	copy(buf, "shrink me")

	p2, buf2, err := h.Realloc(p, 16)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p2)
	require.Equal(t, "shrink me", string(buf2[:9]))
}

func TestRealloc_SizeZeroFrees(t *testing.T) {
	h := newTestHeap(t)
	p, _, err := h.Alloc(32)
	require.NoError(t, err)

	p2, buf2, err := h.Realloc(p, 0)
	require.NoError(t, err)
	require.Equal(t, Nil, p2)
	require.Nil(t, buf2)
	require.Empty(t, h.CheckHeap(false))
}

func TestRealloc_NilActsAsAlloc(t *testing.T) {
	h := newTestHeap(t)
	p, buf, err := h.Realloc(Nil, 48)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	require.GreaterOrEqual(t, len(buf), 48)
}

func TestCalloc_ZeroesPayload(t *testing.T) {
	h := newTestHeap(t)
	p, buf, err := h.Alloc(64)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = 0xFF
	}
	h.Free(p)

	p2, buf2, err := h.Calloc(8, 8)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p2)
	for _, b := range buf2 {
		require.Zero(t, b)
	}
}

func TestCalloc_OverflowIsRejected(t *testing.T) {
	h := newTestHeap(t)
	_, _, err := h.Calloc(1<<20, 1<<20)
	require.ErrorIs(t, err, ErrBadSize)
}

func TestNew_RejectsUsedProvider(t *testing.T) {
	p := sbrk.NewMemProvider(0)
	_, err := p.Sbrk(8)
	require.NoError(t, err)

	_, err = New(DefaultConfig, p)
	require.Error(t, err)
}

func TestNew_RejectsBadChunkSize(t *testing.T) {
	_, err := New(Config{ChunkSize: 3}, sbrk.NewMemProvider(0))
	require.Error(t, err)
}

func TestHeap_ManySmallAllocationsStayConsistent(t *testing.T) {
	h := newTestHeap(t)
	var ptrs []Ptr
	for i := 0; i < 200; i++ {
		p, _, err := h.Alloc(uint32(8 + i%64))
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	for i, p := range ptrs {
		if i%3 == 0 {
			h.Free(p)
		}
	}
	require.Empty(t, h.CheckHeap(false))
}

func TestHeap_BoundedProviderReturnsOutOfMemory(t *testing.T) {
	p := sbrk.NewMemProvider(512)
	h, err := New(Config{ChunkSize: 32}, p)
	require.NoError(t, err)

	var lastErr error
	for i := 0; i < 2000; i++ {
		_, _, err := h.Alloc(64)
		if err != nil {
			lastErr = err
			break
		}
	}
	require.ErrorIs(t, lastErr, ErrOutOfMemory)
}
