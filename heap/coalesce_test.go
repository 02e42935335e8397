package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoalesce_BothNeighborsAllocated(t *testing.T) {
	h := newTestHeap(t)
	_, _, err := h.Alloc(32)
	require.NoError(t, err)
	mid, _, err := h.Alloc(32)
	require.NoError(t, err)
	_, _, err = h.Alloc(32)
	require.NoError(t, err)

	before := h.Stats().CoalesceForward + h.Stats().CoalesceBackward
	h.Free(mid)
	require.Equal(t, before, h.Stats().CoalesceForward+h.Stats().CoalesceBackward)
	require.Empty(t, h.CheckHeap(false))
}

func TestCoalesce_MergesForwardIntoFreeSuccessor(t *testing.T) {
	h := newTestHeap(t)
	a, _, err := h.Alloc(32)
	require.NoError(t, err)
	b, _, err := h.Alloc(32)
	require.NoError(t, err)

	h.Free(b)
	before := h.Stats().CoalesceForward
	h.Free(a)
	require.Equal(t, before+1, h.Stats().CoalesceForward)
	require.Empty(t, h.CheckHeap(false))
}

func TestCoalesce_MergesBackwardIntoFreePredecessor(t *testing.T) {
	h := newTestHeap(t)
	a, _, err := h.Alloc(32)
	require.NoError(t, err)
	b, _, err := h.Alloc(32)
	require.NoError(t, err)

	h.Free(a)
	before := h.Stats().CoalesceBackward
	h.Free(b)
	require.Equal(t, before+1, h.Stats().CoalesceBackward)
	require.Empty(t, h.CheckHeap(false))
}

func TestCoalesce_MergesBothNeighbors(t *testing.T) {
	h := newTestHeap(t)
	a, _, err := h.Alloc(32)
	require.NoError(t, err)
	b, _, err := h.Alloc(32)
	require.NoError(t, err)
	c, _, err := h.Alloc(32)
	require.NoError(t, err)

	h.Free(a)
	h.Free(c)
	before := h.Stats()
	h.Free(b)
	after := h.Stats()
	require.Equal(t, before.CoalesceForward+1, after.CoalesceForward)
	require.Equal(t, before.CoalesceBackward+1, after.CoalesceBackward)
	require.Empty(t, h.CheckHeap(false))
}
