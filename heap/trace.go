package heap

// Op is a single step of a replayable allocation trace: allocate,
// free, or resize a block identified by a caller-chosen ID, the same
// shape a benchmark driver would script ahead of time and feed
// through in order. IDs are used to match a later Free or Realloc back
// to the block an earlier Alloc produced.
type Op struct {
	Kind OpKind
	ID   int
	Size uint32
}

// OpKind distinguishes the three operations a trace can replay.
type OpKind int

const (
	OpAlloc OpKind = iota
	OpFree
	OpRealloc
)

// TraceResult summarizes a completed replay.
type TraceResult struct {
	PeakBytes    int     // high-water mark of the managed region's size
	LiveBytes    int64   // payload bytes still live when the trace ended
	Utilization  float64 // LiveBytes / PeakBytes, 0 if PeakBytes is 0
}

type liveBlock struct {
	ptr  Ptr
	size uint32
}

// RunTrace replays ops against h in order, tracking which IDs are
// currently live so that OpFree and OpRealloc can be resolved to the
// right block. Every successfully allocated byte is stamped with a
// marker derived from its op's ID, a cheap way for callers to notice
// payload corruption by re-reading a block's bytes later in the trace.
//
// An OpFree whose ID has no live block is a no-op for that step. An
// OpRealloc whose ID has no live block resizes Nil, which allocates a
// fresh block for that ID. An error from Alloc or Realloc ends the
// replay and is returned with an empty TraceResult.
func RunTrace(h *Heap, ops []Op) (TraceResult, error) {
	live := make(map[int]liveBlock)

	for _, op := range ops {
		switch op.Kind {
		case OpAlloc:
			p, buf, err := h.Alloc(op.Size)
			if err != nil {
				return TraceResult{}, err
			}
			if p != Nil {
				stampBlock(buf, op.ID)
				live[op.ID] = liveBlock{ptr: p, size: op.Size}
			}

		case OpFree:
			if e, ok := live[op.ID]; ok {
				h.Free(e.ptr)
				delete(live, op.ID)
			}

		case OpRealloc:
			var old Ptr
			if e, ok := live[op.ID]; ok {
				old = e.ptr
			}
			p, buf, err := h.Realloc(old, op.Size)
			if err != nil {
				return TraceResult{}, err
			}
			if p == Nil {
				delete(live, op.ID)
				continue
			}
			stampBlock(buf, op.ID)
			live[op.ID] = liveBlock{ptr: p, size: op.Size}
		}
	}

	var result TraceResult
	result.PeakBytes = h.provider.HeapHi() - h.provider.HeapLo()
	for _, e := range live {
		result.LiveBytes += int64(e.size)
	}
	if result.PeakBytes > 0 {
		result.Utilization = float64(result.LiveBytes) / float64(result.PeakBytes)
	}
	return result, nil
}

func stampBlock(buf []byte, id int) {
	if len(buf) == 0 {
		return
	}
	b := byte(id)
	for i := range buf {
		buf[i] = b
	}
}
