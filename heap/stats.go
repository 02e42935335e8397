package heap

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats are the running counters an allocator accumulates over its
// lifetime: plain counters, no histograms, printed on request rather
// than continuously.
type Stats struct {
	AllocCalls     int64
	AllocFastPath  int64 // served by an existing free block
	AllocSlowPath  int64 // required extending the heap
	FreeCalls      int64
	GrowCalls      int64
	SplitCount     int64
	CoalesceForward  int64
	CoalesceBackward int64
	BytesAllocated int64
	BytesFreed     int64
}

// Fprint writes a human-readable summary of s to w, with counters
// formatted with English thousands separators.
func (s Stats) Fprint(w io.Writer) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "allocs:      %d  (fast %d / slow %d)\n", s.AllocCalls, s.AllocFastPath, s.AllocSlowPath)
	p.Fprintf(w, "frees:       %d\n", s.FreeCalls)
	p.Fprintf(w, "heap grows:  %d\n", s.GrowCalls)
	p.Fprintf(w, "splits:      %d\n", s.SplitCount)
	p.Fprintf(w, "coalesces:   %d forward / %d backward\n", s.CoalesceForward, s.CoalesceBackward)
	p.Fprintf(w, "bytes alloc: %d\n", s.BytesAllocated)
	p.Fprintf(w, "bytes freed: %d\n", s.BytesFreed)
}

func (s Stats) String() string {
	return fmt.Sprintf("allocs=%d frees=%d grows=%d splits=%d fwd=%d bwd=%d",
		s.AllocCalls, s.FreeCalls, s.GrowCalls, s.SplitCount, s.CoalesceForward, s.CoalesceBackward)
}
