//go:build linux

package sbrk

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MmapProvider backs the managed region with an anonymous mapping
// grown via mremap(2), giving the allocator a region that is actually
// OS virtual memory rather than a Go-managed slice — anonymous and
// growable, instead of file-backed and read-only.
type MmapProvider struct {
	data []byte // current mapping, length == capacity, fully committed
	used int    // bytes handed out to the allocator so far
	max  int
}

// NewMmapProvider reserves an initial anonymous mapping of initial
// bytes (rounded up to a page) and allows it to grow up to max bytes
// (0 means unbounded). Callers managing a heap whose free-list links
// are 32-bit offsets should keep max under 1<<32.
func NewMmapProvider(initial, max int) (*MmapProvider, error) {
	if initial <= 0 {
		initial = unix.Getpagesize()
	}
	initial = pageRound(initial)
	data, err := unix.Mmap(-1, 0, initial, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("sbrk: mmap: %w", err)
	}
	return &MmapProvider{data: data, max: max}, nil
}

func (p *MmapProvider) Sbrk(n int) (int, error) {
	if n <= 0 {
		return 0, ErrOutOfMemory
	}
	base := p.used
	want := p.used + n
	if p.max > 0 && want > p.max {
		return 0, ErrOutOfMemory
	}
	if want > len(p.data) {
		newCap := pageRound(want)
		grown, err := unix.Mremap(p.data, newCap, unix.MREMAP_MAYMOVE)
		if err != nil {
			return 0, fmt.Errorf("%w: mremap: %v", ErrOutOfMemory, err)
		}
		p.data = grown
	}
	p.used = want
	return base, nil
}

func (p *MmapProvider) Bytes() []byte { return p.data[:p.used] }
func (p *MmapProvider) HeapLo() int   { return 0 }
func (p *MmapProvider) HeapHi() int   { return p.used }

// Close releases the mapping. The provider must not be used afterward.
func (p *MmapProvider) Close() error {
	if p.data == nil {
		return nil
	}
	err := unix.Munmap(p.data)
	p.data = nil
	return err
}

func pageRound(n int) int {
	ps := unix.Getpagesize()
	return (n + ps - 1) &^ (ps - 1)
}
