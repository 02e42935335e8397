// Package heap implements a segregated-free-list dynamic memory
// allocator on top of an abstract sbrk.Provider: header/footer
// boundary tags, a fixed bank of size-class free lists, first-fit
// placement with splitting, and four-case boundary-tag coalescing.
//
// The managed region is a flat byte slice rather than process address
// space, so every "pointer" the allocator hands out is a Ptr — a
// stable integer offset — rather than a raw address. Use Payload to
// get at a block's bytes; a slice returned directly from Alloc,
// Realloc, or Calloc is only valid until the next call that grows the
// heap.
package heap
