// Package wire provides the little-endian word encoding and alignment
// helpers shared by the heap and sbrk packages.
package wire

import "encoding/binary"

// WordSize is the size in bytes of a single heap word (a header, a
// footer, or a free-list offset).
const WordSize = 4

// DWordSize is the double-word size; every block and every payload
// pointer is aligned to this boundary.
const DWordSize = 8

// PutU32 writes v to b[off:off+4] in little-endian order.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU32 reads a little-endian uint32 from b[off:off+4].
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// Align8 rounds n up to the next 8-byte boundary.
func Align8(n int) int {
	return (n + (DWordSize - 1)) &^ (DWordSize - 1)
}

// Align8U32 is the uint32 form of Align8, used on block sizes.
func Align8U32(n uint32) uint32 {
	return (n + (DWordSize - 1)) &^ (DWordSize - 1)
}
