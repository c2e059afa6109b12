package cache

import (
	"fmt"
	"math/bits"
)

// Decoder splits addresses into tag and index for one cache geometry.
// The offset bits are discarded.
type Decoder struct {
	indexBits uint
	indexMask uint32
}

// NewDecoder creates a decoder with the given number of index bits. An
// index width of zero describes a fully-associative cache whose index is
// always 0. It panics when the index and offset do not fit in an address.
func NewDecoder(indexBits int) Decoder {
	if indexBits < 0 || indexBits+OffsetBits > AddressBits {
		panic(fmt.Sprintf("cache: %d index bits do not fit a %d-bit address",
			indexBits, AddressBits))
	}

	return Decoder{
		indexBits: uint(indexBits),
		indexMask: uint32(1)<<uint(indexBits) - 1,
	}
}

// IndexBits returns the index width.
func (d Decoder) IndexBits() int {
	return int(d.indexBits)
}

// TagBits returns the tag width.
func (d Decoder) TagBits() int {
	return AddressBits - OffsetBits - int(d.indexBits)
}

// NumSets returns the number of distinct index values.
func (d Decoder) NumSets() int {
	return 1 << d.indexBits
}

// MaxIndex returns the largest representable index.
func (d Decoder) MaxIndex() uint32 {
	return d.indexMask
}

// Decode returns the tag and index of addr.
func (d Decoder) Decode(addr uint32) (tag, index uint32) {
	index = (addr >> OffsetBits) & d.indexMask
	tag = addr >> (OffsetBits + d.indexBits)
	return tag, index
}

// NextLine returns the tag and index of the line that follows (tag, index)
// in memory. When the index is already the maximum it wraps to 0 and the
// tag is incremented by one.
func (d Decoder) NextLine(tag, index uint32) (uint32, uint32) {
	if index == d.indexMask {
		return tag + 1, 0
	}
	return tag, index + 1
}

// indexBitsFor returns log2(entries) for a power-of-two entry count.
func indexBitsFor(entries int) (int, error) {
	if entries <= 0 || entries&(entries-1) != 0 {
		return 0, fmt.Errorf("%d entries is not a power of two", entries)
	}
	return bits.TrailingZeros(uint(entries)), nil
}
