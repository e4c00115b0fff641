package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// MinBuilderCapacity is the smallest capacity any builder allocates once it
// has allocated anything at all.
const MinBuilderCapacity = 1 << 5

// BinaryMemoryLimit bounds the total payload a variable-binary builder may
// hold, since offsets are 32-bit.
const BinaryMemoryLimit = (1 << 31) - 2

// ListMaximumElements bounds the number of child elements a list builder may
// address, since offsets are 32-bit.
const ListMaximumElements = (1 << 31) - 2

// Builder is the contract every concrete builder in this package satisfies.
// It mirrors arrow-go/v18's array.Builder closely enough that any of these
// builders can be dropped into a RecordBuilder or the MakeBuilder factory.
type Builder interface {
	Type() arrow.DataType
	Len() int
	Cap() int
	NullN() int
	Reserve(n int)
	Resize(capacity int) error
	AppendNull() error
	Retain()
	Release()
	NewArray() arrow.Array
}

// base provides capacity tracking and null-bitmap accumulation shared by
// every concrete builder. It is embedded, never used directly.
type base struct {
	mem      memory.Allocator
	dtype    arrow.DataType
	refCount int64

	nullBitmap *memory.Buffer
	nullCount  int
	length     int
	capacity   int
}

func (b *base) init(mem memory.Allocator, dtype arrow.DataType) {
	b.mem = mem
	b.dtype = dtype
	b.refCount = 1
}

func (b *base) Type() arrow.DataType { return b.dtype }
func (b *base) Len() int             { return b.length }
func (b *base) Cap() int             { return b.capacity }
func (b *base) NullN() int           { return b.nullCount }

func (b *base) Retain() { b.refCount++ }

func (b *base) releaseBitmap() {
	if b.nullBitmap != nil {
		b.nullBitmap.Release()
		b.nullBitmap = nil
	}
}

// bitmapBytes returns the validity bitmap's backing bytes, allocating a
// kMinBuilderCapacity-sized bitmap lazily on first use.
func (b *base) bitmapBytes() []byte {
	if b.nullBitmap == nil {
		b.allocateBitmap(MinBuilderCapacity)
	}
	return b.nullBitmap.Bytes()
}

func (b *base) allocateBitmap(capacity int) {
	toAlloc := bitutil.CeilByte(capacity) / 8
	b.nullBitmap = memory.NewResizableBuffer(b.mem)
	b.nullBitmap.Resize(toAlloc)
	memory.Set(b.nullBitmap.Buf(), 0)
}

// resizeBitmap grows or shrinks the validity bitmap to newCapacity bits of
// capacity, preserving already-written bits and zero-filling new ones.
func (b *base) resizeBitmap(newCapacity int) {
	if b.nullBitmap == nil {
		b.allocateBitmap(newCapacity)
		b.capacity = newCapacity
		return
	}

	newBytes := bitutil.CeilByte(newCapacity) / 8
	oldBytes := b.nullBitmap.Len()
	b.nullBitmap.Resize(newBytes)
	if oldBytes < newBytes {
		memory.Set(b.nullBitmap.Buf()[oldBytes:], 0)
	}
	b.capacity = newCapacity
}

// Reserve ensures capacity >= length+additional, growing geometrically to
// the next power of two.
func (b *base) Reserve(additional int) {
	if b.length+additional > b.capacity {
		newCap := bitutil.NextPowerOf2(b.length + additional)
		if newCap < MinBuilderCapacity {
			newCap = MinBuilderCapacity
		}
		b.resizeBitmap(newCap)
	}
}

// Resize sets capacity to exactly newCapacity, or to MinBuilderCapacity if
// newCapacity is smaller than that. Fails if newCapacity < 0 or
// newCapacity < length.
func (b *base) Resize(newCapacity int) error {
	if newCapacity < 0 {
		return Errorf(Invalid, "resize capacity must be positive")
	}
	if newCapacity < b.length {
		return Errorf(Invalid, "resize cannot downsize below current length %d", b.length)
	}
	if newCapacity < MinBuilderCapacity {
		newCapacity = MinBuilderCapacity
	}
	b.resizeBitmap(newCapacity)
	return nil
}

// Advance adds n to length and marks those slots valid, for callers who
// externally populated memory via UnsafeAppend-style writes.
func (b *base) Advance(n int) error {
	if b.length+n > b.capacity {
		return Errorf(Invalid, "cannot advance %d beyond capacity %d (length %d)", n, b.capacity, b.length)
	}
	b.UnsafeSetNotNull(n)
	return nil
}

// AppendToBitmap pushes a single validity bit.
func (b *base) AppendToBitmap(valid bool) {
	b.Reserve(1)
	b.UnsafeAppendToBitmap(valid)
}

// AppendToBitmapSpan pushes length validity bits, one per byte of
// validBytes, treating each zero byte as null. A nil validBytes means "all
// valid."
func (b *base) AppendToBitmapSpan(validBytes []byte, length int) {
	b.Reserve(length)
	b.UnsafeAppendToBitmapSpan(validBytes, length)
}

// SetNotNull reserves and sets the next n bits to valid.
func (b *base) SetNotNull(n int) {
	b.Reserve(n)
	b.UnsafeSetNotNull(n)
}

// UnsafeAppendToBitmap appends one validity bit without checking capacity.
func (b *base) UnsafeAppendToBitmap(valid bool) {
	if valid {
		bitutil.SetBit(b.bitmapBytes(), b.length)
	} else {
		b.nullCount++
	}
	b.length++
}

// UnsafeAppendToBitmapSpan is the performance-critical inner loop: it walks
// validBytes a byte at a time, maintaining a current output byte register
// and flushing on each 8-bit boundary. A nil validBytes sets length bits
// valid in one shot via UnsafeSetNotNull.
func (b *base) UnsafeAppendToBitmapSpan(validBytes []byte, length int) {
	if validBytes == nil {
		b.UnsafeSetNotNull(length)
		return
	}

	bits := b.bitmapBytes()
	byteOffset := b.length / 8
	bitOffset := b.length % 8
	current := bits[byteOffset]

	for _, v := range validBytes[:length] {
		if bitOffset == 8 {
			bitOffset = 0
			bits[byteOffset] = current
			byteOffset++
			current = bits[byteOffset]
		}

		if v != 0 {
			current |= bitutil.BitMask[bitOffset]
		} else {
			current &= bitutil.FlippedBitMask[bitOffset]
			b.nullCount++
		}
		bitOffset++
	}

	if bitOffset != 0 {
		bits[byteOffset] = current
	}
	b.length += length
}

// UnsafeSetNotNull sets the next n bits to valid and advances length by n.
func (b *base) UnsafeSetNotNull(n int) {
	bits := b.bitmapBytes()
	padToByte := min(8-(b.length%8), n)
	if padToByte == 8 {
		padToByte = 0
	}
	for i := b.length; i < b.length+padToByte; i++ {
		bitutil.SetBit(bits, i)
	}

	start := (b.length + padToByte) / 8
	fastLength := (n - padToByte) / 8
	if fastLength > 0 {
		memory.Set(bits[start:start+fastLength], 0xff)
	}

	newLength := b.length + n
	for i := b.length + padToByte + fastLength*8; i < newLength; i++ {
		bitutil.SetBit(bits, i)
	}
	b.length = newLength
}

// reset empties all base state: length, null count, capacity, bitmap.
func (b *base) reset() {
	b.releaseBitmap()
	b.length = 0
	b.nullCount = 0
	b.capacity = 0
}

// trimmedBitmap returns a bitmap buffer trimmed to ceil(length/8) bytes,
// suitable for transfer into an immutable array. Returns nil if length is 0
// and no bitmap was ever allocated (an all-valid array needs no bitmap).
func (b *base) trimmedBitmap() *memory.Buffer {
	if b.nullBitmap == nil {
		return nil
	}
	needed := bitutil.CeilByte(b.length) / 8
	b.nullBitmap.Resize(needed)
	out := b.nullBitmap
	b.nullBitmap = nil
	return out
}
