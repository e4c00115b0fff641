package builder

import (
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// FixedWidth is the set of Go scalar types PrimitiveBuilder can hold
// directly as fixed-width values buffers.
type FixedWidth interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// PrimitiveBuilder builds a fixed-width numeric column of element type T.
type PrimitiveBuilder[T FixedWidth] struct {
	base
	values *TypedBufferBuilder[T]
}

// NewPrimitiveBuilder constructs a PrimitiveBuilder for the given arrow type
// tag, e.g. arrow.PrimitiveTypes.Int32.
func NewPrimitiveBuilder[T FixedWidth](mem memory.Allocator, dtype arrow.DataType) *PrimitiveBuilder[T] {
	b := &PrimitiveBuilder[T]{}
	b.init(mem, dtype)
	b.values = NewTypedBufferBuilder[T](mem, int(unsafe.Sizeof(*new(T))))
	return b
}

func (b *PrimitiveBuilder[T]) Release() {
	b.refCount--
	if b.refCount == 0 {
		b.releaseBitmap()
		b.values.Reset()
	}
}

// Values returns the values appended so far, valid until the next mutating
// call.
func (b *PrimitiveBuilder[T]) Values() []T { return b.values.Values() }

// Append appends a single non-null value.
func (b *PrimitiveBuilder[T]) Append(v T) {
	b.Reserve(1)
	b.UnsafeAppend(v)
}

// UnsafeAppend appends a single non-null value without checking capacity.
func (b *PrimitiveBuilder[T]) UnsafeAppend(v T) {
	b.values.UnsafeAppendValue(v)
	b.UnsafeAppendToBitmap(true)
}

// AppendNull appends a null, zero-filling its value slot.
func (b *PrimitiveBuilder[T]) AppendNull() error {
	b.Reserve(1)
	b.UnsafeAppendNull()
	return nil
}

// UnsafeAppendNull appends a null without checking capacity.
func (b *PrimitiveBuilder[T]) UnsafeAppendNull() {
	var zero T
	b.values.UnsafeAppendValue(zero)
	b.UnsafeAppendToBitmap(false)
}

// Reserve ensures space for n additional elements in both the values
// buffer and the validity bitmap.
func (b *PrimitiveBuilder[T]) Reserve(n int) {
	b.base.Reserve(n)
	b.values.Reserve(n)
}

// Resize sets the builder's capacity to exactly newCapacity elements (or to
// MinBuilderCapacity if newCapacity is smaller) and reserves room for at
// least newCapacity elements in the values buffer.
func (b *PrimitiveBuilder[T]) Resize(newCapacity int) error {
	if err := b.base.Resize(newCapacity); err != nil {
		return err
	}
	if extra := newCapacity - b.values.Len(); extra > 0 {
		b.values.Reserve(extra)
	}
	return nil
}

// AppendValues bulk-copies n values and appends n validity bits. A nil
// validBytes means all values are valid. Per spec.md §9 Open Question 3,
// the source bytes for a null slot are written through unmodified (they may
// be nonzero) — only the validity bit is cleared.
func (b *PrimitiveBuilder[T]) AppendValues(values []T, validBytes []byte) {
	b.Reserve(len(values))
	for _, v := range values {
		b.values.UnsafeAppendValue(v)
	}
	b.UnsafeAppendToBitmapSpan(validBytes, len(values))
}

// RepeatLastValue appends the most recently appended slot's value (or
// null), n more times, without a caller round-trip.
func (b *PrimitiveBuilder[T]) RepeatLastValue(n int) {
	if b.length == 0 {
		return
	}
	last := b.length - 1
	if b.nullBitmap != nil && !bitutil.BitIsSet(b.nullBitmap.Bytes(), last) {
		b.Reserve(n)
		for i := 0; i < n; i++ {
			b.UnsafeAppendNull()
		}
		return
	}
	v := b.Values()[last]
	b.Reserve(n)
	for i := 0; i < n; i++ {
		b.UnsafeAppend(v)
	}
}

// ResetToLength truncates the builder back to a shorter already-built
// prefix, discarding the tail.
func (b *PrimitiveBuilder[T]) ResetToLength(n int) error {
	if n > b.length {
		return Errorf(Invalid, "cannot reset to length %d beyond current length %d", n, b.length)
	}
	if n == b.length {
		return nil
	}
	if b.nullBitmap != nil {
		bits := b.nullBitmap.Bytes()
		for i := n; i < b.length; i++ {
			bitutil.ClearBit(bits, i)
		}
		b.nullCount = n - bitutil.CountSetBits(bits, 0, n)
	}
	b.length = n
	b.values.Truncate(n)
	return nil
}

func (b *PrimitiveBuilder[T]) Finish() arrow.Array {
	return b.NewArray()
}

// NewArray trims buffers, assembles an immutable array, and resets the
// builder to empty.
func (b *PrimitiveBuilder[T]) NewArray() arrow.Array {
	data := b.newData()
	defer data.Release()
	return array.MakeFromData(data)
}

func (b *PrimitiveBuilder[T]) newData() *array.Data {
	valuesBuf := b.values.Finish()
	valuesBuf.Resize(b.length * int(unsafe.Sizeof(*new(T))))
	bitmap := b.trimmedBitmap()

	buffers := []*memory.Buffer{bitmap, valuesBuf}
	data := array.NewData(b.dtype, b.length, buffers, nil, b.nullCount, 0)
	valuesBuf.Release()
	if bitmap != nil {
		bitmap.Release()
	}
	b.reset()
	return data
}

func (b *PrimitiveBuilder[T]) reset() {
	b.base.reset()
	b.values.Reset()
}
