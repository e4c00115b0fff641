package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// BooleanBuilder builds a bit-packed boolean column. Its values buffer uses
// the same one-bit-per-slot convention as the validity bitmap.
type BooleanBuilder struct {
	base
	values *memory.Buffer
	mem    memory.Allocator
}

// NewBooleanBuilder constructs a BooleanBuilder.
func NewBooleanBuilder(mem memory.Allocator) *BooleanBuilder {
	b := &BooleanBuilder{mem: mem}
	b.init(mem, arrow.FixedWidthTypes.Boolean)
	return b
}

func (b *BooleanBuilder) Release() {
	b.refCount--
	if b.refCount == 0 {
		b.releaseBitmap()
		if b.values != nil {
			b.values.Release()
			b.values = nil
		}
	}
}

func (b *BooleanBuilder) valuesBytes() []byte {
	if b.values == nil {
		b.values = memory.NewResizableBuffer(b.mem)
		b.values.Resize(bitutil.CeilByte(b.capacity) / 8)
		memory.Set(b.values.Buf(), 0)
	}
	return b.values.Bytes()
}

func (b *BooleanBuilder) resizeValues(newCapacity int) {
	newBytes := bitutil.CeilByte(newCapacity) / 8
	if b.values == nil {
		b.values = memory.NewResizableBuffer(b.mem)
		b.values.Resize(newBytes)
		memory.Set(b.values.Buf(), 0)
		return
	}
	old := b.values.Len()
	b.values.Resize(newBytes)
	if old < newBytes {
		memory.Set(b.values.Buf()[old:], 0)
	}
}

// Reserve ensures capacity for n additional booleans.
func (b *BooleanBuilder) Reserve(n int) {
	needsGrow := b.length+n > b.capacity
	b.base.Reserve(n)
	if needsGrow {
		b.resizeValues(b.capacity)
	}
}

// Resize sets capacity to exactly newCapacity booleans, or to
// MinBuilderCapacity if newCapacity is smaller than that.
func (b *BooleanBuilder) Resize(newCapacity int) error {
	if err := b.base.Resize(newCapacity); err != nil {
		return err
	}
	b.resizeValues(b.capacity)
	return nil
}

// Append appends a single non-null boolean.
func (b *BooleanBuilder) Append(v bool) {
	b.Reserve(1)
	b.UnsafeAppend(v)
}

// UnsafeAppend appends a single non-null boolean without checking capacity.
func (b *BooleanBuilder) UnsafeAppend(v bool) {
	bits := b.valuesBytes()
	if v {
		bitutil.SetBit(bits, b.length)
	} else {
		bitutil.ClearBit(bits, b.length)
	}
	b.UnsafeAppendToBitmap(true)
}

// AppendNull appends a null; the value bit is left cleared.
func (b *BooleanBuilder) AppendNull() error {
	b.Reserve(1)
	bitutil.ClearBit(b.valuesBytes(), b.length)
	b.UnsafeAppendToBitmap(false)
	return nil
}

// AppendValues bulk-appends values with a parallel validity byte span (nil
// means all valid).
func (b *BooleanBuilder) AppendValues(values []bool, validBytes []byte) {
	b.Reserve(len(values))
	bits := b.valuesBytes()
	for i, v := range values {
		if v {
			bitutil.SetBit(bits, b.length+i)
		} else {
			bitutil.ClearBit(bits, b.length+i)
		}
	}
	b.UnsafeAppendToBitmapSpan(validBytes, len(values))
}

func (b *BooleanBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray trims both bitmaps, assembles an immutable array, and resets.
func (b *BooleanBuilder) NewArray() arrow.Array {
	data := b.newData()
	defer data.Release()
	return array.MakeFromData(data)
}

func (b *BooleanBuilder) newData() *array.Data {
	neededBytes := bitutil.CeilByte(b.length) / 8
	if b.values == nil {
		b.values = memory.NewResizableBuffer(b.mem)
		b.values.Resize(neededBytes)
		memory.Set(b.values.Buf(), 0)
	} else {
		b.values.Resize(neededBytes)
	}
	bitmap := b.trimmedBitmap()

	values := b.values
	b.values = nil
	data := array.NewData(b.dtype, b.length, []*memory.Buffer{bitmap, values}, nil, b.nullCount, 0)
	values.Release()
	if bitmap != nil {
		bitmap.Release()
	}
	b.base.reset()
	return data
}
