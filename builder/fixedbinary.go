package builder

import (
	"encoding/binary"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// FixedSizeBinaryBuilder builds a column of opaque fixed-width byte
// strings, packed contiguously as length*byteWidth bytes.
type FixedSizeBinaryBuilder struct {
	base
	byteWidth int
	values    *BufferBuilder
}

// NewFixedSizeBinaryBuilder constructs a FixedSizeBinaryBuilder for the
// given fixed-size-binary type tag.
func NewFixedSizeBinaryBuilder(mem memory.Allocator, dtype *arrow.FixedSizeBinaryType) *FixedSizeBinaryBuilder {
	b := &FixedSizeBinaryBuilder{byteWidth: dtype.ByteWidth}
	b.init(mem, dtype)
	b.values = NewBufferBuilder(mem)
	return b
}

func (b *FixedSizeBinaryBuilder) Release() {
	b.refCount--
	if b.refCount == 0 {
		b.releaseBitmap()
		b.values.Reset()
	}
}

// ByteWidth returns the fixed byte width of each slot.
func (b *FixedSizeBinaryBuilder) ByteWidth() int { return b.byteWidth }

// Append copies exactly ByteWidth() bytes from v. Fails if len(v) does not
// equal ByteWidth().
func (b *FixedSizeBinaryBuilder) Append(v []byte) error {
	if len(v) != b.byteWidth {
		return Errorf(Invalid, "fixed-size-binary value has length %d, want %d", len(v), b.byteWidth)
	}
	b.Reserve(1)
	b.values.Append(v)
	b.UnsafeAppendToBitmap(true)
	return nil
}

// AppendNull appends ByteWidth() zero bytes and marks the slot null.
func (b *FixedSizeBinaryBuilder) AppendNull() error {
	b.Reserve(1)
	b.values.Append(make([]byte, b.byteWidth))
	b.UnsafeAppendToBitmap(false)
	return nil
}

// AppendValues appends a concatenated span of n*ByteWidth() bytes, with an
// optional parallel validity byte span.
func (b *FixedSizeBinaryBuilder) AppendValues(data []byte, validBytes []byte) error {
	if len(data)%b.byteWidth != 0 {
		return Errorf(Invalid, "data length %d is not a multiple of byte width %d", len(data), b.byteWidth)
	}
	n := len(data) / b.byteWidth
	b.Reserve(n)
	b.values.Append(data)
	b.UnsafeAppendToBitmapSpan(validBytes, n)
	return nil
}

// GetValue returns a transient view of slot i's bytes.
func (b *FixedSizeBinaryBuilder) GetValue(i int) []byte {
	start := i * b.byteWidth
	return b.values.Bytes()[start : start+b.byteWidth]
}

func (b *FixedSizeBinaryBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray trims the values buffer to length*byteWidth and assembles an
// immutable fixed-size-binary array.
func (b *FixedSizeBinaryBuilder) NewArray() arrow.Array {
	data := b.newData()
	defer data.Release()
	return array.MakeFromData(data)
}

func (b *FixedSizeBinaryBuilder) newData() *array.Data {
	values := b.values.Finish()
	values.Resize(b.length * b.byteWidth)
	bitmap := b.trimmedBitmap()

	data := array.NewData(b.dtype, b.length, []*memory.Buffer{bitmap, values}, nil, b.nullCount, 0)
	values.Release()
	if bitmap != nil {
		bitmap.Release()
	}
	b.base.reset()
	return data
}

// Decimal128Builder is a FixedSizeBinaryBuilder with byteWidth=16 and a
// typed Append for decimal128.Num values.
type Decimal128Builder struct {
	FixedSizeBinaryBuilder
}

// NewDecimal128Builder constructs a Decimal128Builder for the given
// decimal type tag.
func NewDecimal128Builder(mem memory.Allocator, dtype *arrow.Decimal128Type) *Decimal128Builder {
	b := &Decimal128Builder{}
	b.byteWidth = 16
	b.init(mem, dtype)
	b.values = NewBufferBuilder(mem)
	return b
}

// AppendDecimal128 writes v's little-endian two's-complement encoding.
func (b *Decimal128Builder) AppendDecimal128(v decimal128.Num) error {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], v.LowBits())
	binary.LittleEndian.PutUint64(buf[8:16], uint64(v.HighBits()))
	return b.FixedSizeBinaryBuilder.Append(buf[:])
}

func (b *Decimal128Builder) Finish() arrow.Array { return b.NewArray() }

// NewArray produces an immutable decimal128 array.
func (b *Decimal128Builder) NewArray() arrow.Array {
	data := b.FixedSizeBinaryBuilder.newData()
	defer data.Release()
	return array.MakeFromData(data)
}
