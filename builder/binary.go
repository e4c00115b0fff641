package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// BinaryBuilder builds a variable-length byte-string column: a 32-bit
// offsets buffer plus a raw values buffer, on top of the inherited
// validity bitmap.
type BinaryBuilder struct {
	base
	offsets *TypedBufferBuilder[int32]
	values  *BufferBuilder
}

// NewBinaryBuilder constructs a BinaryBuilder. Each Append* call records
// only the starting offset of its slot; the trailing offset (the total
// byte length) is appended once by newData on finalization, per spec.md
// §4.5. dtype is typically arrow.BinaryTypes.Binary or
// arrow.BinaryTypes.String.
func NewBinaryBuilder(mem memory.Allocator, dtype arrow.DataType) *BinaryBuilder {
	b := &BinaryBuilder{}
	b.init(mem, dtype)
	b.offsets = NewTypedBufferBuilder[int32](mem, 4)
	b.values = NewBufferBuilder(mem)
	return b
}

// NewStringBuilder constructs a BinaryBuilder whose byte payload is by
// convention UTF-8; no validation is performed on append (spec.md §4.5,
// §9 Open Question 2).
func NewStringBuilder(mem memory.Allocator) *BinaryBuilder {
	return NewBinaryBuilder(mem, arrow.BinaryTypes.String)
}

func (b *BinaryBuilder) Release() {
	b.refCount--
	if b.refCount == 0 {
		b.releaseBitmap()
		b.offsets.Reset()
		b.values.Reset()
	}
}

// DataLen returns the number of bytes in the values buffer so far.
func (b *BinaryBuilder) DataLen() int { return b.values.Len() }

// ReserveData pre-reserves n additional bytes of values-buffer capacity.
func (b *BinaryBuilder) ReserveData(n int) error {
	if b.values.Len()+n > BinaryMemoryLimit {
		return Errorf(Invalid, "ReserveData would exceed binary memory limit %d", BinaryMemoryLimit)
	}
	b.values.Reserve(n)
	return nil
}

// Append appends a byte slice. Fails if the resulting payload would exceed
// kBinaryMemoryLimit or if the element count would exceed
// kListMaximumElements.
func (b *BinaryBuilder) Append(v []byte) error {
	if b.values.Len()+len(v) > BinaryMemoryLimit {
		return Errorf(Invalid, "Append would exceed binary memory limit %d", BinaryMemoryLimit)
	}
	if b.length+1 > ListMaximumElements {
		return Errorf(Invalid, "Append would exceed maximum element count %d", ListMaximumElements)
	}
	b.Reserve(1)
	b.appendNextOffset()
	b.values.Append(v)
	b.UnsafeAppendToBitmap(true)
	return nil
}

// AppendString appends the UTF-8 bytes of v.
func (b *BinaryBuilder) AppendString(v string) error { return b.Append([]byte(v)) }

// AppendNull appends a null; the offset still advances by zero (a
// zero-length slot), and no value bytes are written.
func (b *BinaryBuilder) AppendNull() error {
	b.Reserve(1)
	b.appendNextOffset()
	b.UnsafeAppendToBitmap(false)
	return nil
}

// AppendValues appends the byte slices in v. validBytes, if non-nil, must
// be equal in length to v; a zero byte marks that slot null.
func (b *BinaryBuilder) AppendValues(v [][]byte, validBytes []byte) error {
	if validBytes != nil && len(validBytes) != len(v) {
		return Errorf(Invalid, "len(validBytes)=%d != len(v)=%d", len(validBytes), len(v))
	}
	b.Reserve(len(v))
	for _, vv := range v {
		if b.values.Len()+len(vv) > BinaryMemoryLimit {
			return Errorf(Invalid, "AppendValues would exceed binary memory limit %d", BinaryMemoryLimit)
		}
		b.appendNextOffset()
		b.values.Append(vv)
	}
	b.UnsafeAppendToBitmapSpan(validBytes, len(v))
	return nil
}

// AppendStringValues treats any nil-pointer element of values as a null
// slot, even if the caller's validBytes says otherwise, per spec.md §4.5.
func (b *BinaryBuilder) AppendStringValues(values []*string, validBytes []byte) error {
	b.Reserve(len(values))
	for _, v := range values {
		b.appendNextOffset()
		if v != nil {
			b.values.Append([]byte(*v))
		}
	}
	for i := range values {
		valid := values[i] != nil
		if validBytes != nil && validBytes[i] == 0 {
			valid = false
		}
		b.UnsafeAppendToBitmap(valid)
	}
	return nil
}

// GetValue returns a transient view into the values buffer for slot i. The
// returned slice is invalidated by any subsequent modifying operation.
func (b *BinaryBuilder) GetValue(i int) []byte {
	offsets := b.offsets.Values()
	start := offsets[i]
	var end int32
	if i == b.length-1 {
		end = int32(b.values.Len())
	} else {
		end = offsets[i+1]
	}
	return b.values.Bytes()[start:end]
}

// GetView is an alias for GetValue, matching the C++ original's naming.
func (b *BinaryBuilder) GetView(i int) []byte { return b.GetValue(i) }

func (b *BinaryBuilder) appendNextOffset() {
	b.offsets.AppendValue(int32(b.values.Len()))
}

// RepeatLastValue appends the most recently appended slot's bytes (or
// null), n more times.
func (b *BinaryBuilder) RepeatLastValue(n int) error {
	if b.length == 0 {
		return nil
	}
	if b.nullBitmap != nil && !bitutil.BitIsSet(b.nullBitmap.Bytes(), b.length-1) {
		b.Reserve(n)
		for i := 0; i < n; i++ {
			b.appendNextOffset()
			b.UnsafeAppendToBitmap(false)
		}
		return nil
	}
	last := append([]byte(nil), b.GetValue(b.length-1)...)
	if b.values.Len()+len(last)*n > BinaryMemoryLimit {
		return Errorf(Invalid, "RepeatLastValue would exceed binary memory limit %d", BinaryMemoryLimit)
	}
	b.Reserve(n)
	for i := 0; i < n; i++ {
		b.appendNextOffset()
		b.values.Append(last)
		b.UnsafeAppendToBitmap(true)
	}
	return nil
}

// ResetToLength truncates the builder back to a shorter already-built
// prefix, discarding the tail.
func (b *BinaryBuilder) ResetToLength(n int) error {
	if n > b.length {
		return Errorf(Invalid, "cannot reset to length %d beyond current length %d", n, b.length)
	}
	if n == b.length {
		return nil
	}
	cut := b.offsets.Values()[n]
	b.values.Truncate(int(cut))
	b.offsets.Truncate(n)
	if b.nullBitmap != nil {
		bits := b.nullBitmap.Bytes()
		for i := n; i < b.length; i++ {
			bitutil.ClearBit(bits, i)
		}
		b.nullCount = n - bitutil.CountSetBits(bits, 0, n)
	}
	b.length = n
	return nil
}

func (b *BinaryBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray emits the final trailing offset, trims buffers, and assembles an
// immutable binary array.
func (b *BinaryBuilder) NewArray() arrow.Array {
	data := b.newData()
	defer data.Release()
	return array.MakeFromData(data)
}

func (b *BinaryBuilder) newData() *array.Data {
	b.appendNextOffset()

	offsets := b.offsets.Finish()
	values := b.values.Finish()
	bitmap := b.trimmedBitmap()

	data := array.NewData(b.dtype, b.length, []*memory.Buffer{bitmap, offsets, values}, nil, b.nullCount, 0)
	offsets.Release()
	values.Release()
	if bitmap != nil {
		bitmap.Release()
	}
	b.base.reset()
	b.offsets = NewTypedBufferBuilder[int32](b.mem, 4)
	b.values = NewBufferBuilder(b.mem)
	return data
}
