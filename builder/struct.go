package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// StructBuilder builds a column of named, independently-typed fields sharing
// one top-level validity bitmap. Callers append to each field's builder via
// FieldBuilder(i), then call Append on the StructBuilder itself to advance
// the shared length and validity.
type StructBuilder struct {
	base
	fields []Builder
}

// NewStructBuilder constructs a StructBuilder over dtype's fields, building
// one child via MakeBuilder per field in order.
func NewStructBuilder(mem memory.Allocator, dtype *arrow.StructType) (*StructBuilder, error) {
	b := &StructBuilder{}
	b.init(mem, dtype)
	fields := dtype.Fields()
	b.fields = make([]Builder, len(fields))
	for i, f := range fields {
		child, err := MakeBuilder(mem, f.Type)
		if err != nil {
			for j := 0; j < i; j++ {
				b.fields[j].Release()
			}
			return nil, Errorf(Invalid, "struct field %d (%s): %w", i, f.Name, err)
		}
		b.fields[i] = child
	}
	return b, nil
}

// NewStructBuilderWithFields constructs a StructBuilder over caller-supplied
// child builders, for cases where MakeBuilder's defaults are not wanted.
func NewStructBuilderWithFields(mem memory.Allocator, dtype *arrow.StructType, fields []Builder) *StructBuilder {
	b := &StructBuilder{fields: fields}
	b.init(mem, dtype)
	return b
}

func (b *StructBuilder) Release() {
	b.refCount--
	if b.refCount == 0 {
		b.releaseBitmap()
		for _, f := range b.fields {
			f.Release()
		}
	}
}

// NumField returns the number of child field builders.
func (b *StructBuilder) NumField() int { return len(b.fields) }

// FieldBuilder returns the i-th child field builder, for callers to append
// directly to.
func (b *StructBuilder) FieldBuilder(i int) Builder { return b.fields[i] }

// Append advances the struct's own length and validity bit by one. It does
// not touch any field builder; the caller is responsible for appending
// exactly one value (or null) to every field builder, for every Append,
// including on a null struct slot — per spec.md §4.9, struct nullness does
// not exempt fields from needing a slot.
func (b *StructBuilder) Append(isValid bool) error {
	b.Reserve(1)
	b.UnsafeAppendToBitmap(isValid)
	return nil
}

// AppendNull is equivalent to Append(false); fields still need a null slot
// appended by the caller.
func (b *StructBuilder) AppendNull() error { return b.Append(false) }

// AppendValues bulk-advances the struct's length by n slots with a parallel
// validity byte span (nil means all valid).
func (b *StructBuilder) AppendValues(n int, validBytes []byte) {
	b.Reserve(n)
	b.UnsafeAppendToBitmapSpan(validBytes, n)
}

func (b *StructBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray finalizes every field builder and assembles an immutable struct
// array. Fails (by panicking, mirroring the teacher's RecordBuilder.NewRecord
// contract) if any field's length disagrees with the struct's own length,
// since that would produce a self-inconsistent array.
func (b *StructBuilder) NewArray() arrow.Array {
	data := b.newData()
	defer data.Release()
	return array.MakeFromData(data)
}

func (b *StructBuilder) newData() *array.Data {
	children := make([]arrow.ArrayData, len(b.fields))
	for i, f := range b.fields {
		if f.Len() != b.length {
			panic(Errorf(Invalid, "struct field %d has length %d, want %d", i, f.Len(), b.length))
		}
		arr := f.NewArray()
		children[i] = arr.Data()
		defer arr.Release()
	}

	bitmap := b.trimmedBitmap()
	data := array.NewData(b.dtype, b.length, []*memory.Buffer{bitmap}, children, b.nullCount, 0)
	if bitmap != nil {
		bitmap.Release()
	}
	b.base.reset()
	return data
}
