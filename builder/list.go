package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ListBuilder builds a variable-length nested-list column over a single
// child value_builder. Callers append child elements directly to the
// value builder between calls to Append on the list builder.
type ListBuilder struct {
	base
	etype   arrow.DataType
	values  Builder
	offsets *TypedBufferBuilder[int32]
}

// NewListBuilder constructs a ListBuilder whose elements are of type etype,
// dispatching to MakeBuilder for the child builder.
func NewListBuilder(mem memory.Allocator, etype arrow.DataType) *ListBuilder {
	b := &ListBuilder{etype: etype}
	b.init(mem, arrow.ListOf(etype))
	child, err := MakeBuilder(mem, etype)
	if err != nil {
		panic(err)
	}
	b.values = child
	b.offsets = NewTypedBufferBuilder[int32](mem, 4)
	return b
}

// NewListBuilderWithChild constructs a ListBuilder using a caller-supplied
// child builder, for cases where MakeBuilder's default construction is not
// what's wanted (e.g. a DictionaryBuilder with a pre-seeded memo table).
func NewListBuilderWithChild(mem memory.Allocator, values Builder) *ListBuilder {
	b := &ListBuilder{etype: values.Type()}
	b.init(mem, arrow.ListOf(values.Type()))
	b.values = values
	b.offsets = NewTypedBufferBuilder[int32](mem, 4)
	return b
}

func (b *ListBuilder) Release() {
	b.refCount--
	if b.refCount == 0 {
		b.releaseBitmap()
		b.offsets.Reset()
		b.values.Release()
	}
}

// ValueBuilder returns the child builder the caller should append
// elements to directly.
func (b *ListBuilder) ValueBuilder() Builder { return b.values }

func (b *ListBuilder) appendNextOffset() {
	b.offsets.AppendValue(int32(b.values.Len()))
}

// Append starts a new list slot: the current child length is recorded as
// this slot's starting offset, is_valid becomes the validity bit, and own
// length is incremented. It does not append anything to the child; the
// caller appends zero or more child elements via ValueBuilder() before the
// next Append.
func (b *ListBuilder) Append(isValid bool) error {
	if b.values.Len() > ListMaximumElements {
		return Errorf(Invalid, "list exceeds maximum element count %d", ListMaximumElements)
	}
	b.Reserve(1)
	b.appendNextOffset()
	b.UnsafeAppendToBitmap(isValid)
	return nil
}

// AppendNull is equivalent to Append(false).
func (b *ListBuilder) AppendNull() error { return b.Append(false) }

// AppendValues bulk-appends n offsets with a parallel validity byte span
// (nil means all valid).
func (b *ListBuilder) AppendValues(offsets []int32, validBytes []byte) {
	b.Reserve(len(offsets))
	for _, o := range offsets {
		b.offsets.AppendValue(o)
	}
	b.UnsafeAppendToBitmapSpan(validBytes, len(offsets))
}

func (b *ListBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray emits the final trailing offset (equal to the child's length),
// finalizes the child builder, and assembles an immutable list array.
// Invariant on finalization: offsets[length] == value_builder.length.
func (b *ListBuilder) NewArray() arrow.Array {
	data := b.newData()
	defer data.Release()
	return array.MakeFromData(data)
}

func (b *ListBuilder) newData() *array.Data {
	if b.offsets.Len() != b.length+1 {
		b.appendNextOffset()
	}

	childArr := b.values.NewArray()
	defer childArr.Release()

	offsets := b.offsets.Finish()
	bitmap := b.trimmedBitmap()

	data := array.NewData(
		b.dtype, b.length,
		[]*memory.Buffer{bitmap, offsets},
		[]arrow.ArrayData{childArr.Data()},
		b.nullCount, 0,
	)
	offsets.Release()
	if bitmap != nil {
		bitmap.Release()
	}
	b.base.reset()
	b.offsets = NewTypedBufferBuilder[int32](b.mem, 4)
	return data
}
