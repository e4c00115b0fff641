package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DictionaryBuilder builds a dictionary-encoded column: a memoization table
// mapping each distinct observed value to a dense index, plus an
// adaptive-int indices builder that carries the column's own validity
// bitmap (a dictionary slot is null iff its index is null). Finalizing
// does not reset the memo table — each Finish after the first emits only
// the delta added since the previous one. Callers wanting a self-contained
// (non-delta) array on every Finish must call Reset after each Finish.
//
// The memo table is a Go map, so values are keyed by Go's == operator, not
// by bit pattern: for floating-point T, +0.0 and -0.0 share one entry, and
// every NaN (bit-identical or not) misses the map and gets its own entry.
type DictionaryBuilder[T comparable] struct {
	mem       memory.Allocator
	dtype     *arrow.DictionaryType
	valueType arrow.DataType
	refCount  int64

	indices *AdaptiveIntBuilder

	memoTable map[T]int32
	memoVals  []T

	deltaOffset int
}

// NewDictionaryBuilder constructs a DictionaryBuilder whose dictionary
// values are of type valueType.
func NewDictionaryBuilder[T comparable](mem memory.Allocator, valueType arrow.DataType) *DictionaryBuilder[T] {
	return &DictionaryBuilder[T]{
		mem:       mem,
		dtype:     &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: valueType},
		valueType: valueType,
		refCount:  1,
		indices:   NewAdaptiveIntBuilder(mem),
		memoTable: make(map[T]int32),
	}
}

func (b *DictionaryBuilder[T]) Type() arrow.DataType { return b.dtype }
func (b *DictionaryBuilder[T]) Len() int             { return b.indices.Len() }
func (b *DictionaryBuilder[T]) Cap() int             { return b.indices.Cap() }
func (b *DictionaryBuilder[T]) NullN() int           { return b.indices.NullN() }
func (b *DictionaryBuilder[T]) Reserve(n int)        { b.indices.Reserve(n) }
func (b *DictionaryBuilder[T]) Resize(n int) error   { return b.indices.Resize(n) }
func (b *DictionaryBuilder[T]) Retain()              { b.refCount++ }

func (b *DictionaryBuilder[T]) Release() {
	b.refCount--
	if b.refCount == 0 {
		b.indices.Release()
	}
}

// IsBuildingDelta reports whether the next Finish will emit a non-empty
// delta dictionary, i.e. whether any new values were memoized since the
// last Finish (or since construction/Reset, if none yet).
func (b *DictionaryBuilder[T]) IsBuildingDelta() bool { return len(b.memoVals) > b.deltaOffset }

// DictionarySize returns the current memo table size (total distinct
// values observed, not just the pending delta).
func (b *DictionaryBuilder[T]) DictionarySize() int { return len(b.memoVals) }

// memoIndex looks up value, inserting it with the next dense index if
// absent, and returns its index either way.
func (b *DictionaryBuilder[T]) memoIndex(value T) int32 {
	if idx, ok := b.memoTable[value]; ok {
		return idx
	}
	idx := int32(len(b.memoVals))
	b.memoTable[value] = idx
	b.memoVals = append(b.memoVals, value)
	return idx
}

// Append memoizes value if unseen and appends its index as a valid slot.
func (b *DictionaryBuilder[T]) Append(value T) error {
	idx := b.memoIndex(value)
	b.indices.Append(int64(idx))
	return nil
}

// AppendNull appends a null to the indices builder; no memo lookup occurs.
func (b *DictionaryBuilder[T]) AppendNull() error {
	return b.indices.AppendNull()
}

// AppendValues bulk-appends values with a parallel validity byte span (nil
// means all valid); a false validity byte appends a null regardless of the
// corresponding value.
func (b *DictionaryBuilder[T]) AppendValues(values []T, validBytes []byte) error {
	for i, v := range values {
		if validBytes != nil && validBytes[i] == 0 {
			if err := b.indices.AppendNull(); err != nil {
				return err
			}
			continue
		}
		idx := b.memoIndex(v)
		b.indices.Append(int64(idx))
	}
	return nil
}

// Reset unconditionally empties all state, including the memo table and
// delta_offset, unlike Finish.
func (b *DictionaryBuilder[T]) Reset() {
	b.indices.Release()
	b.indices = NewAdaptiveIntBuilder(b.mem)
	b.memoTable = make(map[T]int32)
	b.memoVals = nil
	b.deltaOffset = 0
}

// NewArray produces a dictionary array whose dictionary child holds only
// the delta memo-table entries [delta_offset, memo_size), and whose
// indices child is the finalized values_builder. It then sets
// delta_offset to the current memo size without clearing the memo table
// (per spec.md §4.9), so the next Finish again emits only its own delta.
func (b *DictionaryBuilder[T]) NewArray() arrow.Array { return b.newDictArray() }

func (b *DictionaryBuilder[T]) Finish() arrow.Array { return b.newDictArray() }

func (b *DictionaryBuilder[T]) newDictArray() *array.Dictionary {
	dictArr := b.buildDictionaryDelta()
	defer dictArr.Release()

	indicesArr := b.indices.NewArray()
	defer indicesArr.Release()

	dtype := &arrow.DictionaryType{IndexType: indicesArr.DataType(), ValueType: b.valueType}
	out := array.NewDictionaryArray(dtype, indicesArr, dictArr)
	b.deltaOffset = len(b.memoVals)
	return out
}

// buildDictionaryDelta materializes memo entries [delta_offset, memo_size)
// as a dense array of the dictionary's value type, via a fresh builder of
// that same type.
func (b *DictionaryBuilder[T]) buildDictionaryDelta() arrow.Array {
	bld, err := MakeBuilder(b.mem, b.valueType)
	if err != nil {
		panic(err)
	}
	defer bld.Release()

	for _, v := range b.memoVals[b.deltaOffset:] {
		appendMemoValue(bld, v)
	}
	return bld.NewArray()
}

// appendMemoValue appends a single memoized value of generic type T to a
// freshly dispatched builder. T is expected to match the concrete type the
// builder wants (int64/uint64 for adaptive-int/uint, []byte or string for
// binary/string).
func appendMemoValue[T comparable](bld Builder, v T) {
	switch typed := any(v).(type) {
	case string:
		bld.(*BinaryBuilder).AppendString(typed)
	case []byte:
		bld.(*BinaryBuilder).Append(typed)
	case int64:
		bld.(*AdaptiveIntBuilder).Append(typed)
	case uint64:
		bld.(*AdaptiveUintBuilder).Append(typed)
	default:
		panic(Errorf(NotImplemented, "dictionary value type %T has no memo-append binding", v))
	}
}

// DictionaryNullBuilder is the NullType specialization of DictionaryBuilder
// per spec.md §4.9: no memo table, only an indices builder that will only
// ever receive nulls, and a permanently empty (length-0) dictionary array.
type DictionaryNullBuilder struct {
	mem      memory.Allocator
	dtype    *arrow.DictionaryType
	refCount int64
	indices  *AdaptiveIntBuilder
}

// NewDictionaryNullBuilder constructs the null-value specialization of
// DictionaryBuilder.
func NewDictionaryNullBuilder(mem memory.Allocator) *DictionaryNullBuilder {
	return &DictionaryNullBuilder{
		mem:      mem,
		dtype:    &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.Null},
		refCount: 1,
		indices:  NewAdaptiveIntBuilder(mem),
	}
}

func (b *DictionaryNullBuilder) Type() arrow.DataType { return b.dtype }
func (b *DictionaryNullBuilder) Len() int             { return b.indices.Len() }
func (b *DictionaryNullBuilder) Cap() int             { return b.indices.Cap() }
func (b *DictionaryNullBuilder) NullN() int           { return b.indices.NullN() }
func (b *DictionaryNullBuilder) Reserve(n int)        { b.indices.Reserve(n) }
func (b *DictionaryNullBuilder) Resize(n int) error   { return b.indices.Resize(n) }
func (b *DictionaryNullBuilder) Retain()              { b.refCount++ }

func (b *DictionaryNullBuilder) Release() {
	b.refCount--
	if b.refCount == 0 {
		b.indices.Release()
	}
}

// AppendNull appends a null slot; there is no non-null value to append for
// this specialization.
func (b *DictionaryNullBuilder) AppendNull() error { return b.indices.AppendNull() }

func (b *DictionaryNullBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray produces a dictionary array with a length-0 dictionary child and
// the finalized (all-null) indices as its indices child.
func (b *DictionaryNullBuilder) NewArray() arrow.Array {
	nb := NewNullBuilder(b.mem)
	dictArr := nb.NewArray()
	defer dictArr.Release()

	indicesArr := b.indices.NewArray()
	defer indicesArr.Release()

	dtype := &arrow.DictionaryType{IndexType: indicesArr.DataType(), ValueType: arrow.Null}
	return array.NewDictionaryArray(dtype, indicesArr, dictArr)
}
