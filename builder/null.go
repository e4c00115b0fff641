package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// NullBuilder builds a length-only column of all nulls: no values buffer,
// no validity bitmap (every slot is implicitly null).
type NullBuilder struct {
	length   int
	refCount int64
}

// NewNullBuilder constructs a NullBuilder.
func NewNullBuilder(memory.Allocator) *NullBuilder {
	return &NullBuilder{refCount: 1}
}

func (b *NullBuilder) Type() arrow.DataType { return arrow.Null }
func (b *NullBuilder) Len() int             { return b.length }
func (b *NullBuilder) Cap() int             { return b.length }
func (b *NullBuilder) NullN() int           { return b.length }
func (b *NullBuilder) Reserve(int)          {}
func (b *NullBuilder) Resize(int) error     { return nil }
func (b *NullBuilder) Retain()              { b.refCount++ }
func (b *NullBuilder) Release()             { b.refCount-- }

// AppendNull increments length; there is nothing else to track.
func (b *NullBuilder) AppendNull() error {
	b.length++
	return nil
}

// Append appends a nil value, equivalent to AppendNull.
func (b *NullBuilder) Append(v any) error {
	if v != nil {
		return Errorf(Invalid, "NullBuilder.Append requires a nil value, got %T", v)
	}
	return b.AppendNull()
}

func (b *NullBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray produces a length-n null array and resets length to zero.
func (b *NullBuilder) NewArray() arrow.Array {
	data := array.NewData(arrow.Null, b.length, []*memory.Buffer{nil}, nil, b.length, 0)
	defer data.Release()
	b.length = 0
	return array.MakeFromData(data)
}
