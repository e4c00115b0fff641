package builder

import (
	"fmt"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// RecordBuilder eases building a Record iteratively from a known schema: it
// owns one Builder per field, constructed via MakeBuilder, and assembles
// them into an arrow.Record on NewRecord.
type RecordBuilder struct {
	refCount int64
	mem      memory.Allocator
	schema   *arrow.Schema
	fields   []Builder
}

// NewRecordBuilder constructs a RecordBuilder over schema, dispatching each
// field's builder through MakeBuilder.
func NewRecordBuilder(mem memory.Allocator, schema *arrow.Schema) (*RecordBuilder, error) {
	b := &RecordBuilder{
		refCount: 1,
		mem:      mem,
		schema:   schema,
		fields:   make([]Builder, len(schema.Fields())),
	}

	for i, f := range schema.Fields() {
		fb, err := MakeBuilder(mem, f.Type)
		if err != nil {
			for j := 0; j < i; j++ {
				b.fields[j].Release()
			}
			return nil, Errorf(Invalid, "record field %d (%s): %w", i, f.Name, err)
		}
		b.fields[i] = fb
	}

	return b, nil
}

// Retain increases the reference count by 1. Safe to call from multiple
// goroutines simultaneously.
func (b *RecordBuilder) Retain() { atomic.AddInt64(&b.refCount, 1) }

// Release decreases the reference count by 1, releasing every field
// builder once it reaches zero.
func (b *RecordBuilder) Release() {
	if atomic.AddInt64(&b.refCount, -1) == 0 {
		for _, f := range b.fields {
			f.Release()
		}
		b.fields = nil
	}
}

func (b *RecordBuilder) Schema() *arrow.Schema { return b.schema }
func (b *RecordBuilder) Fields() []Builder     { return b.fields }
func (b *RecordBuilder) Field(i int) Builder   { return b.fields[i] }

// Reserve pre-reserves size additional slots in every field builder.
func (b *RecordBuilder) Reserve(size int) {
	for _, f := range b.fields {
		f.Reserve(size)
	}
}

// NewRecord finalizes every field builder and assembles an arrow.Record,
// resetting each field builder to empty in the process. The returned Record
// must be Release()'d after use.
//
// NewRecord panics if the fields' builders do not all produce the same
// number of rows, since that would be a self-inconsistent record.
func (b *RecordBuilder) NewRecord() arrow.Record {
	cols := make([]arrow.Array, len(b.fields))
	rows := int64(0)

	defer func(cols []arrow.Array) {
		for _, col := range cols {
			if col == nil {
				continue
			}
			col.Release()
		}
	}(cols)

	for i, f := range b.fields {
		cols[i] = f.NewArray()
		irow := int64(cols[i].Len())
		if i > 0 && irow != rows {
			panic(fmt.Errorf("builder: field %d has %d rows, want %d", i, irow, rows))
		}
		rows = irow
	}

	return array.NewRecord(b.schema, cols, rows)
}
