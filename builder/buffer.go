package builder

import (
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// BufferBuilder is a grow-on-demand raw byte buffer. Capacity grows
// geometrically to the next power of two of the requested size. It backs
// the values/offsets buffers of every concrete builder in this package.
type BufferBuilder struct {
	mem    memory.Allocator
	buf    *memory.Buffer
	length int
}

// NewBufferBuilder returns an empty BufferBuilder backed by mem.
func NewBufferBuilder(mem memory.Allocator) *BufferBuilder {
	return &BufferBuilder{mem: mem}
}

// Len returns the number of bytes appended so far.
func (b *BufferBuilder) Len() int { return b.length }

// Cap returns the number of bytes that can be held without reallocating.
func (b *BufferBuilder) Cap() int {
	if b.buf == nil {
		return 0
	}
	return b.buf.Cap()
}

// Bytes returns the live, already-written portion of the backing buffer.
// The slice is only valid until the next mutating call.
func (b *BufferBuilder) Bytes() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf.Bytes()[:b.length]
}

func (b *BufferBuilder) resize(newCap int) {
	if b.buf == nil {
		b.buf = memory.NewResizableBuffer(b.mem)
	}
	b.buf.Resize(newCap)
}

// Reserve ensures capacity for n additional bytes, growing geometrically.
func (b *BufferBuilder) Reserve(n int) {
	if b.Cap() < b.length+n {
		newCap := bitutil.NextPowerOf2(b.length + n)
		b.resize(newCap)
	}
}

// Append appends data, growing as necessary.
func (b *BufferBuilder) Append(data []byte) {
	b.Reserve(len(data))
	b.UnsafeAppend(data)
}

// UnsafeAppend appends data without checking capacity; valid only after a
// matching Reserve.
func (b *BufferBuilder) UnsafeAppend(data []byte) {
	copy(b.buf.Bytes()[b.length:], data)
	b.length += len(data)
}

// Truncate sets the logical length back to n bytes, discarding any longer
// tail without releasing the backing allocation.
func (b *BufferBuilder) Truncate(n int) { b.length = n }

// Advance increments the logical length by n without writing any bytes;
// the caller must have written those bytes directly, e.g. via Bytes().
func (b *BufferBuilder) Advance(n int) { b.length += n }

// Finish trims the backing buffer to exactly Len() bytes, transfers
// ownership to the caller, and resets the builder to empty.
func (b *BufferBuilder) Finish() *memory.Buffer {
	if b.buf == nil {
		return memory.NewResizableBuffer(b.mem)
	}
	b.buf.Resize(b.length)
	out := b.buf
	b.buf = nil
	b.length = 0
	return out
}

// Reset discards any accumulated bytes and releases the backing buffer.
func (b *BufferBuilder) Reset() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
	b.length = 0
}

// TypedBufferBuilder is a thin typed facade over BufferBuilder: lengths and
// offsets are expressed in elements of T rather than bytes.
type TypedBufferBuilder[T any] struct {
	bb        *BufferBuilder
	sizeofT   int
}

// NewTypedBufferBuilder returns a TypedBufferBuilder for elements of the
// given byte width (e.g. 4 for int32, 8 for int64).
func NewTypedBufferBuilder[T any](mem memory.Allocator, sizeofT int) *TypedBufferBuilder[T] {
	return &TypedBufferBuilder[T]{bb: NewBufferBuilder(mem), sizeofT: sizeofT}
}

// Len returns the number of elements appended so far.
func (t *TypedBufferBuilder[T]) Len() int { return t.bb.Len() / t.sizeofT }

// Cap returns the number of elements that fit without reallocating.
func (t *TypedBufferBuilder[T]) Cap() int { return t.bb.Cap() / t.sizeofT }

// Reserve ensures capacity for n additional elements.
func (t *TypedBufferBuilder[T]) Reserve(n int) { t.bb.Reserve(n * t.sizeofT) }

// Bytes returns the raw backing bytes, valid until the next mutating call.
func (t *TypedBufferBuilder[T]) Bytes() []byte { return t.bb.Bytes() }

// Finish trims and transfers ownership of the backing buffer.
func (t *TypedBufferBuilder[T]) Finish() *memory.Buffer { return t.bb.Finish() }

// Reset discards accumulated elements.
func (t *TypedBufferBuilder[T]) Reset() { t.bb.Reset() }

// Truncate sets the logical length back to n elements.
func (t *TypedBufferBuilder[T]) Truncate(n int) { t.bb.Truncate(n * t.sizeofT) }

// AppendValue reserves room for and appends a single element.
func (t *TypedBufferBuilder[T]) AppendValue(v T) {
	t.Reserve(1)
	t.UnsafeAppendValue(v)
}

// UnsafeAppendValue appends a single element without checking capacity;
// valid only after a matching Reserve.
func (t *TypedBufferBuilder[T]) UnsafeAppendValue(v T) {
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&v)), t.sizeofT)
	t.bb.UnsafeAppend(raw)
}

// Values reinterprets the accumulated bytes as a []T slice, valid until the
// next mutating call.
func (t *TypedBufferBuilder[T]) Values() []T {
	n := t.Len()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&t.bb.Bytes()[0])), n)
}
