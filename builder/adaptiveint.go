package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// pendingSize is the adaptive-int builder's pre-commit staging area: a
// fixed-size inline array, never heap-allocated per append.
const pendingSize = 1024

// adaptiveIntBase holds the state shared by AdaptiveIntBuilder (signed) and
// AdaptiveUintBuilder (unsigned): a pending buffer that defers the width
// promotion test, and a main buffer at the narrowest width observed so far.
type adaptiveIntBase struct {
	base
	data    *memory.Buffer
	intSize int // one of 1, 2, 4, 8

	pendingData     [pendingSize]uint64
	pendingValid    [pendingSize]byte
	pendingPos      int
	pendingHasNulls bool

	signed bool
}

func (b *adaptiveIntBase) init(mem memory.Allocator, signed bool) {
	b.base.mem = mem
	b.signed = signed
	b.refCount = 1
	b.intSize = 1
}

func (b *adaptiveIntBase) release() {
	b.refCount--
	if b.refCount == 0 {
		b.releaseBitmap()
		if b.data != nil {
			b.data.Release()
			b.data = nil
		}
	}
}

// widthForUnsigned returns the minimum width in {1,2,4,8} that losslessly
// holds v, per spec.md §4.4.
func widthForUnsigned(v uint64) int {
	switch {
	case v <= 0xFF:
		return 1
	case v <= 0xFFFF:
		return 2
	case v <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

// widthForSigned returns the minimum width in {1,2,4,8} that losslessly
// holds the two's-complement value stored in v, per spec.md §4.4.
func widthForSigned(v uint64) int {
	sv := int64(v)
	switch {
	case sv >= -(1<<7) && sv < (1<<7):
		return 1
	case sv >= -(1<<15) && sv < (1<<15):
		return 2
	case sv >= -(1<<31) && sv < (1<<31):
		return 4
	default:
		return 8
	}
}

func (b *adaptiveIntBase) widthFor(v uint64) int {
	if b.signed {
		return widthForSigned(v)
	}
	return widthForUnsigned(v)
}

func (b *adaptiveIntBase) dataBytes() []byte {
	if b.data == nil {
		b.data = memory.NewResizableBuffer(b.mem)
	}
	return b.data.Bytes()
}

// ensureDataCapacity resizes the main buffer to hold at least n elements at
// the current intSize. Resize (not Reserve) is required here: Reserve only
// grows capacity and leaves Len()/Bytes() at their old size, but dataBytes
// writes through Bytes() indexed by element position, so the buffer's
// length must actually cover n elements.
func (b *adaptiveIntBase) ensureDataCapacity(n int) {
	needed := n * b.intSize
	if b.data == nil {
		b.data = memory.NewResizableBuffer(b.mem)
	}
	if b.data.Len() < needed {
		b.data.Resize(needed)
	}
}

// expandIntSize reallocates the main buffer to newSize bytes per element,
// widening every previously-written value from the old width via
// sign-extension (signed) or zero-extension (unsigned).
func (b *adaptiveIntBase) expandIntSize(newSize int) {
	if newSize == b.intSize {
		return
	}
	old := b.dataBytes()[:b.length*b.intSize]
	widened := make([]byte, b.length*newSize)
	for i := 0; i < b.length; i++ {
		v := b.readWidth(old, i, b.intSize)
		writeWidth(widened, i, newSize, v)
	}
	b.intSize = newSize
	needed := b.capacity * newSize
	if b.data == nil {
		b.data = memory.NewResizableBuffer(b.mem)
	}
	b.data.Resize(needed)
	copy(b.data.Bytes(), widened)
}

// readWidth reads the i-th element of width w from buf and sign/zero
// extends it to a uint64 per b.signed.
func (b *adaptiveIntBase) readWidth(buf []byte, i, w int) uint64 {
	off := i * w
	switch w {
	case 1:
		v := buf[off]
		if b.signed {
			return uint64(int64(int8(v)))
		}
		return uint64(v)
	case 2:
		v := uint16(buf[off]) | uint16(buf[off+1])<<8
		if b.signed {
			return uint64(int64(int16(v)))
		}
		return uint64(v)
	case 4:
		v := uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
		if b.signed {
			return uint64(int64(int32(v)))
		}
		return uint64(v)
	default:
		var v uint64
		for k := 0; k < 8; k++ {
			v |= uint64(buf[off+k]) << (8 * k)
		}
		return v
	}
}

// writeWidth writes the i-th element of width w into buf from a uint64.
func writeWidth(buf []byte, i, w int, v uint64) {
	off := i * w
	for k := 0; k < w; k++ {
		buf[off+k] = byte(v >> (8 * k))
	}
}

// CommitPendingData scans the pending buffer, promotes the main buffer's
// width if needed, and writes the pending values out at the final width.
func (b *adaptiveIntBase) CommitPendingData() {
	if b.pendingPos == 0 {
		return
	}

	width := b.intSize
	for i := 0; i < b.pendingPos; i++ {
		if b.pendingValid[i] == 0 {
			continue
		}
		if w := b.widthFor(b.pendingData[i]); w > width {
			width = w
		}
	}
	if width > b.intSize {
		b.expandIntSize(width)
	}

	b.base.Reserve(b.pendingPos)
	b.ensureDataCapacity(b.length + b.pendingPos)
	buf := b.dataBytes()
	for i := 0; i < b.pendingPos; i++ {
		var v uint64
		if b.pendingValid[i] != 0 {
			v = b.pendingData[i]
		}
		writeWidth(buf, b.length+i, b.intSize, v)
	}
	for i := 0; i < b.pendingPos; i++ {
		b.UnsafeAppendToBitmap(b.pendingValid[i] != 0)
	}

	b.pendingPos = 0
	b.pendingHasNulls = false
}

// appendPendingValue stages one value and commits if the pending buffer is
// now full.
func (b *adaptiveIntBase) appendPendingValue(v uint64, valid bool) {
	b.pendingData[b.pendingPos] = v
	if valid {
		b.pendingValid[b.pendingPos] = 1
	} else {
		b.pendingValid[b.pendingPos] = 0
		b.pendingHasNulls = true
	}
	b.pendingPos++
	if b.pendingPos >= pendingSize {
		b.CommitPendingData()
	}
}

// appendValuesInternal bypasses the pending buffer: it commits any pending
// data, scans values to determine the target width, promotes if needed,
// then writes values at the current width directly.
func (b *adaptiveIntBase) appendValuesInternal(values []uint64, validBytes []byte) {
	b.CommitPendingData()

	width := b.intSize
	for i, v := range values {
		if validBytes != nil && validBytes[i] == 0 {
			continue
		}
		if w := b.widthFor(v); w > width {
			width = w
		}
	}
	if width > b.intSize {
		b.expandIntSize(width)
	}

	b.base.Reserve(len(values))
	b.ensureDataCapacity(b.length + len(values))
	buf := b.dataBytes()
	for i, v := range values {
		if validBytes != nil && validBytes[i] == 0 {
			v = 0
		}
		writeWidth(buf, b.length+i, b.intSize, v)
	}
	b.UnsafeAppendToBitmapSpan(validBytes, len(values))
}

func (b *adaptiveIntBase) appendNull() {
	b.appendPendingValue(0, false)
}

func (b *adaptiveIntBase) outputType() arrow.DataType {
	switch b.intSize {
	case 1:
		if b.signed {
			return arrow.PrimitiveTypes.Int8
		}
		return arrow.PrimitiveTypes.Uint8
	case 2:
		if b.signed {
			return arrow.PrimitiveTypes.Int16
		}
		return arrow.PrimitiveTypes.Uint16
	case 4:
		if b.signed {
			return arrow.PrimitiveTypes.Int32
		}
		return arrow.PrimitiveTypes.Uint32
	default:
		if b.signed {
			return arrow.PrimitiveTypes.Int64
		}
		return arrow.PrimitiveTypes.Uint64
	}
}

func (b *adaptiveIntBase) newData() *array.Data {
	b.CommitPendingData()

	needed := b.length * b.intSize
	if b.data == nil {
		b.data = memory.NewResizableBuffer(b.mem)
	}
	b.data.Resize(needed)
	bitmap := b.trimmedBitmap()

	dtype := b.outputType()
	values := b.data
	b.data = nil
	data := array.NewData(dtype, b.length, []*memory.Buffer{bitmap, values}, nil, b.nullCount, 0)
	values.Release()
	if bitmap != nil {
		bitmap.Release()
	}
	b.base.reset()
	b.intSize = 1
	return data
}

// IntSize reports the current physical width of the values buffer, in
// bytes: one of 1, 2, 4, 8.
func (b *adaptiveIntBase) IntSize() int { return b.intSize }

// Len returns the number of appended slots, including those still staged
// in the pending buffer.
func (b *adaptiveIntBase) Len() int { return b.length + b.pendingPos }

// AdaptiveIntBuilder auto-widens a signed integer column to the narrowest
// of {1,2,4,8} byte widths that losslessly holds every appended value.
type AdaptiveIntBuilder struct {
	adaptiveIntBase
}

// NewAdaptiveIntBuilder constructs a signed adaptive integer builder.
func NewAdaptiveIntBuilder(mem memory.Allocator) *AdaptiveIntBuilder {
	b := &AdaptiveIntBuilder{}
	b.init(mem, true)
	return b
}

func (b *AdaptiveIntBuilder) Type() arrow.DataType { return b.outputType() }
func (b *AdaptiveIntBuilder) Release()             { b.release() }

// Append stages a single signed value.
func (b *AdaptiveIntBuilder) Append(v int64) { b.appendPendingValue(uint64(v), true) }

// AppendNull stages a single null.
func (b *AdaptiveIntBuilder) AppendNull() error {
	b.appendNull()
	return nil
}

// AppendValues bypasses the pending buffer for bulk efficiency.
func (b *AdaptiveIntBuilder) AppendValues(values []int64, validBytes []byte) {
	raw := make([]uint64, len(values))
	for i, v := range values {
		raw[i] = uint64(v)
	}
	b.appendValuesInternal(raw, validBytes)
}

func (b *AdaptiveIntBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray commits pending data, trims buffers, and produces an array whose
// type reflects the final int_size, resetting int_size back to 1.
func (b *AdaptiveIntBuilder) NewArray() arrow.Array {
	data := b.newData()
	defer data.Release()
	return array.MakeFromData(data)
}

// AdaptiveUintBuilder auto-widens an unsigned integer column to the
// narrowest of {1,2,4,8} byte widths that losslessly holds every appended
// value.
type AdaptiveUintBuilder struct {
	adaptiveIntBase
}

// NewAdaptiveUintBuilder constructs an unsigned adaptive integer builder.
func NewAdaptiveUintBuilder(mem memory.Allocator) *AdaptiveUintBuilder {
	b := &AdaptiveUintBuilder{}
	b.init(mem, false)
	return b
}

func (b *AdaptiveUintBuilder) Type() arrow.DataType { return b.outputType() }
func (b *AdaptiveUintBuilder) Release()             { b.release() }

// Append stages a single unsigned value.
func (b *AdaptiveUintBuilder) Append(v uint64) { b.appendPendingValue(v, true) }

// AppendNull stages a single null.
func (b *AdaptiveUintBuilder) AppendNull() error {
	b.appendNull()
	return nil
}

// AppendValues bypasses the pending buffer for bulk efficiency.
func (b *AdaptiveUintBuilder) AppendValues(values []uint64, validBytes []byte) {
	b.appendValuesInternal(values, validBytes)
}

func (b *AdaptiveUintBuilder) Finish() arrow.Array { return b.NewArray() }

// NewArray commits pending data, trims buffers, and produces an array whose
// type reflects the final int_size, resetting int_size back to 1.
func (b *AdaptiveUintBuilder) NewArray() arrow.Array {
	data := b.newData()
	defer data.Release()
	return array.MakeFromData(data)
}
