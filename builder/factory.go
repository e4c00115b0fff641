package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// MakeBuilder dispatches on dtype.ID() and constructs the matching concrete
// builder, recursing into child types for list, struct, and dictionary.
// Returns a NotImplemented-kind error for any type this package does not
// support.
func MakeBuilder(mem memory.Allocator, dtype arrow.DataType) (Builder, error) {
	switch dtype.ID() {
	case arrow.NULL:
		return NewNullBuilder(mem), nil

	case arrow.BOOL:
		return NewBooleanBuilder(mem), nil

	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return newPrimitiveBuilder(mem, dtype)

	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return newPrimitiveBuilder(mem, dtype)

	case arrow.FLOAT32:
		return NewPrimitiveBuilder[float32](mem, dtype), nil
	case arrow.FLOAT64:
		return NewPrimitiveBuilder[float64](mem, dtype), nil

	case arrow.BINARY, arrow.STRING:
		return NewBinaryBuilder(mem, dtype), nil

	case arrow.FIXED_SIZE_BINARY:
		fsb, ok := dtype.(*arrow.FixedSizeBinaryType)
		if !ok {
			return nil, Errorf(TypeError, "MakeBuilder: %s is not *arrow.FixedSizeBinaryType", dtype)
		}
		return NewFixedSizeBinaryBuilder(mem, fsb), nil

	case arrow.DECIMAL128:
		dec, ok := dtype.(*arrow.Decimal128Type)
		if !ok {
			return nil, Errorf(TypeError, "MakeBuilder: %s is not *arrow.Decimal128Type", dtype)
		}
		return NewDecimal128Builder(mem, dec), nil

	case arrow.LIST:
		lt, ok := dtype.(*arrow.ListType)
		if !ok {
			return nil, Errorf(TypeError, "MakeBuilder: %s is not *arrow.ListType", dtype)
		}
		return NewListBuilder(mem, lt.Elem()), nil

	case arrow.STRUCT:
		st, ok := dtype.(*arrow.StructType)
		if !ok {
			return nil, Errorf(TypeError, "MakeBuilder: %s is not *arrow.StructType", dtype)
		}
		return NewStructBuilder(mem, st)

	case arrow.DICTIONARY:
		dt, ok := dtype.(*arrow.DictionaryType)
		if !ok {
			return nil, Errorf(TypeError, "MakeBuilder: %s is not *arrow.DictionaryType", dtype)
		}
		return makeDictionaryBuilder(mem, dt)

	default:
		return nil, Errorf(NotImplemented, "MakeBuilder: unsupported type %s", dtype)
	}
}

// newPrimitiveBuilder dispatches the signed/unsigned integer types to the
// matching PrimitiveBuilder[T] instantiation.
func newPrimitiveBuilder(mem memory.Allocator, dtype arrow.DataType) (Builder, error) {
	switch dtype.ID() {
	case arrow.INT8:
		return NewPrimitiveBuilder[int8](mem, dtype), nil
	case arrow.INT16:
		return NewPrimitiveBuilder[int16](mem, dtype), nil
	case arrow.INT32:
		return NewPrimitiveBuilder[int32](mem, dtype), nil
	case arrow.INT64:
		return NewPrimitiveBuilder[int64](mem, dtype), nil
	case arrow.UINT8:
		return NewPrimitiveBuilder[uint8](mem, dtype), nil
	case arrow.UINT16:
		return NewPrimitiveBuilder[uint16](mem, dtype), nil
	case arrow.UINT32:
		return NewPrimitiveBuilder[uint32](mem, dtype), nil
	case arrow.UINT64:
		return NewPrimitiveBuilder[uint64](mem, dtype), nil
	default:
		return nil, Errorf(NotImplemented, "newPrimitiveBuilder: unsupported type %s", dtype)
	}
}

// makeDictionaryBuilder dispatches a dictionary type's value type to the
// matching DictionaryBuilder[T] instantiation. The index type named in dt is
// informational only: this package's DictionaryBuilder always starts its
// internal indices builder at the narrowest adaptive width.
func makeDictionaryBuilder(mem memory.Allocator, dt *arrow.DictionaryType) (Builder, error) {
	switch dt.ValueType.ID() {
	case arrow.NULL:
		return NewDictionaryNullBuilder(mem), nil
	case arrow.STRING, arrow.BINARY:
		// []byte is not a comparable type, so binary dictionaries key their
		// memo table on the string conversion of each value; appendMemoValue
		// routes a string value back through BinaryBuilder.AppendString for
		// both value types.
		return NewDictionaryBuilder[string](mem, dt.ValueType), nil
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return NewDictionaryBuilder[int64](mem, dt.ValueType), nil
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return NewDictionaryBuilder[uint64](mem, dt.ValueType), nil
	default:
		return nil, Errorf(NotImplemented, "makeDictionaryBuilder: unsupported value type %s", dt.ValueType)
	}
}
