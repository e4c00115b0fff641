package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func TestStructBuilder(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	dtype := arrow.StructOf(
		arrow.Field{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		arrow.Field{Name: "name", Type: arrow.BinaryTypes.String},
	)
	b, err := builder.NewStructBuilder(mem, dtype)
	require.NoError(t, err)
	defer b.Release()

	id := b.FieldBuilder(0).(*builder.PrimitiveBuilder[int32])
	name := b.FieldBuilder(1).(*builder.BinaryBuilder)

	require.NoError(t, b.Append(true))
	id.Append(1)
	require.NoError(t, name.AppendString("alice"))

	require.NoError(t, b.AppendNull())
	id.AppendNull()
	require.NoError(t, name.AppendNull())

	arr := b.NewArray().(*array.Struct)
	defer arr.Release()

	require.Equal(t, 2, arr.Len())
	require.False(t, arr.IsNull(0))
	require.True(t, arr.IsNull(1))

	idArr := arr.Field(0).(*array.Int32)
	nameArr := arr.Field(1).(*array.String)
	require.Equal(t, int32(1), idArr.Value(0))
	require.Equal(t, "alice", nameArr.Value(0))
	require.True(t, nameArr.IsNull(1))
}

func TestStructBuilderPanicsOnFieldLengthMismatch(t *testing.T) {
	mem := checkedAllocator()

	dtype := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int32},
		arrow.Field{Name: "b", Type: arrow.PrimitiveTypes.Int32},
	)
	b, err := builder.NewStructBuilder(mem, dtype)
	require.NoError(t, err)

	a := b.FieldBuilder(0).(*builder.PrimitiveBuilder[int32])
	bb := b.FieldBuilder(1).(*builder.PrimitiveBuilder[int32])

	require.NoError(t, b.Append(true))
	a.Append(1)
	bb.Append(1)
	// second slot: only field "a" gets a value, "b" is left short.
	require.NoError(t, b.Append(true))
	a.Append(2)

	require.Panics(t, func() {
		b.NewArray()
	})

	b.Release()
	mem.AssertSize(t, 0)
}
