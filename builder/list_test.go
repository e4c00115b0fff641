package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func TestListBuilder(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewListBuilder(mem, arrow.PrimitiveTypes.Int32)
	defer b.Release()

	values := b.ValueBuilder().(*builder.PrimitiveBuilder[int32])

	// slot 0: [1, 2]
	require.NoError(t, b.Append(true))
	values.Append(1)
	values.Append(2)

	// slot 1: null
	require.NoError(t, b.AppendNull())

	// slot 2: [] (valid, empty)
	require.NoError(t, b.Append(true))

	arr := b.NewArray().(*array.List)
	defer arr.Release()

	require.Equal(t, 3, arr.Len())
	require.False(t, arr.IsNull(0))
	require.True(t, arr.IsNull(1))
	require.False(t, arr.IsNull(2))

	offsets := arr.Offsets()
	require.Equal(t, []int32{0, 2, 2, 2}, offsets)

	child := arr.ListValues().(*array.Int32)
	require.Equal(t, 2, child.Len())
	require.Equal(t, int32(1), child.Value(0))
	require.Equal(t, int32(2), child.Value(1))
}
