package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func TestBooleanBuilder(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewBooleanBuilder(mem)
	defer b.Release()

	b.Append(true)
	b.AppendNull()
	b.AppendValues([]bool{false, true}, []byte{1, 0})
	require.Equal(t, 4, b.Len())

	arr := b.NewArray().(*array.Boolean)
	defer arr.Release()

	require.Equal(t, 4, arr.Len())
	require.True(t, arr.Value(0))
	require.True(t, arr.IsNull(1))
	require.False(t, arr.Value(2))
	require.True(t, arr.IsNull(3))
}
