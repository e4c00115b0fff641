package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func TestNullBuilder(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewNullBuilder(mem)
	defer b.Release()

	require.NoError(t, b.AppendNull())
	require.NoError(t, b.Append(nil))
	require.Error(t, b.Append("not nil"))
	require.Equal(t, 2, b.Len())

	arr := b.NewArray().(*array.Null)
	defer arr.Release()
	require.Equal(t, 2, arr.Len())
	require.Equal(t, 2, arr.NullN())
}
