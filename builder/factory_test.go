package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func TestMakeBuilderDispatchesPrimitives(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b, err := builder.MakeBuilder(mem, arrow.PrimitiveTypes.Int64)
	require.NoError(t, err)
	_, ok := b.(*builder.PrimitiveBuilder[int64])
	require.True(t, ok)
	b.Release()
}

func TestMakeBuilderDispatchesNestedTypes(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	listType := arrow.ListOf(arrow.PrimitiveTypes.Int32)
	b, err := builder.MakeBuilder(mem, listType)
	require.NoError(t, err)
	_, ok := b.(*builder.ListBuilder)
	require.True(t, ok)
	b.Release()
}

func TestMakeBuilderRejectsUnsupportedType(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	_, err := builder.MakeBuilder(mem, arrow.FixedWidthTypes.Date32)
	require.Error(t, err)
	require.True(t, builder.Is(err, builder.NotImplemented))
}
