package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func TestReserveGrowsGeometrically(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewPrimitiveBuilder[int32](mem, arrow.PrimitiveTypes.Int32)
	defer b.Release()

	require.Equal(t, 0, b.Cap())
	b.Reserve(1)
	require.Equal(t, builder.MinBuilderCapacity, b.Cap())

	b.Reserve(builder.MinBuilderCapacity + 1)
	require.GreaterOrEqual(t, b.Cap(), 2*builder.MinBuilderCapacity)

	arr := b.NewArray()
	arr.Release()
}

func TestResizeRejectsBelowLength(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewPrimitiveBuilder[int32](mem, arrow.PrimitiveTypes.Int32)
	defer b.Release()

	b.Append(1)
	b.Append(2)
	err := b.Resize(1)
	require.Error(t, err)
	require.True(t, builder.Is(err, builder.Invalid))

	arr := b.NewArray()
	arr.Release()
}
