package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func checkedAllocator() *memory.CheckedAllocator {
	return memory.NewCheckedAllocator(memory.NewGoAllocator())
}

func TestPrimitiveBuilderAppendAndFinish(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewPrimitiveBuilder[int32](mem, arrow.PrimitiveTypes.Int32)
	defer b.Release()

	b.Append(1)
	b.AppendNull()
	b.Append(3)
	require.Equal(t, 3, b.Len())
	require.Equal(t, 1, b.NullN())

	arr := b.NewArray().(*array.Int32)
	defer arr.Release()

	require.Equal(t, 3, arr.Len())
	require.False(t, arr.IsNull(0))
	require.True(t, arr.IsNull(1))
	require.False(t, arr.IsNull(2))
	require.Equal(t, int32(1), arr.Value(0))
	require.Equal(t, int32(3), arr.Value(2))

	// Finish resets the builder to empty (spec.md §4, Lifecycle).
	require.Equal(t, 0, b.Len())
}

func TestPrimitiveBuilderAppendValuesNullWritesThrough(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewPrimitiveBuilder[int64](mem, arrow.PrimitiveTypes.Int64)
	defer b.Release()

	// Open Question 3: a nonzero value alongside a false validity byte is
	// written through unmodified; only the validity bit is cleared.
	b.AppendValues([]int64{10, 99, 30}, []byte{1, 0, 1})

	arr := b.NewArray().(*array.Int64)
	defer arr.Release()

	require.True(t, arr.IsNull(1))
	require.Equal(t, int64(99), arr.Value(1))
}

func TestPrimitiveBuilderRepeatLastValue(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewPrimitiveBuilder[float64](mem, arrow.PrimitiveTypes.Float64)
	defer b.Release()

	b.Append(3.5)
	b.RepeatLastValue(2)
	require.Equal(t, 3, b.Len())

	arr := b.NewArray().(*array.Float64)
	defer arr.Release()
	require.Equal(t, 3.5, arr.Value(1))
	require.Equal(t, 3.5, arr.Value(2))
}

func TestPrimitiveBuilderResetToLength(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewPrimitiveBuilder[int32](mem, arrow.PrimitiveTypes.Int32)
	defer b.Release()

	b.Append(1)
	b.Append(2)
	b.AppendNull()
	require.NoError(t, b.ResetToLength(1))
	require.Equal(t, 1, b.Len())
	require.Equal(t, 0, b.NullN())

	arr := b.NewArray().(*array.Int32)
	defer arr.Release()
	require.Equal(t, 1, arr.Len())
	require.Equal(t, int32(1), arr.Value(0))
}

func TestPrimitiveBuilderResetToLengthRejectsGrowth(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewPrimitiveBuilder[int32](mem, arrow.PrimitiveTypes.Int32)
	defer b.Release()

	b.Append(1)
	err := b.ResetToLength(5)
	require.Error(t, err)
	require.True(t, builder.Is(err, builder.Invalid))
}
