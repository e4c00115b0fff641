package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func TestBinaryBuilderAppendAndFinish(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewStringBuilder(mem)
	defer b.Release()

	require.NoError(t, b.AppendString("hello"))
	require.NoError(t, b.AppendNull())
	require.NoError(t, b.AppendString("world"))

	arr := b.NewArray().(*array.String)
	defer arr.Release()

	require.Equal(t, 3, arr.Len())
	require.Equal(t, "hello", arr.Value(0))
	require.True(t, arr.IsNull(1))
	require.Equal(t, "world", arr.Value(2))
}

func TestBinaryBuilderRepeatLastValue(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewStringBuilder(mem)
	defer b.Release()

	require.NoError(t, b.AppendString("x"))
	require.NoError(t, b.RepeatLastValue(3))

	arr := b.NewArray().(*array.String)
	defer arr.Release()
	require.Equal(t, 4, arr.Len())
	for i := 0; i < 4; i++ {
		require.Equal(t, "x", arr.Value(i))
	}
}

func TestBinaryBuilderRepeatLastValueNull(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewStringBuilder(mem)
	defer b.Release()

	require.NoError(t, b.AppendNull())
	require.NoError(t, b.RepeatLastValue(2))

	arr := b.NewArray().(*array.String)
	defer arr.Release()
	require.Equal(t, 3, arr.Len())
	require.True(t, arr.IsNull(0))
	require.True(t, arr.IsNull(1))
	require.True(t, arr.IsNull(2))
}

func TestBinaryBuilderResetToLength(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewStringBuilder(mem)
	defer b.Release()

	require.NoError(t, b.AppendString("ab"))
	require.NoError(t, b.AppendString("cde"))
	require.NoError(t, b.ResetToLength(1))

	arr := b.NewArray().(*array.String)
	defer arr.Release()
	require.Equal(t, 1, arr.Len())
	require.Equal(t, "ab", arr.Value(0))
}

func TestBinaryBuilderAppendStringValuesNilPointerForcesNull(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewStringBuilder(mem)
	defer b.Release()

	s := "present"
	require.NoError(t, b.AppendStringValues([]*string{&s, nil}, []byte{1, 1}))

	arr := b.NewArray().(*array.String)
	defer arr.Release()
	require.False(t, arr.IsNull(0))
	require.True(t, arr.IsNull(1))
}
