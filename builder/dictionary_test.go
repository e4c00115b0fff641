package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

// S6 from spec.md §8: Dictionary<String>. Append "a","b","a",null,"c".
// Finish #1 -> dictionary ["a","b","c"], indices [0,1,0,null,2],
// delta_offset=3. Then Append "b","d". Finish #2 -> delta dictionary
// ["d"], indices [1,3], delta_offset=4.
func TestDictionaryBuilderDeltaSemantics(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewDictionaryBuilder[string](mem, arrow.BinaryTypes.String)
	defer b.Release()

	require.NoError(t, b.Append("a"))
	require.NoError(t, b.Append("b"))
	require.NoError(t, b.Append("a"))
	require.NoError(t, b.AppendNull())
	require.NoError(t, b.Append("c"))
	require.Equal(t, 3, b.DictionarySize())

	arr1 := b.NewArray().(*array.Dictionary)
	defer arr1.Release()

	dict1 := arr1.Dictionary().(*array.String)
	require.Equal(t, 3, dict1.Len())
	require.Equal(t, "a", dict1.Value(0))
	require.Equal(t, "b", dict1.Value(1))
	require.Equal(t, "c", dict1.Value(2))

	require.Equal(t, 5, arr1.Len())
	require.True(t, arr1.IsNull(3))
	require.Equal(t, 0, arr1.GetValueIndex(0))
	require.Equal(t, 1, arr1.GetValueIndex(1))
	require.Equal(t, 2, arr1.GetValueIndex(4))

	require.False(t, b.IsBuildingDelta())

	require.NoError(t, b.Append("b"))
	require.NoError(t, b.Append("d"))
	require.True(t, b.IsBuildingDelta())
	require.Equal(t, 4, b.DictionarySize())

	arr2 := b.NewArray().(*array.Dictionary)
	defer arr2.Release()

	dict2 := arr2.Dictionary().(*array.String)
	require.Equal(t, 1, dict2.Len())
	require.Equal(t, "d", dict2.Value(0))

	require.Equal(t, 2, arr2.Len())
	require.Equal(t, 1, arr2.GetValueIndex(0))
	require.Equal(t, 3, arr2.GetValueIndex(1))
}

func TestDictionaryNullBuilder(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	b := builder.NewDictionaryNullBuilder(mem)
	defer b.Release()

	require.NoError(t, b.AppendNull())
	require.NoError(t, b.AppendNull())

	arr := b.NewArray().(*array.Dictionary)
	defer arr.Release()
	require.Equal(t, 2, arr.Len())
	require.Equal(t, 0, arr.Dictionary().Len())
}
