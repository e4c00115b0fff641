package builder_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/stretchr/testify/require"

	"github.com/polarsignals-labs/colbuilder/builder"
)

func TestFixedSizeBinaryBuilder(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	dtype := &arrow.FixedSizeBinaryType{ByteWidth: 3}
	b := builder.NewFixedSizeBinaryBuilder(mem, dtype)
	defer b.Release()

	require.NoError(t, b.Append([]byte("abc")))
	require.NoError(t, b.AppendNull())
	require.Error(t, b.Append([]byte("ab"))) // wrong length

	arr := b.NewArray().(*array.FixedSizeBinary)
	defer arr.Release()

	require.Equal(t, 2, arr.Len())
	require.Equal(t, []byte("abc"), arr.Value(0))
	require.True(t, arr.IsNull(1))
}

func TestDecimal128Builder(t *testing.T) {
	mem := checkedAllocator()
	defer mem.AssertSize(t, 0)

	dtype := &arrow.Decimal128Type{Precision: 38, Scale: 0}
	b := builder.NewDecimal128Builder(mem, dtype)
	defer b.Release()

	require.NoError(t, b.AppendDecimal128(decimal128.New(0, 42)))
	require.NoError(t, b.AppendNull())

	arr := b.NewArray().(*array.Decimal128)
	defer arr.Release()
	require.Equal(t, 2, arr.Len())
	require.True(t, arr.IsNull(1))
}
