package record

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_FillsToCapacity(t *testing.T) {
	var l Log
	for i := range Capacity {
		require.NoError(t, l.Append(int32(i+1)))
	}
	assert.Equal(t, Capacity, l.Len())

	before := l.Entries()
	assert.ErrorIs(t, l.Append(999), ErrFull)
	assert.Equal(t, Capacity, l.Len())
	assert.Equal(t, before, l.Entries(), "a rejected append leaves the log unchanged")
}

func TestDeleteAt(t *testing.T) {
	var l Log
	for _, v := range []int32{10, 20, 30, 40} {
		require.NoError(t, l.Append(v))
	}

	require.NoError(t, l.DeleteAt(1))
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []int32{10, 30, 40}, l.Entries())
	assert.Equal(t, int32(0), l.Slots()[3], "vacated tail slot is cleared")

	require.NoError(t, l.DeleteAt(2))
	assert.Equal(t, []int32{10, 30}, l.Entries())

	require.NoError(t, l.DeleteAt(0))
	assert.Equal(t, []int32{30}, l.Entries())
}

func TestDeleteAt_OutOfRange(t *testing.T) {
	var l Log
	require.NoError(t, l.Append(5))

	for _, i := range []int{1, 2, Capacity - 1, Capacity, -1} {
		assert.ErrorIs(t, l.DeleteAt(i), ErrEmpty, "index %d", i)
	}
	assert.Equal(t, []int32{5}, l.Entries())
}

func TestDeleteAt_Full(t *testing.T) {
	var l Log
	for i := range Capacity {
		require.NoError(t, l.Append(int32(i)))
	}

	require.NoError(t, l.DeleteAt(Capacity-1))
	require.NoError(t, l.DeleteAt(0))
	assert.Equal(t, Capacity-2, l.Len())
	v, ok := l.At(0)
	assert.True(t, ok)
	assert.Equal(t, int32(1), v)
	require.NoError(t, l.Append(100))
}

func TestEmptyThenAppendDelete(t *testing.T) {
	var l Log
	assert.ErrorIs(t, l.DeleteAt(0), ErrEmpty)

	require.NoError(t, l.Append(FromNanofarads(1.5)))
	assert.Equal(t, 1, l.Len())
	v, ok := l.At(0)
	assert.True(t, ok)
	assert.Equal(t, int32(1500), v)

	require.NoError(t, l.DeleteAt(0))
	assert.Equal(t, 0, l.Len())
	_, ok = l.At(0)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	var l Log
	require.NoError(t, l.Append(1))
	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, [Capacity]int32{}, l.Slots())
}

func TestFixedPoint(t *testing.T) {
	tests := []struct {
		nf   float32
		want int32
	}{
		{nf: 1.5, want: 1500},
		{nf: 185.482, want: 185482},
		{nf: 0.0004, want: 0},
		{nf: -2.25, want: -2250},
		{nf: 1e12, want: math.MaxInt32},
		{nf: -1e12, want: math.MinInt32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromNanofarads(tt.nf), "%v nF", tt.nf)
	}
	assert.InDelta(t, 1.5, ToNanofarads(1500), 1e-6)
}

func TestCursor(t *testing.T) {
	var c Cursor
	c.Up()
	assert.Equal(t, 0, c.Index(), "clamped at the first slot")

	for range Capacity + 5 {
		c.Down()
	}
	assert.Equal(t, Capacity-1, c.Index(), "clamped at the last slot")

	c.Up()
	assert.Equal(t, Capacity-2, c.Index())
	c.Reset()
	assert.Equal(t, 0, c.Index())
}
