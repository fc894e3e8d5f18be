package fixedlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushDropsWhenFull(t *testing.T) {
	l := New[uint8](3)
	assert.True(t, l.Push(1))
	assert.True(t, l.Push(2))
	assert.True(t, l.Push(3))
	assert.True(t, l.IsFull())
	assert.False(t, l.Push(4))
	assert.Equal(t, []uint8{1, 2, 3}, l.Items())
	assert.Equal(t, 3, l.Cap())
}

func TestRemoveFirstPreservesOrder(t *testing.T) {
	type testCase struct {
		name     string
		pushed   []uint8
		remove   uint8
		removed  bool
		expected []uint8
	}
	tests := []testCase{
		{name: "middle", pushed: []uint8{1, 2, 3, 4}, remove: 2, removed: true, expected: []uint8{1, 3, 4}},
		{name: "bottom", pushed: []uint8{1, 2, 3}, remove: 1, removed: true, expected: []uint8{2, 3}},
		{name: "top", pushed: []uint8{1, 2, 3}, remove: 3, removed: true, expected: []uint8{1, 2}},
		{name: "first duplicate only", pushed: []uint8{5, 2, 5}, remove: 5, removed: true, expected: []uint8{2, 5}},
		{name: "missing", pushed: []uint8{1, 2}, remove: 9, removed: false, expected: []uint8{1, 2}},
		{name: "empty", pushed: nil, remove: 1, removed: false, expected: []uint8{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := New[uint8](6)
			for _, v := range tc.pushed {
				require.True(t, l.Push(v))
			}
			assert.Equal(t, tc.removed, l.RemoveFirst(tc.remove))
			assert.Equal(t, tc.expected, l.Items())
		})
	}
}

func TestTopAndClear(t *testing.T) {
	l := New[uint16](4)
	_, ok := l.Top()
	assert.False(t, ok)

	l.Push(10)
	l.Push(20)
	top, ok := l.Top()
	require.True(t, ok)
	assert.Equal(t, uint16(20), top)
	assert.True(t, l.Contains(10))

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains(10))
	assert.True(t, l.Push(30))
}
