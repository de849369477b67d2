package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1), en)

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(1<<32+100), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{7, 7})
		assert.Equal(t, [2]int{7, 7}, en.GetVertices(false))

		// Test maximum/minimum indices
		en = NewEdgeKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, EdgeKey(1<<64-1), en)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{1<<32 - 1, 1})
		assert.Equal(t, [2]int{1, 1<<32 - 1}, en.GetVertices(false))

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Test key order is lexicographic on the sorted pair
		assert.Less(t, NewEdgeKey([2]int{0, 9}), NewEdgeKey([2]int{1, 2}))
		assert.Less(t, NewEdgeKey([2]int{1, 2}), NewEdgeKey([2]int{2, 1 << 20}))
	}
	{ // Test edge set dedup and ordering
		es := NewEdgeSet(0)
		for _, e := range [][2]int{{3, 1}, {0, 5}, {1, 3}, {2, 2}, {5, 0}, {0, 1}} {
			es.Add(e)
		}
		assert.Equal(t, 4, len(es))
		assert.True(t, es.Contains([2]int{3, 1}))
		assert.False(t, es.Contains([2]int{3, 2}))
		assert.Equal(t, [][2]int{{0, 1}, {0, 5}, {1, 3}, {2, 2}}, es.Sorted())
	}
}
