package types

import (
	"fmt"
	"math"
	"slices"
)

/*
EdgeKey is an always positive number that stores an undirected edge's vertex indices so that keys can be compared.
An edge between vertices [4] and [0] is always stored as [0,4], the lower index occupies the high 32 bits so that
the numeric order of keys is the lexicographic order of the sorted vertex pairs.
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	i1, i2 := min(verts[0], verts[1]), max(verts[0], verts[1])
	packed = EdgeKey(uint64(i1)<<32 | uint64(i2))
	return
}

func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	verts[0] = int(ek >> 32)
	verts[1] = int(ek & math.MaxUint32)
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

// EdgeSet collects undirected edges, each distinct edge once
type EdgeSet map[EdgeKey]struct{}

func NewEdgeSet(capacity int) EdgeSet {
	return make(EdgeSet, capacity)
}

func (es EdgeSet) Add(verts [2]int) {
	es[NewEdgeKey(verts)] = struct{}{}
}

func (es EdgeSet) Contains(verts [2]int) (ok bool) {
	_, ok = es[NewEdgeKey(verts)]
	return
}

// Sorted returns the edges as ascending pairs in lexicographic order
func (es EdgeSet) Sorted() (edges [][2]int) {
	keys := make([]EdgeKey, 0, len(es))
	for k := range es {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	edges = make([][2]int, len(keys))
	for i, k := range keys {
		edges[i] = k.GetVertices(false)
	}
	return
}
