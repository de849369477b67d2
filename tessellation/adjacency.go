package tessellation

import (
	"cmp"
	"slices"

	"github.com/james-bowman/sparse"
)

/*
FaceAdjacency returns every pair of faces [f1, f2], f1 < f2, sharing two vertices, sorted.
The face to vertex incidence FToV is squared into FToF = FToV * FToV^T, whose off diagonal entries count
the vertices two faces have in common.
*/
func FaceAdjacency(faces [][3]int, nVerts int) (pairs [][2]int) {
	if len(faces) == 0 || nVerts == 0 {
		return
	}
	var (
		nF = len(faces)
	)
	SpFToV_Tmp := sparse.NewDOK(nF, nVerts)
	for f, face := range faces {
		for _, v := range face {
			SpFToV_Tmp.Set(f, v, 1)
		}
	}
	SpFToF := sparse.NewCSR(nF, nF, nil, nil, nil)
	SpFToV := SpFToV_Tmp.ToCSR()
	SpFToF.Mul(SpFToV, SpFToV.T())
	SpFToF.DoNonZero(func(i, j int, v float64) {
		if i < j && v == 2 {
			pairs = append(pairs, [2]int{i, j})
		}
	})
	slices.SortFunc(pairs, func(a, b [2]int) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return
}

// Boundary edges belong to a single face
func BoundaryEdges(faces [][3]int) (edges [][2]int) {
	count := make(map[[2]int]int)
	for _, face := range faces {
		for k := 0; k < 3; k++ {
			a, b := face[k], face[(k+1)%3]
			count[[2]int{min(a, b), max(a, b)}]++
		}
	}
	for e, n := range count {
		if n == 1 {
			edges = append(edges, e)
		}
	}
	slices.SortFunc(edges, func(a, b [2]int) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return
}
