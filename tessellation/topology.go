package tessellation

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/wbfold/geometry3D"
	"github.com/notargets/wbfold/types"
)

// Local face slots of an outer cell removed by the half cell trims
var (
	trimFirstY = []int{0, 2, 4}
	trimLastY  = []int{1, 3, 5}
	trimFirstX = []int{4, 5}
	trimLastX  = []int{2, 3}
)

// Local node slots of an outer cell averaged by the alignment
const (
	alignSlotA = 3
	alignSlotB = 4
)

// Projector carries replicated topology over to the merged vertices
type Projector struct {
	part    *Partition
	nodeMap *UniqueNodeMap
	nI, nF  int
}

func NewProjector(part *Partition, nodeMap *UniqueNodeMap, rep *Replicated) (pj *Projector, err error) {
	if !part.Consistent(rep) {
		err = fmt.Errorf("%w: partition has %d inner and %d outer cells, replication has %d and %d",
			ErrInconsistentRemapState, part.NInner(), part.NOuter(), rep.NInner, rep.NOuter)
		return
	}
	if len(nodeMap.Remap) != len(rep.X) {
		err = fmt.Errorf("%w: remap covers %d vertices, replication has %d",
			ErrInconsistentRemapState, len(nodeMap.Remap), len(rep.X))
		return
	}
	pj = &Projector{part: part, nodeMap: nodeMap, nI: rep.NI, nF: rep.NF}
	return
}

// Node returns the merged index of local vertex j of a cell
func (pj *Projector) Node(cell, j int) int {
	return pj.nodeMap.Remap[cell*pj.nI+j]
}

// Faces substitutes the remap into every face, face order and count are unchanged
func (pj *Projector) Faces(faces [][3]int) (out [][3]int) {
	var (
		remap = pj.nodeMap.Remap
	)
	out = make([][3]int, len(faces))
	for f, face := range faces {
		out[f] = [3]int{remap[face[0]], remap[face[1]], remap[face[2]]}
	}
	return
}

// Edges substitutes the remap, orders each pair ascending and drops repeats, result is sorted lexicographically
func (pj *Projector) Edges(edges [][2]int) [][2]int {
	var (
		remap = pj.nodeMap.Remap
		es    = types.NewEdgeSet(len(edges))
	)
	for _, e := range edges {
		es.Add([2]int{remap[e[0]], remap[e[1]]})
	}
	return es.Sorted()
}

/*
Trim removes the faces of the outer boundary cells that reach past the shell edge.

	along y: slots 0,2,4 of the first angular row, slots 1,3,5 of the last
	along x: slots 4,5 of the first axial row, slots 2,3 of the last

faces must be the untrimmed, remapped face array in cell order. Faces are marked first, then compacted.
*/
func (pj *Projector) Trim(faces [][3]int, alongX, alongY bool) (out [][3]int, err error) {
	if !alongX && !alongY {
		out = append([][3]int(nil), faces...)
		return
	}
	if pj.nF < 6 {
		err = fmt.Errorf("%w: trimming needs 6 faces per cell, have %d", ErrTrimUnsupported, pj.nF)
		return
	}
	if len(faces) != pj.part.Total()*pj.nF {
		err = fmt.Errorf("%w: have %d faces, expected %d cells x %d", ErrInconsistentRemapState,
			len(faces), pj.part.Total(), pj.nF)
		return
	}
	var (
		p       = pj.part
		removed = make([]bool, len(faces))
	)
	mark := func(x, y int, slots []int) {
		c := p.OuterCell(x, y)
		for _, f := range slots {
			removed[c*pj.nF+f] = true
		}
	}
	if alongY {
		for x := 0; x < p.NXOut; x++ {
			mark(x, 0, trimFirstY)
			mark(x, -1, trimLastY)
		}
	}
	if alongX {
		for y := 0; y < p.NYOut; y++ {
			mark(0, y, trimFirstX)
			mark(-1, y, trimLastX)
		}
	}
	out = make([][3]int, 0, len(faces))
	for f, face := range faces {
		if !removed[f] {
			out = append(out, face)
		}
	}
	return
}

/*
Align straightens the zig-zag of the outer nodes at both axial ends. On the last axial row of outer cells slot 3
moves to the midpoint of slots 3 and 4, then on the first axial row slot 4 moves to the midpoint of slots 3 and 4.
Each pass reads all its midpoints before writing. X is not modified.
*/
func (pj *Projector) Align(X []r3.Vec) (out []r3.Vec, err error) {
	if pj.nI <= alignSlotB {
		err = fmt.Errorf("%w: alignment needs %d nodes per cell, have %d", ErrTrimUnsupported, alignSlotB+1, pj.nI)
		return
	}
	var (
		p    = pj.part
		mids = make([]r3.Vec, p.NYOut)
	)
	out = append([]r3.Vec(nil), X...)
	pass := func(x, target int) {
		for y := 0; y < p.NYOut; y++ {
			c := p.OuterCell(x, y)
			mids[y] = geometry3D.Midpoint(out[pj.Node(c, alignSlotA)], out[pj.Node(c, alignSlotB)])
		}
		for y := 0; y < p.NYOut; y++ {
			out[pj.Node(p.OuterCell(x, y), target)] = mids[y]
		}
	}
	pass(-1, alignSlotA)
	pass(0, alignSlotB)
	return
}

// OuterCellNodes returns the merged node indices of every outer cell, laid out [x][y][local node]
func (pj *Projector) OuterCellNodes() (xyj [][][]int) {
	p := pj.part
	xyj = make([][][]int, p.NXOut)
	for x := range xyj {
		xyj[x] = make([][]int, p.NYOut)
		for y := range xyj[x] {
			c := p.OuterCell(x, y)
			xyj[x][y] = make([]int, pj.nI)
			for j := range xyj[x][y] {
				xyj[x][y][j] = pj.Node(c, j)
			}
		}
	}
	return
}

// OuterCellFaces regroups an untrimmed remapped face array as [x][y][local face]
func (pj *Projector) OuterCellFaces(faces [][3]int) (xyf [][][][3]int) {
	p := pj.part
	xyf = make([][][][3]int, p.NXOut)
	for x := range xyf {
		xyf[x] = make([][][3]int, p.NYOut)
		for y := range xyf[x] {
			c := p.OuterCell(x, y)
			xyf[x][y] = faces[c*pj.nF : (c+1)*pj.nF]
		}
	}
	return
}

/*
BoundaryTable lists, in replicated indices, the boundary vertex pairs of every outer cell laid out
[y][x][pair][2]. Merging the table through Remap gives support and load nodes.
*/
func (pj *Projector) BoundaryTable(boundary [][2]int) (ydij [][][][2]int) {
	p := pj.part
	ydij = make([][][][2]int, p.NYOut)
	for y := range ydij {
		ydij[y] = make([][][2]int, p.NXOut)
		for x := range ydij[y] {
			offset := p.OuterCell(x, y) * pj.nI
			ydij[y][x] = make([][2]int, len(boundary))
			for b, pair := range boundary {
				ydij[y][x][b] = [2]int{pair[0] + offset, pair[1] + offset}
			}
		}
	}
	return
}
