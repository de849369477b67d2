package tessellation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/wbfold/geometry3D"
	"github.com/notargets/wbfold/wbcell"
)

/*
Replicator places copies of one cell on a (2*NXPlus-1) x (2*NPhiPlus-1) grid of axial and angular positions.
Cells sit on the odd x odd positions (inner cells) and on the even x even positions (outer cells).
*/
type Replicator struct {
	NXPlus, NPhiPlus int
}

func NewReplicator(nXPlus, nPhiPlus int) (rp *Replicator, err error) {
	if err = checkGridExtent(nXPlus, nPhiPlus); err != nil {
		return
	}
	rp = &Replicator{NXPlus: nXPlus, NPhiPlus: nPhiPlus}
	return
}

func checkGridExtent(nXPlus, nPhiPlus int) error {
	if nXPlus < 1 || nPhiPlus < 1 {
		return fmt.Errorf("%w: n_x_plus=%d, n_phi_plus=%d, both must be at least 1",
			ErrInvalidGridExtent, nXPlus, nPhiPlus)
	}
	return nil
}

// symmetricRange returns k*step for k = -(nPlus-1) ... nPlus-1
func symmetricRange(nPlus int, step float64) (r []float64) {
	r = make([]float64, 2*nPlus-1)
	for i := range r {
		r[i] = float64(i-(nPlus-1)) * step
	}
	return
}

func (rp *Replicator) AngularRange(deltaPhi float64) []float64 {
	return symmetricRange(rp.NPhiPlus, deltaPhi)
}

func (rp *Replicator) AxialRange(deltaX float64) []float64 {
	return symmetricRange(rp.NXPlus, deltaX)
}

// AngularCenters returns (|R0| sin(phi), |R0| cos(phi) + R0) for every angular position, points on the circle of radius |R0|
func (rp *Replicator) AngularCenters(deltaPhi, R0 float64) (yz [][2]float64) {
	phi := rp.AngularRange(deltaPhi)
	yz = make([][2]float64, len(phi))
	for i, p := range phi {
		sin, cos := math.Sincos(p)
		yz[i] = [2]float64{math.Abs(R0) * sin, math.Abs(R0)*cos + R0}
	}
	return
}

// CellMap lists the axial and angular grid indices carrying inner and outer cells
type CellMap struct {
	InnerX, OuterX     []int
	InnerPhi, OuterPhi []int
}

func (cm CellMap) NInner() int { return len(cm.InnerX) * len(cm.InnerPhi) }
func (cm CellMap) NOuter() int { return len(cm.OuterX) * len(cm.OuterPhi) }
func (cm CellMap) NCells() int { return cm.NInner() + cm.NOuter() }

func (rp *Replicator) CellMap() (cm CellMap) {
	parity := func(n, start int) (idx []int) {
		for i := start; i < n; i += 2 {
			idx = append(idx, i)
		}
		return
	}
	var (
		nX, nPhi = 2*rp.NXPlus - 1, 2*rp.NPhiPlus - 1
	)
	// Ranges have odd length, inner cells take the odd indices
	cm.InnerX, cm.OuterX = parity(nX, 1), parity(nX, 0)
	cm.InnerPhi, cm.OuterPhi = parity(nPhi, 1), parity(nPhi, 0)
	return
}

/*
Replicated holds the disjoint copies of the cell, one block of NI vertices per cell in the order
[inner cells, axial major][outer cells, axial major]. Replicated vertex index = cell*NI + local index.
*/
type Replicated struct {
	X             []r3.Vec
	Faces         [][3]int
	Edges         [][2]int
	ValleyEdges   [][2]int
	MountainEdges [][2]int
	NI            int // Vertices per cell
	NF            int // Faces per cell
	NInner        int
	NOuter        int
}

func (rep *Replicated) NCells() int { return rep.NInner + rep.NOuter }

func (rp *Replicator) Replicate(g *wbcell.Geometry) (rep *Replicated) {
	var (
		cm     = rp.CellMap()
		phi    = rp.AngularRange(g.DeltaPhi)
		xRange = rp.AxialRange(g.DeltaX)
		center = r3.Vec{Z: g.R0}
		nI     = g.NumVertices()
	)
	// One rotated copy of the cell per angular position
	rotated := make([][]r3.Vec, len(phi))
	for p, angle := range phi {
		rot := geometry3D.NewRotation(geometry3D.XAxis, angle)
		rotated[p] = make([]r3.Vec, nI)
		for i, x := range g.X {
			rotated[p][i] = rot.ApplyAbout(x, center)
		}
	}
	rep = &Replicated{
		X:      make([]r3.Vec, 0, cm.NCells()*nI),
		NI:     nI,
		NF:     g.NumFaces(),
		NInner: cm.NInner(),
		NOuter: cm.NOuter(),
	}
	place := func(xIdx, phiIdx []int) {
		for _, ix := range xIdx {
			shift := r3.Vec{X: xRange[ix]}
			for _, ip := range phiIdx {
				for _, x := range rotated[ip] {
					rep.X = append(rep.X, r3.Add(x, shift))
				}
			}
		}
	}
	place(cm.InnerX, cm.InnerPhi)
	place(cm.OuterX, cm.OuterPhi)

	nCells := rep.NCells()
	rep.Faces = make([][3]int, 0, nCells*len(g.Faces))
	for c := 0; c < nCells; c++ {
		offset := c * nI
		for _, f := range g.Faces {
			rep.Faces = append(rep.Faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
		}
	}
	rep.Edges = offsetEdges(g.Edges, nCells, nI)
	rep.ValleyEdges = offsetEdges(g.ValleyEdges, nCells, nI)
	rep.MountainEdges = offsetEdges(g.MountainEdges, nCells, nI)
	return
}

func offsetEdges(edges [][2]int, nCells, nI int) (rep [][2]int) {
	rep = make([][2]int, 0, nCells*len(edges))
	for c := 0; c < nCells; c++ {
		offset := c * nI
		for _, e := range edges {
			rep = append(rep, [2]int{e[0] + offset, e[1] + offset})
		}
	}
	return
}
