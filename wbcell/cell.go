package wbcell

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrDegenerateCell = errors.New("degenerate cell geometry")
	ErrInvalidCell    = errors.New("invalid cell definition")
)

// Cell is a unit cell back end. The tessellation only depends on the Geometry it produces.
type Cell interface {
	Geometry() (*Geometry, error)
}

/*
Geometry is the small mesh of a single unit cell and the parameters needed to replicate it.

	X                                       - cell vertices, local index I
	Faces                                   - triangles over X
	Edges, ValleyEdges, MountainEdges       - crease lines over X
	Boundary                                - vertex pairs along the cell perimeter, used for support/load tables
	DeltaX                                  - axial step between cells of the same parity
	DeltaPhi                                - angular step between cells of the same parity
	R0                                      - signed radius of the rotation axis measured along z from the cell origin
	MinLength                               - smallest principal length, scales the vertex match tolerance
*/
type Geometry struct {
	X             []r3.Vec
	Faces         [][3]int
	Edges         [][2]int
	ValleyEdges   [][2]int
	MountainEdges [][2]int
	Boundary      [][2]int
	DeltaX        float64
	DeltaPhi      float64
	R0            float64
	MinLength     float64
}

func (g *Geometry) NumVertices() int { return len(g.X) }

func (g *Geometry) NumFaces() int { return len(g.Faces) }

// Validate checks every index against the vertex count
func (g *Geometry) Validate() (err error) {
	var (
		nI = len(g.X)
	)
	if nI == 0 {
		return fmt.Errorf("%w: no vertices", ErrInvalidCell)
	}
	if len(g.Faces) == 0 {
		return fmt.Errorf("%w: no faces", ErrInvalidCell)
	}
	for f, face := range g.Faces {
		for _, i := range face {
			if i < 0 || i >= nI {
				return fmt.Errorf("%w: face %d references vertex %d, have %d vertices", ErrInvalidCell, f, i, nI)
			}
		}
	}
	check := func(name string, edges [][2]int) error {
		for e, edge := range edges {
			for _, i := range edge {
				if i < 0 || i >= nI {
					return fmt.Errorf("%w: %s edge %d references vertex %d, have %d vertices",
						ErrInvalidCell, name, e, i, nI)
				}
			}
		}
		return nil
	}
	if err = check("crease", g.Edges); err != nil {
		return
	}
	if err = check("valley", g.ValleyEdges); err != nil {
		return
	}
	if err = check("mountain", g.MountainEdges); err != nil {
		return
	}
	if err = check("boundary", g.Boundary); err != nil {
		return
	}
	if g.MinLength <= 0 {
		err = fmt.Errorf("%w: minimum length %g must be positive", ErrInvalidCell, g.MinLength)
	}
	return
}

func (g *Geometry) Clone() *Geometry {
	c := *g
	c.X = slices.Clone(g.X)
	c.Faces = slices.Clone(g.Faces)
	c.Edges = slices.Clone(g.Edges)
	c.ValleyEdges = slices.Clone(g.ValleyEdges)
	c.MountainEdges = slices.Clone(g.MountainEdges)
	c.Boundary = slices.Clone(g.Boundary)
	return &c
}

// Equal compares coordinates and parameters exactly, a geometry holding NaN never equals another
func (g *Geometry) Equal(o *Geometry) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.DeltaX == o.DeltaX && g.DeltaPhi == o.DeltaPhi && g.R0 == o.R0 && g.MinLength == o.MinLength &&
		slices.Equal(g.X, o.X) &&
		slices.Equal(g.Faces, o.Faces) &&
		slices.Equal(g.Edges, o.Edges) &&
		slices.Equal(g.ValleyEdges, o.ValleyEdges) &&
		slices.Equal(g.MountainEdges, o.MountainEdges) &&
		slices.Equal(g.Boundary, o.Boundary)
}
