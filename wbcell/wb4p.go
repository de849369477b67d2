package wbcell

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultGamma = 1.25
	DefaultA     = 1000.
	DefaultB     = 1000.
	DefaultC     = 1000.
)

/*
WB4P is the four parameter waterbomb cell.

	vertex  0    O    (0, 0, 0)              fold center
	vertex  1    U++  ( a,  u2, u3)
	vertex  2    U-+  (-a,  u2, u3)
	vertex  3    U+-  ( a, -u2, u3)
	vertex  4    U--  (-a, -u2, u3)
	vertex  5    W+   ( c sin(g), 0, c cos(g))
	vertex  6    W-   (-c sin(g), 0, c cos(g))

with u3 = a tan(pi/4 - g/2) and u2 = sqrt(b^2 - u3^2). Gamma is the fold angle in radians.
*/
type WB4P struct {
	Gamma float64
	A     float64
	B     float64
	C     float64
}

var _ Cell = (*WB4P)(nil)

var (
	wb4pFaces = [][3]int{{0, 1, 2}, {0, 3, 4}, {0, 1, 5}, {0, 5, 3}, {0, 2, 6}, {0, 6, 4}}
	// Diagonals to the U nodes fold as valleys, the rest as mountains
	wb4pValley   = [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}}
	wb4pMountain = [][2]int{{0, 5}, {0, 6}, {1, 2}, {3, 4}, {1, 5}, {5, 3}, {2, 6}, {6, 4}}
	wb4pBoundary = [][2]int{{2, 1}, {6, 5}, {4, 3}}
)

func NewWB4P(gamma, a, b, c float64) *WB4P {
	return &WB4P{Gamma: gamma, A: a, B: b, C: c}
}

func DefaultWB4P() *WB4P {
	return NewWB4P(DefaultGamma, DefaultA, DefaultB, DefaultC)
}

func (wb *WB4P) String() string {
	return fmt.Sprintf("WB4P(gamma=%g, a=%g, b=%g, c=%g)", wb.Gamma, wb.A, wb.B, wb.C)
}

func (wb *WB4P) Geometry() (g *Geometry, err error) {
	var (
		gamma, a, b, c = wb.Gamma, wb.A, wb.B, wb.C
	)
	if a <= 0 || b <= 0 || c <= 0 {
		err = fmt.Errorf("%w: lengths must be positive, have a=%g, b=%g, c=%g", ErrDegenerateCell, a, b, c)
		return
	}
	if gamma <= 0 || gamma >= math.Pi/2 {
		err = fmt.Errorf("%w: fold angle %g outside (0, pi/2)", ErrDegenerateCell, gamma)
		return
	}
	sinG, cosG := math.Sincos(gamma)
	u3 := a * math.Tan(math.Pi/4-gamma/2)
	if b <= math.Abs(u3) {
		err = fmt.Errorf("%w: b=%g does not reach the fold height %g", ErrDegenerateCell, b, u3)
		return
	}
	u2 := math.Sqrt(b*b - u3*u3)
	wz := c * cosG
	denom := 2 * (u3 - wz)
	if math.Abs(denom) <= 1.e-9*max(a, b, c) {
		err = fmt.Errorf("%w: U and W nodes share the same height, the cell is not curved", ErrDegenerateCell)
		return
	}
	// Rotation axis is parallel to x, equidistant in the y-z plane from the W and U nodes
	R0 := (b*b - wz*wz) / denom
	g = &Geometry{
		X: []r3.Vec{
			{},
			{X: a, Y: u2, Z: u3},
			{X: -a, Y: u2, Z: u3},
			{X: a, Y: -u2, Z: u3},
			{X: -a, Y: -u2, Z: u3},
			{X: c * sinG, Z: wz},
			{X: -c * sinG, Z: wz},
		},
		Faces:         copyFaces(wb4pFaces),
		ValleyEdges:   copyEdges(wb4pValley),
		MountainEdges: copyEdges(wb4pMountain),
		Boundary:      copyEdges(wb4pBoundary),
		DeltaX:        a + c*sinG,
		DeltaPhi:      wrapAngle(math.Atan2(u3-R0, u2) - math.Atan2(wz-R0, 0)),
		R0:            R0,
		MinLength:     floats.Min([]float64{a, b, c}),
	}
	g.Edges = append(copyEdges(wb4pValley), wb4pMountain...)
	return
}

// wrapAngle maps an angle into (-pi, pi]
func wrapAngle(phi float64) float64 {
	for phi > math.Pi {
		phi -= 2 * math.Pi
	}
	for phi <= -math.Pi {
		phi += 2 * math.Pi
	}
	return phi
}

func copyFaces(f [][3]int) [][3]int {
	return append([][3]int(nil), f...)
}

func copyEdges(e [][2]int) [][2]int {
	return append([][2]int(nil), e...)
}
