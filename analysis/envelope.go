package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
	gr3 "gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/wbfold/geometry3D"
)

const DefaultHullEps = 1e-12

var ErrDegenerateEnvelope = errors.New("point set does not span a volume")

// Envelope is the convex hull of the shell vertices
type Envelope struct {
	Triangles [][3]int // Indices into the input points, counter clockwise seen from outside
	Vertices  []int    // Input points on the hull, ascending
	Volume    float64
	Area      float64
}

func NewEnvelope(X []gr3.Vec, eps float64) (env *Envelope, err error) {
	if len(X) < 4 {
		err = fmt.Errorf("%w: %d points, minimum 4 required", ErrDegenerateEnvelope, len(X))
		return
	}
	var (
		box = geometry3D.NewBoundingBox(X)
		ext = box.Extent()
	)
	if min(ext.X, ext.Y, ext.Z) <= 1.e-9*box.Diagonal() {
		err = fmt.Errorf("%w: bounding box extent %v", ErrDegenerateEnvelope, ext)
		return
	}
	pts := make([]r3.Vector, len(X))
	for i, x := range X {
		pts[i] = r3.Vector{X: x.X, Y: x.Y, Z: x.Z}
	}
	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(pts, true, true, eps)
	if len(ch.Indices) < 12 || len(ch.Indices)%3 != 0 {
		err = fmt.Errorf("%w: hull has %d indices", ErrDegenerateEnvelope, len(ch.Indices))
		return
	}
	env = &Envelope{Triangles: make([][3]int, len(ch.Indices)/3)}
	var (
		onHull = make([]bool, len(X))
		center = pts[0]
	)
	for i := range env.Triangles {
		base := 3 * i
		tri := [3]int{ch.Indices[base], ch.Indices[base+1], ch.Indices[base+2]}
		env.Triangles[i] = tri
		a, b, c := pts[tri[0]], pts[tri[1]], pts[tri[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		env.Area += 0.5 * n.Norm()
		// Signed tetrahedron against a fixed apex, the sum is independent of the apex
		env.Volume += a.Sub(center).Dot(b.Sub(center).Cross(c.Sub(center))) / 6
		for _, v := range tri {
			onHull[v] = true
		}
	}
	env.Volume = math.Abs(env.Volume)
	for i, on := range onHull {
		if on {
			env.Vertices = append(env.Vertices, i)
		}
	}
	return
}
