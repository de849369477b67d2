package analysis

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/wbfold/geometry3D"
	"github.com/notargets/wbfold/tessellation"
)

// Report summarizes a tessellated shell
type Report struct {
	NCells         int
	NVertices      int
	NFaces         int
	NEdges         int
	NValley        int
	NMountain      int
	NBoundaryEdges int
	NAdjacentFaces int // Face pairs sharing an edge

	Box            *geometry3D.BoundingBox
	MinEdgeLength  float64
	MaxEdgeLength  float64
	MeanEdgeLength float64
	SurfaceArea    float64

	Envelope    *Envelope
	EnvelopeErr error
}

func Analyze(m *tessellation.Mesh) (r *Report) {
	r = &Report{
		NCells:         m.NCells,
		NVertices:      len(m.X),
		NFaces:         len(m.Faces),
		NEdges:         len(m.Edges),
		NValley:        len(m.ValleyEdges),
		NMountain:      len(m.MountainEdges),
		NBoundaryEdges: len(tessellation.BoundaryEdges(m.Faces)),
		NAdjacentFaces: len(m.FaceAdjacency()),
		Box:            geometry3D.NewBoundingBox(m.X),
	}
	if len(m.Edges) != 0 {
		lengths := EdgeLengths(m.X, m.Edges)
		r.MinEdgeLength = floats.Min(lengths)
		r.MaxEdgeLength = floats.Max(lengths)
		r.MeanEdgeLength = floats.Sum(lengths) / float64(len(lengths))
	}
	r.SurfaceArea = SurfaceArea(m.X, m.Faces)
	r.Envelope, r.EnvelopeErr = NewEnvelope(m.X, DefaultHullEps)
	return
}

func EdgeLengths(X []r3.Vec, edges [][2]int) (lengths []float64) {
	lengths = make([]float64, len(edges))
	for i, e := range edges {
		lengths[i] = geometry3D.Distance(X[e[0]], X[e[1]])
	}
	return
}

func SurfaceArea(X []r3.Vec, faces [][3]int) (area float64) {
	for _, f := range faces {
		a := X[f[0]]
		area += 0.5 * r3.Norm(r3.Cross(r3.Sub(X[f[1]], a), r3.Sub(X[f[2]], a)))
	}
	return
}

func (r *Report) Print(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Shell Statistics:\n")
	fmt.Fprintf(w, "  Cells: %d\n", r.NCells)
	fmt.Fprintf(w, "  Vertices: %d\n", r.NVertices)
	fmt.Fprintf(w, "  Faces: %d (%d adjacent pairs)\n", r.NFaces, r.NAdjacentFaces)
	fmt.Fprintf(w, "  Edges: %d (%d valley, %d mountain, %d on the boundary)\n",
		r.NEdges, r.NValley, r.NMountain, r.NBoundaryEdges)
	fmt.Fprintf(w, "  Surface Area: %.6f\n", r.SurfaceArea)
	if r.Box != nil {
		ext := r.Box.Extent()
		fmt.Fprintf(w, "Bounding Box:\n")
		fmt.Fprintf(w, "  Min: [%.6f, %.6f, %.6f]\n", r.Box.Min.X, r.Box.Min.Y, r.Box.Min.Z)
		fmt.Fprintf(w, "  Max: [%.6f, %.6f, %.6f]\n", r.Box.Max.X, r.Box.Max.Y, r.Box.Max.Z)
		fmt.Fprintf(w, "  Extent: [%.6f, %.6f, %.6f], Diagonal: %.6f\n", ext.X, ext.Y, ext.Z, r.Box.Diagonal())
	}
	fmt.Fprintf(w, "Crease Lengths:\n")
	fmt.Fprintf(w, "  Min/Max/Mean: %.6f / %.6f / %.6f\n", r.MinEdgeLength, r.MaxEdgeLength, r.MeanEdgeLength)
	fmt.Fprintf(w, "Envelope:\n")
	if r.Envelope == nil {
		fmt.Fprintf(w, "  unavailable: %v\n", r.EnvelopeErr)
		return
	}
	fmt.Fprintf(w, "  Hull vertices: %d, triangles: %d\n", len(r.Envelope.Vertices), len(r.Envelope.Triangles))
	fmt.Fprintf(w, "  Volume: %.6f, Area: %.6f\n", r.Envelope.Volume, r.Envelope.Area)
}
