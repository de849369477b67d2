package wbcell

import (
	"fmt"
	"math"
	"os"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
Explicit is a cell whose mesh and replication parameters are given directly, typically from a YAML file:

	Title: "flat test cell"
	Vertices: [[0,0,0], [1,0,0], [0,1,0]]
	Faces: [[0,1,2]]
	ValleyEdges: [[0,1]]
	MountainEdges: [[1,2], [2,0]]
	DeltaX: 2
	DeltaPhi: 0.1
	R0: -10
*/
type Explicit struct {
	Title         string       `json:"Title"`
	Vertices      [][3]float64 `json:"Vertices"`
	Faces         [][3]int     `json:"Faces"`
	ValleyEdges   [][2]int     `json:"ValleyEdges"`
	MountainEdges [][2]int     `json:"MountainEdges"`
	Boundary      [][2]int     `json:"Boundary"`
	DeltaX        float64      `json:"DeltaX"`
	DeltaPhi      float64      `json:"DeltaPhi"`
	R0            float64      `json:"R0"`
	MinLength     float64      `json:"MinLength"` // Shortest crease line length when zero
}

var _ Cell = (*Explicit)(nil)

func ParseExplicit(data []byte) (ex *Explicit, err error) {
	ex = &Explicit{}
	if err = yaml.Unmarshal(data, ex); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidCell, err)
		return nil, err
	}
	return
}

func LoadExplicit(path string) (ex *Explicit, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	if ex, err = ParseExplicit(data); err != nil {
		err = fmt.Errorf("reading cell file %s: %w", path, err)
	}
	return
}

func (ex *Explicit) Geometry() (g *Geometry, err error) {
	g = &Geometry{
		X:             make([]r3.Vec, len(ex.Vertices)),
		Faces:         copyFaces(ex.Faces),
		ValleyEdges:   copyEdges(ex.ValleyEdges),
		MountainEdges: copyEdges(ex.MountainEdges),
		Boundary:      copyEdges(ex.Boundary),
		DeltaX:        ex.DeltaX,
		DeltaPhi:      ex.DeltaPhi,
		R0:            ex.R0,
		MinLength:     ex.MinLength,
	}
	for i, v := range ex.Vertices {
		g.X[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	g.Edges = append(copyEdges(ex.ValleyEdges), ex.MountainEdges...)
	if g.MinLength == 0 {
		g.MinLength = shortestEdge(g.X, g.Edges)
	}
	if err = g.Validate(); err != nil {
		return nil, err
	}
	return
}

// shortestEdge ignores edges with out of range indices, Validate reports those
func shortestEdge(X []r3.Vec, edges [][2]int) (length float64) {
	length = math.Inf(1)
	for _, e := range edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= len(X) || e[1] >= len(X) {
			continue
		}
		length = min(length, r3.Norm(r3.Sub(X[e[0]], X[e[1]])))
	}
	if math.IsInf(length, 1) {
		length = 0
	}
	return
}

// NewExplicit captures a cell geometry so it can be edited and read back as an explicit cell
func NewExplicit(title string, g *Geometry) (ex *Explicit) {
	ex = &Explicit{
		Title:         title,
		Vertices:      make([][3]float64, len(g.X)),
		Faces:         copyFaces(g.Faces),
		ValleyEdges:   copyEdges(g.ValleyEdges),
		MountainEdges: copyEdges(g.MountainEdges),
		Boundary:      copyEdges(g.Boundary),
		DeltaX:        g.DeltaX,
		DeltaPhi:      g.DeltaPhi,
		R0:            g.R0,
		MinLength:     g.MinLength,
	}
	for i, x := range g.X {
		ex.Vertices[i] = [3]float64{x.X, x.Y, x.Z}
	}
	return
}

func (ex *Explicit) Marshal() ([]byte, error) {
	return yaml.Marshal(ex)
}
