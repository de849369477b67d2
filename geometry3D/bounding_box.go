package geometry3D

import (
	"gonum.org/v1/gonum/spatial/r3"
)

type BoundingBox struct {
	r3.Box
}

func NewBoundingBox(points []r3.Vec) (Box *BoundingBox) {
	if len(points) == 0 {
		return nil
	}
	Box = &BoundingBox{r3.Box{Min: points[0], Max: points[0]}}
	for _, p := range points[1:] {
		Box.Min = r3.Vec{X: min(Box.Min.X, p.X), Y: min(Box.Min.Y, p.Y), Z: min(Box.Min.Z, p.Z)}
		Box.Max = r3.Vec{X: max(Box.Max.X, p.X), Y: max(Box.Max.Y, p.Y), Z: max(Box.Max.Z, p.Z)}
	}
	return
}

func (bb *BoundingBox) Centroid() r3.Vec {
	return Midpoint(bb.Min, bb.Max)
}

func (bb *BoundingBox) Extent() r3.Vec {
	return r3.Sub(bb.Max, bb.Min)
}

func (bb *BoundingBox) Diagonal() float64 {
	return r3.Norm(bb.Extent())
}
