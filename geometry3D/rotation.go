package geometry3D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	XAxis = r3.Vec{X: 1}
	YAxis = r3.Vec{Y: 1}
	ZAxis = r3.Vec{Z: 1}
)

/*
Rotation is a rigid rotation about an axis through the origin, held as a unit quaternion.
Positive angles rotate counter-clockwise when looking down the axis towards the origin.
*/
type Rotation struct {
	q quat.Number
}

func NewRotation(axis r3.Vec, angle float64) (rot Rotation) {
	var (
		norm = r3.Norm(axis)
	)
	if norm == 0 {
		panic(fmt.Errorf("unable to rotate about a zero length axis"))
	}
	u := r3.Scale(1/norm, axis)
	sin, cos := math.Sincos(0.5 * angle)
	q := quat.Number{Real: cos, Imag: sin * u.X, Jmag: sin * u.Y, Kmag: sin * u.Z}
	// Renormalize, sin/cos of the half angle are not exactly unit length after rounding
	rot.q = quat.Scale(1/quat.Abs(q), q)
	return
}

// Apply returns q * v * conj(q)
func (rot Rotation) Apply(v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(rot.q, p), quat.Conj(rot.q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// ApplyAbout rotates v about the parallel axis passing through center
func (rot Rotation) ApplyAbout(v, center r3.Vec) r3.Vec {
	return r3.Add(rot.Apply(r3.Sub(v, center)), center)
}

func (rot Rotation) Quaternion() quat.Number { return rot.q }

// Compose returns the rotation that applies rot first, then next
func (rot Rotation) Compose(next Rotation) Rotation {
	return Rotation{q: quat.Mul(next.q, rot.q)}
}

func Midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
