// Package spatialmath defines attitude parameterizations and the small amount of 3x3 linear algebra
// needed by rigid body dynamics.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the attitude of a
// frame relative to another.
type Orientation interface {
	AxisAngles() *R4AA
	MRP() MRP
	Quaternion() quat.Number
	DCM() mgl64.Mat3
}

// NewZeroOrientation returns an orientation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return MRP{}
}

// OrientationAlmostEqual will return a bool describing whether 2 orientations are approximately the same.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// QuaternionAlmostEqual compares two quaternions, treating q and -q as the same attitude.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
	flipped := math.Abs(a.Real+b.Real) < tol &&
		math.Abs(a.Imag+b.Imag) < tol &&
		math.Abs(a.Jmag+b.Jmag) < tol &&
		math.Abs(a.Kmag+b.Kmag) < tol
	return same || flipped
}

// OrientationBetween returns the orientation of frame 2 relative to frame 1, given both relative to a
// common frame: [21] = [2N][1N]^T.
func OrientationBetween(o1, o2 Orientation) Orientation {
	return DCMToMRP(o2.DCM().Mul3(o1.DCM().Transpose()))
}
