package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// See here for a thorough explanation: https://en.wikipedia.org/wiki/Axis%E2%80%93angle_representation
// An orientation is expressed by an axis (a unit vector RX, RY, RZ) and a rotation Theta about that axis.
// These four numbers can be used as-is (R4), or converted to R3 by scaling the axis by Theta, which is
// the principal rotation vector used throughout the dynamics code.

// prvEpsilon is the rotation magnitude below which a principal rotation vector is treated as identity.
const prvEpsilon = 1e-12

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA creates an R4AA with no rotation about the z axis.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// AxisAngles returns the orientation in axis angle representation.
func (r4 *R4AA) AxisAngles() *R4AA {
	return r4
}

// Quaternion returns orientation in quaternion representation.
func (r4 *R4AA) Quaternion() quat.Number {
	return DCMToQuat(r4.DCM())
}

// MRP returns the orientation as short-set modified Rodrigues parameters.
func (r4 *R4AA) MRP() MRP {
	return DCMToMRP(r4.DCM())
}

// DCM returns the direction cosine matrix of the rotation. For a frame F rotated from frame G by
// this axis angle the result is [FG], mapping G components into F components.
func (r4 *R4AA) DCM() mgl64.Mat3 {
	return PRVToDCM(r4.ToR3())
}

// ToR3 converts an R4 angle axis to R3.
func (r4 *R4AA) ToR3() r3.Vector {
	return r3.Vector{X: r4.RX * r4.Theta, Y: r4.RY * r4.Theta, Z: r4.RZ * r4.Theta}
}

// Normalize scales the x, y, and z components of a R4 axis angle to be on the unit sphere.
func (r4 *R4AA) Normalize() error {
	norm := math.Sqrt(r4.RX*r4.RX + r4.RY*r4.RY + r4.RZ*r4.RZ)
	if norm == 0.0 {
		return errors.New("cannot normalize R4AA, divide by zero")
	}
	r4.RX /= norm
	r4.RY /= norm
	r4.RZ /= norm
	return nil
}

// R3ToR4 converts an R3 angle axis to R4.
func R3ToR4(aa r3.Vector) *R4AA {
	theta := aa.Norm()
	if theta < prvEpsilon {
		return NewR4AA()
	}
	return &R4AA{theta, aa.X / theta, aa.Y / theta, aa.Z / theta}
}

// PRVToDCM converts a principal rotation vector (axis scaled by angle) to the direction cosine
// matrix [C] = cos(phi) I + (1 - cos(phi)) e e^T - sin(phi) [e~].
func PRVToDCM(prv r3.Vector) mgl64.Mat3 {
	phi := prv.Norm()
	if phi < prvEpsilon {
		return mgl64.Ident3()
	}
	e := prv.Mul(1 / phi)
	sp, cp := math.Sincos(phi)
	return mgl64.Ident3().Mul(cp).
		Add(Outer(e, e).Mul(1 - cp)).
		Sub(Tilde(e).Mul(sp))
}
