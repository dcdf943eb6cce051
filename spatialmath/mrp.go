package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// MRP holds modified Rodrigues parameters. An MRP named sigma_BN describes the attitude of frame B
// relative to frame N.
type MRP r3.Vector

// NewMRP returns the MRP with components x, y, z.
func NewMRP(x, y, z float64) MRP {
	return MRP{X: x, Y: y, Z: z}
}

// Vector returns the parameters as an r3.Vector.
func (s MRP) Vector() r3.Vector {
	return r3.Vector(s)
}

func (s MRP) squared() float64 {
	return r3.Vector(s).Norm2()
}

// Shadow returns the shadow set -sigma / |sigma|^2, which describes the same attitude.
func (s MRP) Shadow() MRP {
	sq := s.squared()
	if sq == 0 {
		return s
	}
	return MRP(r3.Vector(s).Mul(-1 / sq))
}

// Short returns the short set, i.e. the representation with |sigma| <= 1.
func (s MRP) Short() MRP {
	if s.squared() > 1 {
		return s.Shadow()
	}
	return s
}

// DCM returns [BN] for sigma_BN:
// [C] = I + (8 [s~]^2 - 4 (1 - s^2) [s~]) / (1 + s^2)^2.
func (s MRP) DCM() mgl64.Mat3 {
	sq := s.squared()
	st := Tilde(r3.Vector(s))
	den := (1 + sq) * (1 + sq)
	return mgl64.Ident3().
		Add(st.Mul3(st).Mul(8 / den)).
		Sub(st.Mul(4 * (1 - sq) / den))
}

// MRP returns s, so MRP satisfies Orientation.
func (s MRP) MRP() MRP {
	return s
}

// Quaternion returns the attitude as a unit quaternion with non-negative scalar part.
func (s MRP) Quaternion() quat.Number {
	return DCMToQuat(s.DCM())
}

// AxisAngles returns the attitude as an axis angle.
func (s MRP) AxisAngles() *R4AA {
	q := s.Quaternion()
	return QuatToR4AA(q)
}

// B returns the matrix B(sigma) = (1 - s^2) I + 2 [s~] + 2 s s^T used by the kinematic equation.
func (s MRP) B() mgl64.Mat3 {
	v := r3.Vector(s)
	return mgl64.Ident3().Mul(1 - s.squared()).
		Add(Tilde(v).Mul(2)).
		Add(Outer(v, v).Mul(2))
}

// Rate returns sigmaDot = 1/4 B(sigma) omega for the body angular velocity omega.
func (s MRP) Rate(omega r3.Vector) r3.Vector {
	return MulVec(s.B(), omega).Mul(0.25)
}

// DCMToMRP returns the short-set MRP describing the rotation [BN].
func DCMToMRP(c mgl64.Mat3) MRP {
	q := DCMToQuat(c)
	den := 1 + q.Real
	return MRP{X: q.Imag / den, Y: q.Jmag / den, Z: q.Kmag / den}
}

// DCMToQuat converts [BN] to Euler parameters using Sheppard's method. The scalar part of the result
// is non-negative.
func DCMToQuat(c mgl64.Mat3) quat.Number {
	tr := Trace(c)
	b2 := [4]float64{
		(1 + tr) / 4,
		(1 + 2*c.At(0, 0) - tr) / 4,
		(1 + 2*c.At(1, 1) - tr) / 4,
		(1 + 2*c.At(2, 2) - tr) / 4,
	}
	largest := 0
	for i := 1; i < 4; i++ {
		if b2[i] > b2[largest] {
			largest = i
		}
	}

	var b0, b1, b2v, b3 float64
	switch largest {
	case 0:
		b0 = math.Sqrt(b2[0])
		b1 = (c.At(1, 2) - c.At(2, 1)) / 4 / b0
		b2v = (c.At(2, 0) - c.At(0, 2)) / 4 / b0
		b3 = (c.At(0, 1) - c.At(1, 0)) / 4 / b0
	case 1:
		b1 = math.Sqrt(b2[1])
		b0 = (c.At(1, 2) - c.At(2, 1)) / 4 / b1
		b2v = (c.At(0, 1) + c.At(1, 0)) / 4 / b1
		b3 = (c.At(2, 0) + c.At(0, 2)) / 4 / b1
	case 2:
		b2v = math.Sqrt(b2[2])
		b0 = (c.At(2, 0) - c.At(0, 2)) / 4 / b2v
		b1 = (c.At(0, 1) + c.At(1, 0)) / 4 / b2v
		b3 = (c.At(1, 2) + c.At(2, 1)) / 4 / b2v
	default:
		b3 = math.Sqrt(b2[3])
		b0 = (c.At(0, 1) - c.At(1, 0)) / 4 / b3
		b1 = (c.At(2, 0) + c.At(0, 2)) / 4 / b3
		b2v = (c.At(1, 2) + c.At(2, 1)) / 4 / b3
	}
	q := quat.Number{Real: b0, Imag: b1, Jmag: b2v, Kmag: b3}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return quat.Scale(1/quat.Abs(q), q)
}

// QuatToR4AA converts a unit quaternion to an axis angle.
func QuatToR4AA(q quat.Number) *R4AA {
	denom := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if denom < prvEpsilon {
		return NewR4AA()
	}
	angle := 2 * math.Atan2(denom, q.Real)
	return &R4AA{Theta: angle, RX: q.Imag / denom, RY: q.Jmag / denom, RZ: q.Kmag / denom}
}
