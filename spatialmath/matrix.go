package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Tilde returns the skew-symmetric cross product operator of v, such that Tilde(a) * b == a x b.
func Tilde(v r3.Vector) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -v.Z, v.Y},
		mgl64.Vec3{v.Z, 0, -v.X},
		mgl64.Vec3{-v.Y, v.X, 0},
	)
}

// Outer returns the outer product a b^T.
func Outer(a, b r3.Vector) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{a.X * b.X, a.X * b.Y, a.X * b.Z},
		mgl64.Vec3{a.Y * b.X, a.Y * b.Y, a.Y * b.Z},
		mgl64.Vec3{a.Z * b.X, a.Z * b.Y, a.Z * b.Z},
	)
}

// MulVec returns m * v.
func MulVec(m mgl64.Mat3, v r3.Vector) r3.Vector {
	return FromVec3(m.Mul3x1(ToVec3(v)))
}

// QuadForm returns a^T m b.
func QuadForm(a r3.Vector, m mgl64.Mat3, b r3.Vector) float64 {
	return a.Dot(MulVec(m, b))
}

// ToVec3 converts an r3.Vector to a mathgl vector.
func ToVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromVec3 converts a mathgl vector to an r3.Vector.
func FromVec3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// Trace returns the sum of the diagonal of m.
func Trace(m mgl64.Mat3) float64 {
	return m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
}

// Mat3FromSlice builds a matrix from nine row-major values.
func Mat3FromSlice(rowMajor []float64) mgl64.Mat3 {
	if len(rowMajor) != 9 {
		return mgl64.Mat3{}
	}
	return mgl64.Mat3FromRows(
		mgl64.Vec3{rowMajor[0], rowMajor[1], rowMajor[2]},
		mgl64.Vec3{rowMajor[3], rowMajor[4], rowMajor[5]},
		mgl64.Vec3{rowMajor[6], rowMajor[7], rowMajor[8]},
	)
}

// Mat3ToSlice returns the nine row-major values of m.
func Mat3ToSlice(m mgl64.Mat3) []float64 {
	out := make([]float64, 0, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out = append(out, m.At(row, col))
		}
	}
	return out
}

// ToDense copies m into a 3x3 gonum matrix.
func ToDense(m mgl64.Mat3) *mat.Dense {
	return mat.NewDense(3, 3, Mat3ToSlice(m))
}

// FromDense copies the leading 3x3 block of d.
func FromDense(d mat.Matrix) mgl64.Mat3 {
	var out mgl64.Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out.Set(row, col, d.At(row, col))
		}
	}
	return out
}

// ToVecDense copies v into a gonum column vector.
func ToVecDense(v r3.Vector) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
}

// FromVecDense reads the first three entries of v.
func FromVecDense(v mat.Vector) r3.Vector {
	return r3.Vector{X: v.AtVec(0), Y: v.AtVec(1), Z: v.AtVec(2)}
}

// Mat3AlmostEqual reports whether every entry of a and b is within tol of each other.
func Mat3AlmostEqual(a, b mgl64.Mat3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// VectorAlmostEqual reports whether every component of a and b is within tol of each other.
func VectorAlmostEqual(a, b r3.Vector, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
