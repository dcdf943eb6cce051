package dynamics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/spinningbody/spatialmath"
)

// BackSubMatrices hold the terms of the hub's coupled equations of motion
//
//	[A B] [rDDot_BN_B ]   [VecTrans]
//	[C D] [omegaDot_BN] = [VecRot  ]
//
// Each effector produces its own contribution; the hub sums them before solving.
type BackSubMatrices struct {
	MatrixA  mgl64.Mat3
	MatrixB  mgl64.Mat3
	MatrixC  mgl64.Mat3
	MatrixD  mgl64.Mat3
	VecTrans r3.Vector
	VecRot   r3.Vector
}

// Add returns the element-wise sum of b and o.
func (b BackSubMatrices) Add(o BackSubMatrices) BackSubMatrices {
	return BackSubMatrices{
		MatrixA:  b.MatrixA.Add(o.MatrixA),
		MatrixB:  b.MatrixB.Add(o.MatrixB),
		MatrixC:  b.MatrixC.Add(o.MatrixC),
		MatrixD:  b.MatrixD.Add(o.MatrixD),
		VecTrans: b.VecTrans.Add(o.VecTrans),
		VecRot:   b.VecRot.Add(o.VecRot),
	}
}

// Scale returns b with every term multiplied by f.
func (b BackSubMatrices) Scale(f float64) BackSubMatrices {
	return BackSubMatrices{
		MatrixA:  b.MatrixA.Mul(f),
		MatrixB:  b.MatrixB.Mul(f),
		MatrixC:  b.MatrixC.Mul(f),
		MatrixD:  b.MatrixD.Mul(f),
		VecTrans: b.VecTrans.Mul(f),
		VecRot:   b.VecRot.Mul(f),
	}
}

// AlmostEqual reports whether every term of b and o is within tol.
func (b BackSubMatrices) AlmostEqual(o BackSubMatrices, tol float64) bool {
	return spatialmath.Mat3AlmostEqual(b.MatrixA, o.MatrixA, tol) &&
		spatialmath.Mat3AlmostEqual(b.MatrixB, o.MatrixB, tol) &&
		spatialmath.Mat3AlmostEqual(b.MatrixC, o.MatrixC, tol) &&
		spatialmath.Mat3AlmostEqual(b.MatrixD, o.MatrixD, tol) &&
		spatialmath.VectorAlmostEqual(b.VecTrans, o.VecTrans, tol) &&
		spatialmath.VectorAlmostEqual(b.VecRot, o.VecRot, tol)
}
