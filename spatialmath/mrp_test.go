package spatialmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

// a 45 degree rotation about the x axis in the representations used by the dynamics code
var (
	th     = math.Pi / 4.
	aa45x  = &R4AA{th, 1., 0., 0.}
	mrp45x = NewMRP(math.Tan(th/4), 0, 0)
	dcm45x = mgl64.Mat3FromRows(
		mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{0, math.Cos(th), math.Sin(th)},
		mgl64.Vec3{0, -math.Sin(th), math.Cos(th)},
	)
)

func TestTilde(t *testing.T) {
	a := r3.Vector{X: 1, Y: -2, Z: 3}
	b := r3.Vector{X: 0.5, Y: 4, Z: -1}
	cross := a.Cross(b)
	got := MulVec(Tilde(a), b)
	test.That(t, got.X, test.ShouldAlmostEqual, cross.X)
	test.That(t, got.Y, test.ShouldAlmostEqual, cross.Y)
	test.That(t, got.Z, test.ShouldAlmostEqual, cross.Z)

	skew := Tilde(a).Add(Tilde(a).Transpose())
	test.That(t, Mat3AlmostEqual(skew, mgl64.Mat3{}, 1e-15), test.ShouldBeTrue)
}

func TestPRVToDCM(t *testing.T) {
	test.That(t, Mat3AlmostEqual(aa45x.DCM(), dcm45x, 1e-12), test.ShouldBeTrue)
	test.That(t, Mat3AlmostEqual(PRVToDCM(r3.Vector{}), mgl64.Ident3(), 0), test.ShouldBeTrue)

	t.Run("orthonormal", func(t *testing.T) {
		c := PRVToDCM(r3.Vector{X: 0.3, Y: -1.1, Z: 2.0})
		test.That(t, Mat3AlmostEqual(c.Mul3(c.Transpose()), mgl64.Ident3(), 1e-12), test.ShouldBeTrue)
		test.That(t, c.Det(), test.ShouldAlmostEqual, 1.0)
	})
	t.Run("negated angle is the transpose", func(t *testing.T) {
		prv := r3.Vector{X: 0.2, Y: 0.4, Z: -0.7}
		test.That(t, Mat3AlmostEqual(PRVToDCM(prv.Mul(-1)), PRVToDCM(prv).Transpose(), 1e-12), test.ShouldBeTrue)
	})
}

func TestMRP(t *testing.T) {
	test.That(t, Mat3AlmostEqual(mrp45x.DCM(), dcm45x, 1e-12), test.ShouldBeTrue)

	got := DCMToMRP(dcm45x)
	test.That(t, got.X, test.ShouldAlmostEqual, mrp45x.X)
	test.That(t, got.Y, test.ShouldAlmostEqual, mrp45x.Y)
	test.That(t, got.Z, test.ShouldAlmostEqual, mrp45x.Z)

	test.That(t, OrientationAlmostEqual(aa45x, mrp45x), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(NewZeroOrientation(), mrp45x), test.ShouldBeFalse)

	t.Run("shadow set describes the same attitude", func(t *testing.T) {
		s := NewMRP(0.3, -0.5, 0.7)
		test.That(t, Mat3AlmostEqual(s.Shadow().DCM(), s.DCM(), 1e-12), test.ShouldBeTrue)
		test.That(t, s.Shadow().Vector().Norm(), test.ShouldBeGreaterThan, 1)
		test.That(t, s.Shadow().Short().Vector().Norm(), test.ShouldAlmostEqual, s.Vector().Norm())
	})

	t.Run("round trip through the dcm", func(t *testing.T) {
		for _, prv := range []r3.Vector{
			{X: 0.1, Y: 0.2, Z: 0.3},
			{X: 3.0, Y: 0, Z: 0},
			{X: 0, Y: -2.9, Z: 0.5},
			{X: 1, Y: 1, Z: -2.5},
		} {
			c := PRVToDCM(prv)
			s := DCMToMRP(c)
			test.That(t, s.Vector().Norm(), test.ShouldBeLessThanOrEqualTo, 1+1e-12)
			test.That(t, Mat3AlmostEqual(s.DCM(), c, 1e-10), test.ShouldBeTrue)
			aa := s.AxisAngles()
			test.That(t, Mat3AlmostEqual(aa.DCM(), c, 1e-10), test.ShouldBeTrue)
		}
	})
}

func TestMRPRate(t *testing.T) {
	// integrate a constant body rate about z and compare with the closed form
	omega := r3.Vector{Z: 0.5}
	s := MRP{}
	dt := 1e-3
	for i := 0; i < 2000; i++ {
		k1 := s.Rate(omega)
		k2 := MRP(s.Vector().Add(k1.Mul(dt / 2))).Rate(omega)
		k3 := MRP(s.Vector().Add(k2.Mul(dt / 2))).Rate(omega)
		k4 := MRP(s.Vector().Add(k3.Mul(dt))).Rate(omega)
		s = MRP(s.Vector().Add(k1.Add(k2.Mul(2)).Add(k3.Mul(2)).Add(k4).Mul(dt / 6))).Short()
	}
	test.That(t, s.Z, test.ShouldAlmostEqual, math.Tan(1.0/4), 1e-9)
	test.That(t, s.X, test.ShouldAlmostEqual, 0)
}

func TestOrientationBetween(t *testing.T) {
	a := NewMRP(0.1, 0.2, -0.3)
	b := NewMRP(-0.4, 0.05, 0.2)
	rel := OrientationBetween(a, b)
	test.That(t, Mat3AlmostEqual(rel.DCM().Mul3(a.DCM()), b.DCM(), 1e-12), test.ShouldBeTrue)
}

func TestR4AANormalize(t *testing.T) {
	aa := &R4AA{Theta: 1, RX: 0, RY: 3, RZ: 4}
	test.That(t, aa.Normalize(), test.ShouldBeNil)
	test.That(t, aa.RY, test.ShouldAlmostEqual, 0.6)
	test.That(t, aa.RZ, test.ShouldAlmostEqual, 0.8)

	zero := &R4AA{Theta: 1}
	test.That(t, zero.Normalize(), test.ShouldBeError, "cannot normalize R4AA, divide by zero")

	back := R3ToR4(aa.ToR3())
	test.That(t, back.Theta, test.ShouldAlmostEqual, 1)
	test.That(t, back.RZ, test.ShouldAlmostEqual, 0.8)
	test.That(t, R3ToR4(r3.Vector{}), test.ShouldResemble, NewR4AA())
}
