package spacecraft

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/spinningbody/dynamics"
	"go.viam.com/spinningbody/effectors/spinningbody"
	"go.viam.com/spinningbody/logging"
	"go.viam.com/spinningbody/messaging"
	sm "go.viam.com/spinningbody/spatialmath"
)

func testHub(gravity float64) HubConfig {
	return HubConfig{
		MHub:       100,
		IHubPntBcB: mgl64.Mat3FromRows(mgl64.Vec3{30, 0.5, 0}, mgl64.Vec3{0.5, 40, 0}, mgl64.Vec3{0, 0, 50}),
		RBcBB:      r3.Vector{X: 0.1, Y: -0.2, Z: 0.3},
		VInit:      r3.Vector{X: 1},
		SigmaInit:  sm.NewMRP(0.1, 0.2, -0.1),
		OmegaInit:  r3.Vector{X: 0.05, Y: -0.1, Z: 0.2},
		GravityN:   r3.Vector{Z: -gravity},
	}
}

func testBodies(damping float64) []spinningbody.Config {
	return []spinningbody.Config{
		{
			Mass:         20,
			IPntScS:      mgl64.Mat3FromRows(mgl64.Vec3{3, 0.1, 0.2}, mgl64.Vec3{0.1, 4, 0.3}, mgl64.Vec3{0.2, 0.3, 5}),
			RScSS:        r3.Vector{X: 0.5, Y: 0.2, Z: -0.1},
			RSBB:         r3.Vector{X: 1, Y: 0.5, Z: -0.3},
			SHatS:        r3.Vector{X: 1, Y: 2, Z: 2},
			DCMS0B:       sm.PRVToDCM(r3.Vector{X: 0.2, Y: -0.4, Z: 0.9}),
			ThetaInit:    0.3,
			ThetaDotInit: 0.1,
			K:            5,
			C:            damping,
		},
		{
			Mass:         10,
			IPntScS:      mgl64.Diag3(mgl64.Vec3{2, 2, 1}),
			RScSS:        r3.Vector{X: 0.3},
			RSBB:         r3.Vector{X: -0.8, Y: 0.1, Z: 0.2},
			SHatS:        r3.Vector{Z: 1},
			DCMS0B:       mgl64.Ident3(),
			ThetaInit:    -0.2,
			ThetaDotInit: 0.5,
			K:            2,
			C:            damping,
		},
	}
}

func newTestSpacecraft(t *testing.T, name string, hub HubConfig, bodies []spinningbody.Config) (*Spacecraft, []*spinningbody.SpinningBody) {
	t.Helper()
	logger := logging.NewTestLogger(t)
	sc := New(name, hub, logger)
	var sbs []*spinningbody.SpinningBody
	for _, cfg := range bodies {
		sb := spinningbody.New(cfg, sc.Manager(), logger)
		test.That(t, sc.AddStateEffector(sb), test.ShouldBeNil)
		sbs = append(sbs, sb)
	}
	test.That(t, sc.Initialize(), test.ShouldBeNil)
	return sc, sbs
}

func TestConservation(t *testing.T) {
	for _, gravity := range []float64{0, 9.81} {
		sc, _ := newTestSpacecraft(t, "", testHub(gravity), testBodies(0))
		before, err := sc.Diagnostics()
		test.That(t, err, test.ShouldBeNil)

		for i := 0; i < 1000; i++ {
			test.That(t, sc.Step(0.002), test.ShouldBeNil)
		}
		after, err := sc.Diagnostics()
		test.That(t, err, test.ShouldBeNil)

		test.That(t, after.RotationalEnergy, test.ShouldAlmostEqual, before.RotationalEnergy, 1e-9)
		test.That(t, after.OrbitalEnergy, test.ShouldAlmostEqual, before.OrbitalEnergy, 1e-8)
		test.That(t, sm.VectorAlmostEqual(after.RotationalAngularMomentum, before.RotationalAngularMomentum, 1e-9),
			test.ShouldBeTrue)
		if gravity == 0 {
			test.That(t, sm.VectorAlmostEqual(after.OrbitalAngularMomentum, before.OrbitalAngularMomentum, 1e-9),
				test.ShouldBeTrue)
		}
		test.That(t, sc.Time(), test.ShouldAlmostEqual, 2.0)
		test.That(t, sc.Clock(), test.ShouldEqual, uint64(2e9))
	}
}

func TestDampedEnergyDecay(t *testing.T) {
	sc, _ := newTestSpacecraft(t, "", testHub(0), testBodies(3))
	d, err := sc.Diagnostics()
	test.That(t, err, test.ShouldBeNil)
	first := d.RotationalEnergy + d.OrbitalEnergy
	prev := first
	for i := 0; i < 500; i++ {
		test.That(t, sc.Step(0.002), test.ShouldBeNil)
		d, err := sc.Diagnostics()
		test.That(t, err, test.ShouldBeNil)
		total := d.RotationalEnergy + d.OrbitalEnergy
		test.That(t, total, test.ShouldBeLessThanOrEqualTo, prev+1e-12)
		prev = total
	}
	test.That(t, prev, test.ShouldBeLessThan, first-0.1)

	h, err := sc.TotalRotationalAngularMomentum()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.Norm(), test.ShouldBeGreaterThan, 0)
}

func TestRigidHubFreeFall(t *testing.T) {
	hub := testHub(9.81)
	hub.OmegaInit = r3.Vector{}
	hub.VInit = r3.Vector{}
	sc, _ := newTestSpacecraft(t, "", hub, nil)
	for i := 0; i < 100; i++ {
		test.That(t, sc.Step(0.01), test.ShouldBeNil)
	}
	hs := sc.HubState()
	test.That(t, hs.OmegaBNB.Norm(), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, hs.VelocityN.Z, test.ShouldAlmostEqual, -9.81, 1e-9)
	test.That(t, hs.PositionN.Z, test.ShouldAlmostEqual, -9.81/2, 1e-9)
}

func TestExternalTorque(t *testing.T) {
	hub := HubConfig{
		MHub:       10,
		IHubPntBcB: mgl64.Diag3(mgl64.Vec3{1, 2, 4}),
		ExtTorqueB: r3.Vector{Z: 2},
		ExtForceN:  r3.Vector{X: 5},
	}
	sc, _ := newTestSpacecraft(t, "", hub, nil)
	test.That(t, sc.Step(0.5), test.ShouldBeNil)
	hs := sc.HubState()
	test.That(t, hs.OmegaBNB.Z, test.ShouldAlmostEqual, 0.25, 1e-12)
	// the force is fixed in N while the hub turns
	test.That(t, hs.VelocityN.X, test.ShouldAlmostEqual, 0.25, 1e-12)
}

func TestMRPSwitching(t *testing.T) {
	hub := HubConfig{MHub: 1, IHubPntBcB: mgl64.Ident3(), OmegaInit: r3.Vector{Z: 2}}
	sc, _ := newTestSpacecraft(t, "", hub, nil)
	for i := 0; i < 300; i++ {
		test.That(t, sc.Step(0.01), test.ShouldBeNil)
		test.That(t, sc.HubState().SigmaBN.Vector().Norm(), test.ShouldBeLessThanOrEqualTo, 1)
	}
	want := &sm.R4AA{Theta: 6, RZ: 1}
	test.That(t, sm.OrientationAlmostEqual(sc.HubState().SigmaBN, want), test.ShouldBeTrue)
}

func TestLifecycle(t *testing.T) {
	logger := logging.NewTestLogger(t)
	sc := New("sc1", testHub(0), logger)
	test.That(t, sc.Step(0.1), test.ShouldNotBeNil)
	_, err := sc.Diagnostics()
	test.That(t, err, test.ShouldNotBeNil)

	sb := spinningbody.New(testBodies(0)[0], sc.Manager(), logger)
	test.That(t, sc.AddStateEffector(sb), test.ShouldBeNil)
	test.That(t, sb.ThetaStateName(), test.ShouldEqual, "sc1spinningBodyTheta1")
	test.That(t, sc.Initialize(), test.ShouldBeNil)
	test.That(t, sc.Initialize(), test.ShouldNotBeNil)
	test.That(t, sc.Step(0), test.ShouldNotBeNil)
	test.That(t, sc.AddStateEffector(spinningbody.New(testBodies(0)[1], sc.Manager(), logger)), test.ShouldNotBeNil)
	test.That(t, sc.Effectors(), test.ShouldHaveLength, 1)

	names := sc.Manager().StateNames()
	test.That(t, names, test.ShouldContain, "sc1hubSigma")
	test.That(t, names, test.ShouldContain, "sc1spinningBodyThetaDot1")

	test.That(t, sc.Step(0.01), test.ShouldBeNil)
	com, err := sc.Manager().GetProperty("sc1" + dynamics.CenterOfMassName)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, com, test.ShouldHaveLength, 3)
}

func TestDegenerateEffectorHalts(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	sc := New("", testHub(0), logger)
	cfg := testBodies(0)[1]
	cfg.SHatS = r3.Vector{}
	test.That(t, sc.AddStateEffector(spinningbody.New(cfg, sc.Manager(), logger)), test.ShouldBeNil)

	err := sc.Initialize()
	test.That(t, errors.Is(err, spinningbody.ErrDegenerateSpinAxis), test.ShouldBeTrue)
	test.That(t, logs.FilterMessage("cannot reset effector").Len(), test.ShouldEqual, 1)
	test.That(t, sc.Step(0.01), test.ShouldNotBeNil)
}

func TestTelemetry(t *testing.T) {
	sc, sbs := newTestSpacecraft(t, "", testHub(0), testBodies(0))
	hub := messaging.NewRecorder(sc.ScStateOutMsg)
	hinge := messaging.NewRecorder(sbs[1].SpinningBodyOutMsg)

	torque := messaging.NewOutMsg[messaging.ArrayMotorTorqueMsgPayload]()
	sbs[0].MotorTorqueInMsg.SubscribeTo(torque)
	var cmd messaging.ArrayMotorTorqueMsgPayload
	cmd.MotorTorque[0] = 0.5
	torque.Write(cmd, 0, 0)

	record := func(sc *Spacecraft) error {
		hub.Record(sc.Clock())
		hinge.Record(sc.Clock())
		return nil
	}
	test.That(t, sc.Run(context.Background(), 0.1, 0.01, record), test.ShouldBeNil)
	test.That(t, sbs[0].MotorTorque(), test.ShouldEqual, 0.5)
	test.That(t, hub.Len(), test.ShouldEqual, 10)
	test.That(t, hinge.Len(), test.ShouldEqual, 10)
	test.That(t, hub.Times()[9], test.ShouldEqual, uint64(1e8))

	// samples are written at the start of each step, so the last one lags a step behind
	last := hinge.Samples()[9]
	test.That(t, last.Theta, test.ShouldNotEqual, testBodies(0)[1].ThetaInit)
	hubSample, _ := sc.ScStateOutMsg.Read()
	test.That(t, hubSample.VelocityN.X, test.ShouldAlmostEqual, sc.HubState().VelocityN.X)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, sc.Run(ctx, 1, 0.01, nil), test.ShouldEqual, context.Canceled)
}

// oscillator is x'' = -x.
type oscillator struct {
	x []float64
}

func (o *oscillator) StateVector() []float64 { return append([]float64(nil), o.x...) }

func (o *oscillator) SetStateVector(x []float64) error {
	copy(o.x, x)
	return nil
}

func (o *oscillator) Derivatives(float64) ([]float64, error) {
	return []float64{o.x[1], -o.x[0]}, nil
}

// failingOscillator fails every derivative evaluation after the first okCalls.
type failingOscillator struct {
	oscillator
	okCalls int
	calls   int
}

func (o *failingOscillator) Derivatives(t float64) ([]float64, error) {
	o.calls++
	if o.calls > o.okCalls {
		return nil, errors.New("derivative failed")
	}
	return o.oscillator.Derivatives(t)
}

func TestIntegrators(t *testing.T) {
	t.Run("rk4", func(t *testing.T) {
		o := &oscillator{x: []float64{1, 0}}
		var i Integrator = RK4{}
		dt := 0.01
		for n := 0; n < 100; n++ {
			test.That(t, i.Integrate(o, float64(n)*dt, dt), test.ShouldBeNil)
		}
		test.That(t, o.x[0], test.ShouldAlmostEqual, math.Cos(1), 1e-9)
		test.That(t, o.x[1], test.ShouldAlmostEqual, -math.Sin(1), 1e-9)
	})
	t.Run("rk4 failure keeps the state", func(t *testing.T) {
		for okCalls := 0; okCalls < 4; okCalls++ {
			o := &failingOscillator{oscillator: oscillator{x: []float64{0.3, -0.7}}, okCalls: okCalls}
			err := RK4{}.Integrate(o, 0, 0.1)
			test.That(t, err, test.ShouldBeError, "derivative failed")
			test.That(t, o.x, test.ShouldResemble, []float64{0.3, -0.7})
		}
	})
	t.Run("euler", func(t *testing.T) {
		o := &oscillator{x: []float64{1, 0}}
		test.That(t, Euler{}.Integrate(o, 0, 0.1), test.ShouldBeNil)
		test.That(t, o.x, test.ShouldResemble, []float64{1, -0.1})
	})
	t.Run("by name", func(t *testing.T) {
		i, ok := IntegratorFromName("rk4")
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, i, test.ShouldResemble, RK4{})
		i, ok = IntegratorFromName("")
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, i, test.ShouldResemble, RK4{})
		_, ok = IntegratorFromName("euler")
		test.That(t, ok, test.ShouldBeTrue)
		_, ok = IntegratorFromName("leapfrog")
		test.That(t, ok, test.ShouldBeFalse)
	})
}

func TestSolveBackSub(t *testing.T) {
	bs := dynamics.BackSubMatrices{
		MatrixA:  mgl64.Ident3().Mul(2),
		MatrixB:  sm.Tilde(r3.Vector{X: 0.1, Y: 0.2}),
		MatrixC:  sm.Tilde(r3.Vector{Z: 0.3}),
		MatrixD:  mgl64.Diag3(mgl64.Vec3{3, 4, 5}),
		VecTrans: r3.Vector{X: 1, Y: -2, Z: 0.5},
		VecRot:   r3.Vector{X: 0.2, Y: 0.1, Z: -1},
	}
	rDDot, omegaDot, err := solveBackSub(bs)
	test.That(t, err, test.ShouldBeNil)
	trans := sm.MulVec(bs.MatrixA, rDDot).Add(sm.MulVec(bs.MatrixB, omegaDot))
	rot := sm.MulVec(bs.MatrixC, rDDot).Add(sm.MulVec(bs.MatrixD, omegaDot))
	test.That(t, sm.VectorAlmostEqual(trans, bs.VecTrans, 1e-12), test.ShouldBeTrue)
	test.That(t, sm.VectorAlmostEqual(rot, bs.VecRot, 1e-12), test.ShouldBeTrue)

	_, _, err = solveBackSub(dynamics.BackSubMatrices{})
	test.That(t, err, test.ShouldNotBeNil)
}
