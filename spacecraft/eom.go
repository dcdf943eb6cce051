package spacecraft

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/spinningbody/dynamics"
	sm "go.viam.com/spinningbody/spatialmath"
)

// hubMassProps returns the hub's own contribution to the composite mass properties.
func (sc *Spacecraft) hubMassProps() dynamics.EffectiveMassProps {
	rTilde := sm.Tilde(sc.hub.RBcBB)
	return dynamics.EffectiveMassProps{
		MEff:     sc.hub.MHub,
		REffCB:   sc.hub.RBcBB,
		IEffPntB: sc.hub.IHubPntBcB.Sub(rTilde.Mul3(rTilde).Mul(sc.hub.MHub)),
	}
}

// massProps aggregates the mass properties of the hub and every effector at the current states.
// The returned steps belong to the same evaluation.
func (sc *Spacecraft) massProps(integTime float64) (dynamics.CompositeMassProps, []dynamics.ContributionStep, error) {
	var comp dynamics.CompositeMassProps
	comp.Add(sc.hubMassProps())
	steps := make([]dynamics.ContributionStep, 0, len(sc.effectors))
	for _, e := range sc.effectors {
		props, step, err := e.MassPropsStep(integTime)
		if err != nil {
			return comp, nil, errors.Wrapf(err, "cannot update mass properties of %q", e.Name())
		}
		comp.Add(props)
		steps = append(steps, step)
	}
	sc.manager.SetProperty(sc.stateName(dynamics.CenterOfMassName), dynamics.VectorSlice(comp.CenterOfMass()))
	sc.manager.SetProperty(sc.stateName(dynamics.CenterOfMassPrimeName), dynamics.VectorSlice(comp.CenterOfMassPrime()))
	return comp, steps, nil
}

// equationsOfMotion computes the derivative of every state at the current states.
func (sc *Spacecraft) equationsOfMotion(integTime float64) error {
	hs := sc.HubState()
	dcmBN := hs.SigmaBN.DCM()
	omega := hs.OmegaBNB

	comp, steps, err := sc.massProps(integTime)
	if err != nil {
		return err
	}
	if comp.Mass <= 0 {
		return errors.Errorf("spacecraft %q has no mass", sc.name)
	}

	var bs dynamics.BackSubMatrices
	closures := make([]dynamics.DerivativeStep, 0, len(steps))
	for i, step := range steps {
		contrib, closure, err := step.Contributions(integTime, hs.SigmaBN, omega, sc.hub.GravityN)
		if err != nil {
			return errors.Wrapf(err, "cannot update contributions of %q", sc.effectors[i].Name())
		}
		bs = bs.Add(contrib)
		closures = append(closures, closure)
	}
	bs = bs.Add(sc.hubContributions(comp, dcmBN, omega))

	rDDotBNB, omegaDotBNB, err := solveBackSub(bs)
	if err != nil {
		sc.logger.Errorw("cannot solve hub equations of motion", "time", integTime, "error", err)
		return err
	}
	rDDotBNN := sm.MulVec(dcmBN.Transpose(), rDDotBNB)

	derivs := []struct {
		h dynamics.StateHandle
		v r3.Vector
	}{
		{sc.posState, hs.VelocityN},
		{sc.velState, rDDotBNN},
		{sc.sigmaState, hs.SigmaBN.Rate(omega)},
		{sc.omegaState, omegaDotBNB},
	}
	for _, d := range derivs {
		if err := sc.manager.SetDerivative(d.h, dynamics.VectorSlice(d.v)); err != nil {
			return err
		}
	}

	for i, closure := range closures {
		if err := closure.Derivatives(integTime, rDDotBNN, omegaDotBNB, hs.SigmaBN); err != nil {
			return errors.Wrapf(err, "cannot compute derivatives of %q", sc.effectors[i].Name())
		}
	}
	return nil
}

// hubContributions returns the hub's terms of the back-substitution matrices, given the composite
// mass properties of the whole spacecraft.
func (sc *Spacecraft) hubContributions(comp dynamics.CompositeMassProps, dcmBN mgl64.Mat3, omega r3.Vector) dynamics.BackSubMatrices {
	m := comp.Mass
	c := comp.CenterOfMass()
	cPrime := comp.CenterOfMassPrime()
	cTilde := sm.Tilde(c)
	omegaTilde := sm.Tilde(omega)
	gB := sm.MulVec(dcmBN, sc.hub.GravityN)
	forceB := sm.MulVec(dcmBN, sc.hub.ExtForceN)

	return dynamics.BackSubMatrices{
		MatrixA: mgl64.Ident3().Mul(m),
		MatrixB: cTilde.Mul(-m),
		MatrixC: cTilde.Mul(m),
		MatrixD: comp.Inertia,
		VecTrans: forceB.
			Add(gB.Mul(m)).
			Sub(sm.MulVec(omegaTilde, cPrime).Mul(2 * m)).
			Sub(sm.MulVec(omegaTilde.Mul3(omegaTilde), c).Mul(m)),
		VecRot: sc.hub.ExtTorqueB.
			Add(c.Cross(gB).Mul(m)).
			Sub(sm.MulVec(omegaTilde.Mul3(comp.Inertia), omega)).
			Sub(sm.MulVec(comp.InertiaDot, omega)),
	}
}

// solveBackSub solves
//
//	[A B] [rDDot]   [VecTrans]
//	[C D] [wDot ] = [VecRot  ]
//
// through the Schur complement of A.
func solveBackSub(bs dynamics.BackSubMatrices) (r3.Vector, r3.Vector, error) {
	a := sm.ToDense(bs.MatrixA)
	b := sm.ToDense(bs.MatrixB)
	c := sm.ToDense(bs.MatrixC)
	vecTrans := sm.ToVecDense(bs.VecTrans)

	var aInvB mat.Dense
	if err := aInvB.Solve(a, b); err != nil {
		return r3.Vector{}, r3.Vector{}, errors.Wrap(err, "translational block is singular")
	}
	var aInvTrans mat.VecDense
	if err := aInvTrans.SolveVec(a, vecTrans); err != nil {
		return r3.Vector{}, r3.Vector{}, errors.Wrap(err, "translational block is singular")
	}

	var cAInvB, schur mat.Dense
	cAInvB.Mul(c, &aInvB)
	schur.Sub(sm.ToDense(bs.MatrixD), &cAInvB)

	var cAInvTrans, rhs mat.VecDense
	cAInvTrans.MulVec(c, &aInvTrans)
	rhs.SubVec(sm.ToVecDense(bs.VecRot), &cAInvTrans)

	var omegaDot mat.VecDense
	if err := omegaDot.SolveVec(&schur, &rhs); err != nil {
		return r3.Vector{}, r3.Vector{}, errors.Wrap(err, "rotational block is singular")
	}

	var bOmegaDot, transRHS, rDDot mat.VecDense
	bOmegaDot.MulVec(b, &omegaDot)
	transRHS.SubVec(vecTrans, &bOmegaDot)
	if err := rDDot.SolveVec(a, &transRHS); err != nil {
		return r3.Vector{}, r3.Vector{}, errors.Wrap(err, "translational block is singular")
	}
	return sm.FromVecDense(&rDDot), sm.FromVecDense(&omegaDot), nil
}
