package spinningbody

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/spinningbody/dynamics"
	sm "go.viam.com/spinningbody/spatialmath"
)

// Coupling holds the terms expressing the hinge acceleration as a linear function of the hub
// accelerations:
//
//	thetaDDot = ATheta . rDDot_BN_B + BTheta . omegaDot_BN_B + CTheta
type Coupling struct {
	DTheta float64
	ATheta r3.Vector
	BTheta r3.Vector
	CTheta float64

	ThetaDot float64

	ready bool
}

// UpdateContributions returns the coupling terms and this body's contribution to the hub's
// back-substitution matrices. The returned matrices are to be added to the other contributions.
func (sb *SpinningBody) UpdateContributions(
	kin Kinematics,
	sigmaBN sm.MRP,
	omegaBNB, gN r3.Vector,
) (Coupling, dynamics.BackSubMatrices, error) {
	if !sb.configured || !kin.resolved {
		return Coupling{}, dynamics.BackSubMatrices{}, ErrNotConfigured
	}
	m := sb.cfg.Mass
	s := kin.SHatB

	gB := sm.MulVec(sigmaBN.DCM(), gN)
	omegaTildeBNB := sm.Tilde(omegaBNB)
	omegaSNB := kin.OmegaSBB.Add(omegaBNB)
	omegaTildeSNB := sm.Tilde(omegaSNB)
	rTildeScSB := sm.Tilde(kin.RScSB)
	iPntSB := kin.IPntScB.Sub(rTildeScSB.Mul3(rTildeScSB).Mul(m))

	dTheta := sm.QuadForm(s, iPntSB, s)
	if dTheta <= inertiaEpsilon*math.Max(1, sm.Trace(iPntSB)) {
		sb.logger.Errorw("cannot compute hinge coupling", "error", ErrDegenerateInertia, "dTheta", dTheta)
		return Coupling{}, dynamics.BackSubMatrices{}, errors.Wrapf(ErrDegenerateInertia, "%q has sHat^T I sHat = %v", sb.name, dTheta)
	}

	rTildeSBB := sm.Tilde(sb.cfg.RSBB)
	rScSCrossS := sm.MulVec(rTildeScSB, s)
	aTheta := rScSCrossS.Mul(m / dTheta)
	bTheta := sm.MulVec(iPntSB.Sub(rTildeSBB.Mul3(rTildeScSB).Mul(m)), s).Mul(-1 / dTheta)

	rDotSBB := sm.MulVec(omegaTildeBNB, sb.cfg.RSBB)
	torque := sm.MulVec(rTildeScSB, gB).Mul(m).
		Sub(sm.MulVec(omegaTildeSNB.Mul3(iPntSB), omegaSNB)).
		Sub(sm.MulVec(iPntSB.Mul3(omegaTildeBNB), kin.OmegaSBB)).
		Sub(sm.MulVec(rTildeScSB.Mul3(omegaTildeBNB), rDotSBB).Mul(m))
	cTheta := (s.Dot(torque) + sb.u - sb.cfg.K*kin.Theta - sb.cfg.C*kin.ThetaDot) / dTheta

	coupling := Coupling{
		DTheta:   dTheta,
		ATheta:   aTheta,
		BTheta:   bTheta,
		CTheta:   cTheta,
		ThetaDot: kin.ThetaDot,
		ready:    true,
	}

	rotInertia := kin.IPntScB.Sub(kin.RTildeScBB.Mul3(rTildeScSB).Mul(m))
	rotS := sm.MulVec(rotInertia, s)
	bs := dynamics.BackSubMatrices{
		MatrixA: sm.Outer(rScSCrossS, aTheta).Mul(-m),
		MatrixB: sm.Outer(rScSCrossS, bTheta).Mul(-m),
		MatrixC: sm.Outer(rotS, aTheta),
		MatrixD: sm.Outer(rotS, bTheta),
		VecTrans: sm.MulVec(kin.OmegaTildeSBB, kin.RPrimeScSB).Mul(-m).
			Add(rScSCrossS.Mul(m * cTheta)),
		VecRot: sm.MulVec(omegaTildeSNB.Mul3(kin.IPntScB), kin.OmegaSBB).Mul(-1).
			Sub(sm.MulVec(omegaTildeBNB.Mul3(kin.RTildeScBB), kin.RPrimeScBB).Mul(m)).
			Sub(sm.MulVec(kin.RTildeScBB.Mul3(kin.OmegaTildeSBB), kin.RPrimeScSB).Mul(m)).
			Sub(rotS.Mul(cTheta)),
	}
	return coupling, bs, nil
}

// ComputeDerivatives returns the derivatives of theta and thetaDot given the hub's inertial
// acceleration rDDotBNN (N frame) and angular acceleration omegaDotBNB (B frame).
func (sb *SpinningBody) ComputeDerivatives(
	coupling Coupling,
	rDDotBNN, omegaDotBNB r3.Vector,
	sigmaBN sm.MRP,
) (float64, float64, error) {
	if !sb.configured || !coupling.ready {
		return 0, 0, ErrNotConfigured
	}
	rDDotBNB := sm.MulVec(sigmaBN.DCM(), rDDotBNN)
	thetaDDot := coupling.ATheta.Dot(rDDotBNB) + coupling.BTheta.Dot(omegaDotBNB) + coupling.CTheta
	return coupling.ThetaDot, thetaDDot, nil
}
