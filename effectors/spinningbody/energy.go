package spinningbody

import (
	"github.com/golang/geo/r3"

	sm "go.viam.com/spinningbody/spatialmath"
)

// UpdateEnergyMomContributions returns the body's rotational angular momentum about B (B frame)
// and its rotational energy, including the energy stored in the spring.
func (sb *SpinningBody) UpdateEnergyMomContributions(kin Kinematics, omegaBNB r3.Vector) (r3.Vector, float64) {
	m := sb.cfg.Mass
	omegaSNB := kin.OmegaSBB.Add(omegaBNB)
	rDotScBB := kin.RPrimeScBB.Add(omegaBNB.Cross(kin.RScBB))

	momentum := sm.MulVec(kin.IPntScB, omegaSNB).Add(kin.RScBB.Cross(rDotScBB).Mul(m))
	energy := 0.5*sm.QuadForm(omegaSNB, kin.IPntScB, omegaSNB) +
		0.5*m*rDotScBB.Norm2() +
		0.5*sb.cfg.K*kin.Theta*kin.Theta
	return momentum, energy
}

// InertialState is the attitude, position and velocity of a spinning body relative to the
// inertial frame N.
type InertialState struct {
	SigmaSN   sm.MRP
	PositionN r3.Vector // center of mass, N frame [m]
	VelocityN r3.Vector // center of mass, N frame [m/s]
	OmegaSNS  r3.Vector // angular velocity, S frame [rad/s]
}

// ComputeInertialStates places the body in the inertial frame given the hub's position and
// velocity (N frame), attitude and angular velocity (B frame).
func (sb *SpinningBody) ComputeInertialStates(
	kin Kinematics,
	rBNN, vBNN r3.Vector,
	sigmaBN sm.MRP,
	omegaBNB r3.Vector,
) InertialState {
	dcmBN := sigmaBN.DCM()
	dcmNB := dcmBN.Transpose()
	dcmSB := kin.DCMBS.Transpose()
	rDotScBB := kin.RPrimeScBB.Add(omegaBNB.Cross(kin.RScBB))
	return InertialState{
		SigmaSN:   sm.DCMToMRP(dcmSB.Mul3(dcmBN)),
		PositionN: rBNN.Add(sm.MulVec(dcmNB, kin.RScBB)),
		VelocityN: vBNN.Add(sm.MulVec(dcmNB, rDotScBB)),
		OmegaSNS:  sm.MulVec(dcmSB, omegaBNB.Add(kin.OmegaSBB)),
	}
}
