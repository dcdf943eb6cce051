package spinningbody

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/spinningbody/dynamics"
	"go.viam.com/spinningbody/messaging"
	sm "go.viam.com/spinningbody/spatialmath"
)

var _ dynamics.StateEffector = (*SpinningBody)(nil)

// MassPropsStep reads theta and thetaDot from the state manager and resolves the body's mass
// properties. The returned step computes the contributions for the same states.
func (sb *SpinningBody) MassPropsStep(integTime float64) (dynamics.EffectiveMassProps, dynamics.ContributionStep, error) {
	theta, thetaDot, err := sb.currentStates()
	if err != nil {
		return dynamics.EffectiveMassProps{}, nil, err
	}
	kin, props, err := sb.UpdateEffectorMassProps(theta, thetaDot)
	if err != nil {
		return dynamics.EffectiveMassProps{}, nil, err
	}
	return props, &massPropsStep{sb: sb, kin: kin}, nil
}

// EnergyMomentum returns the body's rotational angular momentum about B and rotational energy at
// the current states.
func (sb *SpinningBody) EnergyMomentum(integTime float64, omegaBNB r3.Vector) (r3.Vector, float64, error) {
	theta, thetaDot, err := sb.currentStates()
	if err != nil {
		return r3.Vector{}, 0, err
	}
	kin, _, err := sb.UpdateEffectorMassProps(theta, thetaDot)
	if err != nil {
		return r3.Vector{}, 0, err
	}
	h, e := sb.UpdateEnergyMomContributions(kin, omegaBNB)
	return h, e, nil
}

type massPropsStep struct {
	sb  *SpinningBody
	kin Kinematics
}

func (s *massPropsStep) Contributions(
	integTime float64,
	sigmaBN sm.MRP,
	omegaBNB, gN r3.Vector,
) (dynamics.BackSubMatrices, dynamics.DerivativeStep, error) {
	coupling, bs, err := s.sb.UpdateContributions(s.kin, sigmaBN, omegaBNB, gN)
	if err != nil {
		return dynamics.BackSubMatrices{}, nil, err
	}
	return bs, &derivativeStep{sb: s.sb, coupling: coupling}, nil
}

type derivativeStep struct {
	sb       *SpinningBody
	coupling Coupling
}

func (s *derivativeStep) Derivatives(integTime float64, rDDotBNN, omegaDotBNB r3.Vector, sigmaBN sm.MRP) error {
	thetaDot, thetaDDot, err := s.sb.ComputeDerivatives(s.coupling, rDDotBNN, omegaDotBNB, sigmaBN)
	if err != nil {
		return err
	}
	return multierr.Combine(
		s.sb.acc.SetDerivative(s.sb.theta, []float64{thetaDot}),
		s.sb.acc.SetDerivative(s.sb.thetaDot, []float64{thetaDDot}),
	)
}

// UpdateState reads the motor torque input, computes the inertial states of the body and writes
// the output messages that have subscribers.
func (sb *SpinningBody) UpdateState(clock uint64) error {
	if sb.MotorTorqueInMsg.IsLinked() && sb.MotorTorqueInMsg.IsWritten() {
		sb.u = sb.MotorTorqueInMsg.Read().MotorTorque[0]
	}
	theta, thetaDot, err := sb.currentStates()
	if err != nil {
		return err
	}
	if !sb.hubSigma.Valid() {
		return errors.Wrapf(ErrNotConfigured, "%q is not linked to a hub", sb.name)
	}
	kin, _, err := sb.UpdateEffectorMassProps(theta, thetaDot)
	if err != nil {
		return err
	}
	sb.lastInertial = sb.ComputeInertialStates(
		kin,
		dynamics.Vector(sb.acc, sb.hubPos),
		dynamics.Vector(sb.acc, sb.hubVel),
		sm.MRP(dynamics.Vector(sb.acc, sb.hubSigma)),
		dynamics.Vector(sb.acc, sb.hubOmega),
	)

	moduleID := int64(sb.id)
	if sb.SpinningBodyOutMsg.IsLinked() {
		sb.SpinningBodyOutMsg.Write(messaging.HingedRigidBodyMsgPayload{Theta: theta, ThetaDot: thetaDot}, moduleID, clock)
	}
	if sb.SpinningBodyConfigLogOutMsg.IsLinked() {
		sb.SpinningBodyConfigLogOutMsg.Write(messaging.SCStatesMsgPayload{
			PositionN: sb.lastInertial.PositionN,
			VelocityN: sb.lastInertial.VelocityN,
			SigmaBN:   sb.lastInertial.SigmaSN.Vector(),
			OmegaBNB:  sb.lastInertial.OmegaSNS,
		}, moduleID, clock)
	}
	return nil
}
