// Package spinningbody implements a rigid appendage attached to a hub through a single
// rotational degree of freedom (a hinge), with an optional torsional spring, damper and motor
// torque.
//
// The body contributes its mass properties and back-substitution terms to the hub's equations of
// motion, and computes its own hinge acceleration once the hub's accelerations are known. Each
// phase returns a record that the next phase consumes, so the order of operations within one
// derivative evaluation is enforced by the types.
package spinningbody

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/spinningbody/dynamics"
	"go.viam.com/spinningbody/logging"
	"go.viam.com/spinningbody/messaging"
	"go.viam.com/spinningbody/spatialmath"
)

// idKind is the allocator sequence spinning bodies draw their identifiers from.
const idKind = "spinningBody"

const (
	// minSpinAxisNorm is the smallest spin axis length accepted before normalization.
	minSpinAxisNorm = 0.01
	// inertiaEpsilon scales the smallest accepted hinge inertia relative to the body inertia.
	inertiaEpsilon = 1e-12
	// orthonormalTol bounds the error accepted in a configured rotation matrix.
	orthonormalTol = 1e-6
)

var (
	// ErrDegenerateSpinAxis is returned when the configured spin axis is too short to normalize.
	ErrDegenerateSpinAxis = errors.New("spin axis norm must be greater than 0.01")
	// ErrDegenerateInertia is returned when the inertia about the spin axis is effectively zero.
	ErrDegenerateInertia = errors.New("inertia about the spin axis is degenerate")
	// ErrNotConfigured is returned when an operation is called before Reset succeeded, or with a
	// record that was not produced by the preceding phase.
	ErrNotConfigured = errors.New("spinning body is not configured")
)

// Config describes a spinning body. Vectors carry the frame they are expressed in as a suffix.
type Config struct {
	// Name overrides the default name "spinningBody<ID>".
	Name string

	Mass    float64    // [kg]
	IPntScS mgl64.Mat3 // inertia about the body's own center of mass, S frame [kg m^2]
	RScSS   r3.Vector  // center of mass relative to the hinge point S, S frame [m]
	RSBB    r3.Vector  // hinge point relative to B, B frame [m]
	SHatS   r3.Vector  // spin axis, S frame; normalized by Reset
	DCMS0B  mgl64.Mat3 // [S0B], the orientation of the body at theta = 0 relative to B

	ThetaInit    float64 // [rad]
	ThetaDotInit float64 // [rad/s]
	K            float64 // torsional spring constant [N m/rad]
	C            float64 // torsional damping coefficient [N m s/rad]
}

// DefaultConfig returns a config with a unit spring, no offset between the body and B, and the
// body aligned with B at theta = 0.
func DefaultConfig() Config {
	return Config{
		IPntScS: mgl64.Ident3(),
		SHatS:   r3.Vector{X: 1},
		DCMS0B:  mgl64.Ident3(),
		K:       1,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	var errs error
	if cfg.Mass < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("mass must be non-negative, got %v", cfg.Mass)))
	}
	if cfg.SHatS.Norm() <= minSpinAxisNorm {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, ErrDegenerateSpinAxis))
	}
	if !spatialmath.Mat3AlmostEqual(cfg.IPntScS, cfg.IPntScS.Transpose(), orthonormalTol) {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.New("inertia must be symmetric")))
	} else if lowest, ok := smallestEigenvalue(cfg.IPntScS); !ok || lowest < -orthonormalTol {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("inertia must be positive semi-definite, smallest eigenvalue is %v", lowest)))
	}
	if !spatialmath.Mat3AlmostEqual(cfg.DCMS0B.Mul3(cfg.DCMS0B.Transpose()), mgl64.Ident3(), orthonormalTol) ||
		math.Abs(cfg.DCMS0B.Det()-1) > orthonormalTol {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.New("pre-spin orientation must be a proper rotation matrix")))
	}
	if cfg.K < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("spring constant must be non-negative, got %v", cfg.K)))
	}
	if cfg.C < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("damping coefficient must be non-negative, got %v", cfg.C)))
	}
	return errs
}

// smallestEigenvalue returns the smallest eigenvalue of the symmetric part of m.
func smallestEigenvalue(m mgl64.Mat3) (float64, bool) {
	sym := m.Add(m.Transpose()).Mul(0.5)
	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(3, spatialmath.Mat3ToSlice(sym)), false) {
		return 0, false
	}
	return floats.Min(eig.Values(nil)), true
}

// SpinningBody is a hinged rigid appendage. It is not safe for concurrent use.
type SpinningBody struct {
	cfg    Config
	id     uint64
	name   string
	logger logging.Logger

	sHatS      r3.Vector
	configured bool
	u          float64

	spacecraftName      string
	nameOfThetaState    string
	nameOfThetaDotState string

	acc      dynamics.StateAccessor
	theta    dynamics.StateHandle
	thetaDot dynamics.StateHandle
	hubPos   dynamics.StateHandle
	hubVel   dynamics.StateHandle
	hubSigma dynamics.StateHandle
	hubOmega dynamics.StateHandle

	// SpinningBodyOutMsg carries theta and thetaDot.
	SpinningBodyOutMsg *messaging.OutMsg[messaging.HingedRigidBodyMsgPayload]
	// SpinningBodyConfigLogOutMsg carries the inertial states of the body.
	SpinningBodyConfigLogOutMsg *messaging.OutMsg[messaging.SCStatesMsgPayload]
	// MotorTorqueInMsg optionally supplies the hinge motor torque in element 0.
	MotorTorqueInMsg *messaging.InMsg[messaging.ArrayMotorTorqueMsgPayload]

	lastInertial InertialState
}

// New returns a spinning body with an identifier issued by ids. Reset must be called before use.
func New(cfg Config, ids dynamics.IDSource, logger logging.Logger) *SpinningBody {
	id := ids.NextID(idKind)
	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("%s%d", idKind, id)
	}
	return &SpinningBody{
		cfg:                         cfg,
		id:                          id,
		name:                        name,
		logger:                      logger.Sublogger(name),
		nameOfThetaState:            fmt.Sprintf("spinningBodyTheta%d", id),
		nameOfThetaDotState:         fmt.Sprintf("spinningBodyThetaDot%d", id),
		SpinningBodyOutMsg:          messaging.NewOutMsg[messaging.HingedRigidBodyMsgPayload](),
		SpinningBodyConfigLogOutMsg: messaging.NewOutMsg[messaging.SCStatesMsgPayload](),
		MotorTorqueInMsg:            &messaging.InMsg[messaging.ArrayMotorTorqueMsgPayload]{},
	}
}

// Name returns the name of the body.
func (sb *SpinningBody) Name() string {
	return sb.name
}

// ID returns the identifier issued at construction.
func (sb *SpinningBody) ID() uint64 {
	return sb.id
}

// Config returns the configuration the body was built with.
func (sb *SpinningBody) Config() Config {
	return sb.cfg
}

// ThetaStateName returns the name of the hinge angle state.
func (sb *SpinningBody) ThetaStateName() string {
	return sb.nameOfThetaState
}

// ThetaDotStateName returns the name of the hinge rate state.
func (sb *SpinningBody) ThetaDotStateName() string {
	return sb.nameOfThetaDotState
}

// Reset normalizes the spin axis and marks the body configured. A spin axis of length 0.01 or
// less is rejected.
func (sb *SpinningBody) Reset() error {
	sb.configured = false
	norm := sb.cfg.SHatS.Norm()
	if norm <= minSpinAxisNorm {
		sb.logger.Errorw("cannot reset spinning body", "error", ErrDegenerateSpinAxis, "sHat_S", sb.cfg.SHatS)
		return ErrDegenerateSpinAxis
	}
	sb.sHatS = sb.cfg.SHatS.Mul(1 / norm)
	sb.configured = true
	sb.logger.Debugw("reset", "sHat_S", sb.sHatS, "mass", sb.cfg.Mass)
	return nil
}

// PrependSpacecraftName prefixes the state names of this body and the hub states it links to with
// the name of the spacecraft it is attached to. It must be called before RegisterStates.
func (sb *SpinningBody) PrependSpacecraftName(spacecraft string) error {
	if sb.theta.Valid() {
		return errors.Errorf("cannot rename states of %q after registration", sb.name)
	}
	sb.nameOfThetaState = dynamics.PrefixedName(spacecraft, sb.nameOfThetaState)
	sb.nameOfThetaDotState = dynamics.PrefixedName(spacecraft, sb.nameOfThetaDotState)
	sb.spacecraftName = spacecraft
	return nil
}

// SetMotorTorque sets the hinge motor torque applied from the next evaluation on [N m]. A linked
// and written MotorTorqueInMsg overrides it in UpdateState.
func (sb *SpinningBody) SetMotorTorque(u float64) {
	sb.u = u
}

// MotorTorque returns the hinge motor torque currently applied [N m].
func (sb *SpinningBody) MotorTorque() float64 {
	return sb.u
}

// RegisterStates registers theta and thetaDot with acc and sets their initial values.
func (sb *SpinningBody) RegisterStates(acc dynamics.StateAccessor) error {
	theta, err := acc.RegisterState(sb.nameOfThetaState, 1)
	if err != nil {
		return errors.Wrapf(err, "cannot register states of %q", sb.name)
	}
	thetaDot, err := acc.RegisterState(sb.nameOfThetaDotState, 1)
	if err != nil {
		return errors.Wrapf(err, "cannot register states of %q", sb.name)
	}
	if err := multierr.Combine(
		acc.SetState(theta, []float64{sb.cfg.ThetaInit}),
		acc.SetState(thetaDot, []float64{sb.cfg.ThetaDotInit}),
	); err != nil {
		return err
	}
	sb.acc = acc
	sb.theta = theta
	sb.thetaDot = thetaDot
	return nil
}

// LinkInStates looks up the hub states this body reads.
func (sb *SpinningBody) LinkInStates(acc dynamics.StateAccessor) error {
	handles := []*dynamics.StateHandle{&sb.hubPos, &sb.hubVel, &sb.hubSigma, &sb.hubOmega}
	names := []string{
		dynamics.HubPositionName, dynamics.HubVelocityName, dynamics.HubSigmaName, dynamics.HubOmegaName,
	}
	for i, name := range names {
		h, err := acc.GetStateObject(dynamics.PrefixedName(sb.spacecraftName, name))
		if err != nil {
			return errors.Wrapf(err, "cannot link %q to hub", sb.name)
		}
		*handles[i] = h
	}
	sb.acc = acc
	return nil
}

func (sb *SpinningBody) currentStates() (float64, float64, error) {
	if sb.acc == nil || !sb.theta.Valid() {
		return 0, 0, errors.Wrapf(ErrNotConfigured, "%q has no registered states", sb.name)
	}
	return dynamics.Scalar(sb.acc, sb.theta), dynamics.Scalar(sb.acc, sb.thetaDot), nil
}

// LastInertialState returns the inertial states computed by the most recent UpdateState.
func (sb *SpinningBody) LastInertialState() InertialState {
	return sb.lastInertial
}
