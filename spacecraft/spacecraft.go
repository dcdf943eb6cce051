// Package spacecraft implements the hub a set of state effectors is attached to. It aggregates the
// effectors' mass properties and back-substitution contributions, solves the hub's coupled
// translational and rotational equations of motion, and integrates every state in time.
package spacecraft

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/spinningbody/dynamics"
	"go.viam.com/spinningbody/logging"
	"go.viam.com/spinningbody/messaging"
	sm "go.viam.com/spinningbody/spatialmath"
)

const nanosPerSecond = 1e9

// HubConfig describes the rigid hub. Vectors carry the frame they are expressed in as a suffix.
type HubConfig struct {
	MHub       float64    // [kg]
	IHubPntBcB mgl64.Mat3 // inertia about the hub's own center of mass, B frame [kg m^2]
	RBcBB      r3.Vector  // hub center of mass relative to B [m]

	RInit     r3.Vector // r_BN_N [m]
	VInit     r3.Vector // v_BN_N [m/s]
	SigmaInit sm.MRP    // sigma_BN
	OmegaInit r3.Vector // omega_BN_B [rad/s]

	ExtForceN  r3.Vector // external force applied at B [N]
	ExtTorqueB r3.Vector // external torque about B [N m]
	GravityN   r3.Vector // uniform gravitational acceleration [m/s^2]
}

// Spacecraft is a hub with state effectors attached. It is not safe for concurrent use.
type Spacecraft struct {
	name       string
	hub        HubConfig
	logger     logging.Logger
	manager    *dynamics.Manager
	integrator Integrator
	effectors  []dynamics.StateEffector

	posState   dynamics.StateHandle
	velState   dynamics.StateHandle
	sigmaState dynamics.StateHandle
	omegaState dynamics.StateHandle

	initialized bool
	time        float64
	clock       uint64

	// ScStateOutMsg carries the hub's inertial states.
	ScStateOutMsg *messaging.OutMsg[messaging.SCStatesMsgPayload]
}

// Option configures a Spacecraft.
type Option func(*Spacecraft)

// WithIntegrator replaces the default RK4 integrator.
func WithIntegrator(i Integrator) Option {
	return func(sc *Spacecraft) {
		sc.integrator = i
	}
}

// New returns a spacecraft. An empty name leaves all state names unprefixed.
func New(name string, hub HubConfig, logger logging.Logger, opts ...Option) *Spacecraft {
	sc := &Spacecraft{
		name:          name,
		hub:           hub,
		logger:        logger,
		manager:       dynamics.NewManager(),
		integrator:    RK4{},
		ScStateOutMsg: messaging.NewOutMsg[messaging.SCStatesMsgPayload](),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Name returns the name of the spacecraft.
func (sc *Spacecraft) Name() string {
	return sc.name
}

// Manager returns the state manager of the spacecraft's simulation context. Effectors should be
// built with it so their identifiers are unique within the context.
func (sc *Spacecraft) Manager() *dynamics.Manager {
	return sc.manager
}

// Time returns the simulation time [s].
func (sc *Spacecraft) Time() float64 {
	return sc.time
}

// Clock returns the simulation time [ns].
func (sc *Spacecraft) Clock() uint64 {
	return sc.clock
}

type spacecraftNamer interface {
	PrependSpacecraftName(spacecraft string) error
}

type resetter interface {
	Reset() error
}

// AddStateEffector attaches e to the hub. Effectors must be added before Initialize.
func (sc *Spacecraft) AddStateEffector(e dynamics.StateEffector) error {
	if sc.initialized {
		return errors.Errorf("cannot add %q to initialized spacecraft %q", e.Name(), sc.name)
	}
	if namer, ok := e.(spacecraftNamer); ok && sc.name != "" {
		if err := namer.PrependSpacecraftName(sc.name); err != nil {
			return err
		}
	}
	sc.effectors = append(sc.effectors, e)
	return nil
}

// Effectors returns the attached effectors in the order they were added.
func (sc *Spacecraft) Effectors() []dynamics.StateEffector {
	return append([]dynamics.StateEffector(nil), sc.effectors...)
}

func (sc *Spacecraft) stateName(name string) string {
	return dynamics.PrefixedName(sc.name, name)
}

// Initialize registers the hub states, resets the effectors, and lets them register and link
// their states. Configuration errors are logged and returned.
func (sc *Spacecraft) Initialize() error {
	if sc.initialized {
		return errors.Errorf("spacecraft %q is already initialized", sc.name)
	}
	hubStates := []struct {
		name   string
		handle *dynamics.StateHandle
		value  r3.Vector
	}{
		{dynamics.HubPositionName, &sc.posState, sc.hub.RInit},
		{dynamics.HubVelocityName, &sc.velState, sc.hub.VInit},
		{dynamics.HubSigmaName, &sc.sigmaState, sc.hub.SigmaInit.Short().Vector()},
		{dynamics.HubOmegaName, &sc.omegaState, sc.hub.OmegaInit},
	}
	for _, s := range hubStates {
		h, err := sc.manager.RegisterState(sc.stateName(s.name), 3)
		if err != nil {
			return err
		}
		if err := sc.manager.SetState(h, dynamics.VectorSlice(s.value)); err != nil {
			return err
		}
		*s.handle = h
	}

	for _, e := range sc.effectors {
		if r, ok := e.(resetter); ok {
			if err := r.Reset(); err != nil {
				sc.logger.Errorw("cannot reset effector", "effector", e.Name(), "error", err)
				return errors.Wrapf(err, "cannot reset %q", e.Name())
			}
		}
		if err := e.RegisterStates(sc.manager); err != nil {
			return err
		}
	}
	for _, e := range sc.effectors {
		if err := e.LinkInStates(sc.manager); err != nil {
			return err
		}
	}
	sc.initialized = true
	sc.logger.Debugw("initialized spacecraft", "name", sc.name, "effectors", len(sc.effectors), "states", sc.manager.StateNames())
	return nil
}

// HubState is the hub's inertial state.
type HubState struct {
	PositionN r3.Vector
	VelocityN r3.Vector
	SigmaBN   sm.MRP
	OmegaBNB  r3.Vector
}

// HubState returns the current hub states.
func (sc *Spacecraft) HubState() HubState {
	return HubState{
		PositionN: dynamics.Vector(sc.manager, sc.posState),
		VelocityN: dynamics.Vector(sc.manager, sc.velState),
		SigmaBN:   sm.MRP(dynamics.Vector(sc.manager, sc.sigmaState)),
		OmegaBNB:  dynamics.Vector(sc.manager, sc.omegaState),
	}
}

// UpdateState lets every effector read its inputs and write its telemetry, then writes the hub's
// own telemetry.
func (sc *Spacecraft) UpdateState() error {
	if !sc.initialized {
		return errors.Errorf("spacecraft %q is not initialized", sc.name)
	}
	for _, e := range sc.effectors {
		if u, ok := e.(dynamics.StateUpdater); ok {
			if err := u.UpdateState(sc.clock); err != nil {
				return err
			}
		}
	}
	if sc.ScStateOutMsg.IsLinked() {
		hs := sc.HubState()
		sc.ScStateOutMsg.Write(messaging.SCStatesMsgPayload{
			PositionN: hs.PositionN,
			VelocityN: hs.VelocityN,
			SigmaBN:   hs.SigmaBN.Vector(),
			OmegaBNB:  hs.OmegaBNB,
		}, 0, sc.clock)
	}
	return nil
}

// Step updates inputs and telemetry at the current time, then integrates every state by dt seconds.
func (sc *Spacecraft) Step(dt float64) error {
	if dt <= 0 {
		return errors.Errorf("time step must be positive, got %v", dt)
	}
	if err := sc.UpdateState(); err != nil {
		return err
	}
	if err := sc.integrator.Integrate(stateSystem{sc}, sc.time, dt); err != nil {
		return errors.Wrapf(err, "cannot integrate spacecraft %q at t=%v", sc.name, sc.time)
	}
	sigma := sm.MRP(dynamics.Vector(sc.manager, sc.sigmaState))
	if short := sigma.Short(); short != sigma {
		if err := sc.manager.SetState(sc.sigmaState, dynamics.VectorSlice(short.Vector())); err != nil {
			return err
		}
	}
	sc.time += dt
	sc.clock += uint64(math.Round(dt * nanosPerSecond))
	return nil
}

// Run steps the spacecraft until the simulation time reaches stop, calling each after every step
// if it is not nil. Telemetry is written once more at the final time.
func (sc *Spacecraft) Run(ctx context.Context, stop, dt float64, each func(sc *Spacecraft) error) error {
	// absorbs rounding accumulated in sc.time
	const slack = 1e-9
	for sc.time+dt <= stop+slack {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sc.Step(dt); err != nil {
			return err
		}
		if each != nil {
			if err := each(sc); err != nil {
				return err
			}
		}
	}
	return sc.UpdateState()
}

// stateSystem exposes the spacecraft's states to an Integrator.
type stateSystem struct {
	sc *Spacecraft
}

func (s stateSystem) StateVector() []float64 {
	return s.sc.manager.StateVector()
}

func (s stateSystem) SetStateVector(x []float64) error {
	return s.sc.manager.SetStateVector(x)
}

func (s stateSystem) Derivatives(t float64) ([]float64, error) {
	if err := s.sc.equationsOfMotion(t); err != nil {
		return nil, err
	}
	return s.sc.manager.DerivativeVector(), nil
}
