// Package simulation builds a spacecraft with its effectors from a config and runs it while
// recording telemetry.
package simulation

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/spinningbody/config"
	"go.viam.com/spinningbody/effectors/spinningbody"
	"go.viam.com/spinningbody/logging"
	"go.viam.com/spinningbody/messaging"
	"go.viam.com/spinningbody/spacecraft"
)

// Simulation is a configured spacecraft together with the recorders attached to its messages.
type Simulation struct {
	cfg    *config.Config
	logger logging.Logger

	sc     *spacecraft.Spacecraft
	bodies []*spinningbody.SpinningBody

	hubRec    *messaging.Recorder[messaging.SCStatesMsgPayload]
	bodyRecs  []*messaging.Recorder[messaging.HingedRigidBodyMsgPayload]
	torqueOut []*messaging.OutMsg[messaging.ArrayMotorTorqueMsgPayload]
	torques   []float64
	diags     []spacecraft.Diagnostics
}

// New builds and initializes the spacecraft described by cfg.
func New(cfg *config.Config, logger logging.Logger) (*Simulation, error) {
	if cfg.LogLevel != nil {
		logger.SetLevel(*cfg.LogLevel)
	}
	integrator, ok := spacecraft.IntegratorFromName(cfg.Simulation.Integrator)
	if !ok {
		return nil, errors.Errorf("unknown integrator %q", cfg.Simulation.Integrator)
	}
	sc := spacecraft.New(cfg.Name, cfg.Hub.Spacecraft(), logger.Sublogger("spacecraft"),
		spacecraft.WithIntegrator(integrator))

	s := &Simulation{
		cfg:    cfg,
		logger: logger,
		sc:     sc,
		hubRec: messaging.NewRecorder(sc.ScStateOutMsg),
	}
	for i, eff := range cfg.Effectors {
		attrs, ok := eff.ConvertedAttributes.(*config.SpinningBodyConfig)
		if !ok {
			return nil, errors.Errorf("effector %d (%q) has unsupported type %q", i, eff.Name, eff.Type)
		}
		body := spinningbody.New(attrs.Body(eff.Name), sc.Manager(), logger)
		if err := sc.AddStateEffector(body); err != nil {
			return nil, err
		}

		// every body reads its torque from its own command message at index 0
		cmd := messaging.NewOutMsg[messaging.ArrayMotorTorqueMsgPayload]()
		body.MotorTorqueInMsg.SubscribeTo(cmd)

		s.bodies = append(s.bodies, body)
		s.bodyRecs = append(s.bodyRecs, messaging.NewRecorder(body.SpinningBodyOutMsg))
		s.torqueOut = append(s.torqueOut, cmd)
		s.torques = append(s.torques, attrs.MotorTorque)
	}
	if err := sc.Initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// Spacecraft returns the simulated spacecraft.
func (s *Simulation) Spacecraft() *spacecraft.Spacecraft {
	return s.sc
}

// Bodies returns the spinning bodies in config order.
func (s *Simulation) Bodies() []*spinningbody.SpinningBody {
	return append([]*spinningbody.SpinningBody(nil), s.bodies...)
}

func (s *Simulation) writeCommands() {
	for i, out := range s.torqueOut {
		var p messaging.ArrayMotorTorqueMsgPayload
		p.MotorTorque[0] = s.torques[i]
		out.Write(p, -1, s.sc.Clock())
	}
}

func (s *Simulation) record() error {
	d, err := s.sc.Diagnostics()
	if err != nil {
		return err
	}
	clock := s.sc.Clock()
	s.hubRec.Record(clock)
	for _, r := range s.bodyRecs {
		r.Record(clock)
	}
	s.diags = append(s.diags, d)
	return nil
}

// Run integrates for the configured duration, sampling telemetry at every step including the
// initial one.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	dt := s.cfg.Simulation.TimeStep
	s.logger.Infow("starting simulation",
		"spacecraft", s.sc.Name(),
		"effectors", len(s.bodies),
		"duration", s.cfg.Simulation.Duration,
		"time_step", dt,
		"integrator", s.cfg.Simulation.Integrator)

	s.writeCommands()
	if err := s.sc.UpdateState(); err != nil {
		return nil, err
	}
	if err := s.record(); err != nil {
		return nil, err
	}
	err := s.sc.Run(ctx, s.cfg.Simulation.Duration, dt, func(sc *spacecraft.Spacecraft) error {
		s.writeCommands()
		if err := sc.UpdateState(); err != nil {
			return err
		}
		return s.record()
	})
	if err != nil {
		return nil, errors.Wrapf(err, "simulation stopped at t=%v", s.sc.Time())
	}
	res := s.result()
	s.logger.Infow("simulation finished", "samples", len(res.Times), "time", s.sc.Time())
	return res, nil
}

func (s *Simulation) result() *Result {
	res := &Result{Hub: s.hubRec.Samples(), Diagnostics: append([]spacecraft.Diagnostics(nil), s.diags...)}
	for _, clock := range s.hubRec.Times() {
		res.Times = append(res.Times, float64(clock)/1e9)
	}
	for i, b := range s.bodies {
		res.Bodies = append(res.Bodies, BodyTelemetry{Name: b.Name(), Samples: s.bodyRecs[i].Samples()})
	}
	return res
}

// BodyTelemetry is the recorded hinge state of one body.
type BodyTelemetry struct {
	Name    string
	Samples []messaging.HingedRigidBodyMsgPayload
}

// Result holds everything recorded during a run. All series share Times.
type Result struct {
	Times       []float64 // [s]
	Hub         []messaging.SCStatesMsgPayload
	Bodies      []BodyTelemetry
	Diagnostics []spacecraft.Diagnostics
}

// Theta returns the hinge angle history of the named body.
func (r *Result) Theta(name string) ([]float64, error) {
	for _, b := range r.Bodies {
		if b.Name != name {
			continue
		}
		out := make([]float64, len(b.Samples))
		for i, p := range b.Samples {
			out[i] = p.Theta
		}
		return out, nil
	}
	return nil, errors.Errorf("no body named %q", name)
}

// Series returns the named diagnostic history: "orbital_energy", "rotational_energy",
// "orbital_momentum" or "rotational_momentum" (magnitudes for the momenta).
func (r *Result) Series(name string) ([]float64, error) {
	var pick func(d spacecraft.Diagnostics) float64
	switch name {
	case "orbital_energy":
		pick = func(d spacecraft.Diagnostics) float64 { return d.OrbitalEnergy }
	case "rotational_energy":
		pick = func(d spacecraft.Diagnostics) float64 { return d.RotationalEnergy }
	case "orbital_momentum":
		pick = func(d spacecraft.Diagnostics) float64 { return d.OrbitalAngularMomentum.Norm() }
	case "rotational_momentum":
		pick = func(d spacecraft.Diagnostics) float64 { return d.RotationalAngularMomentum.Norm() }
	default:
		return nil, errors.Errorf("unknown series %q", name)
	}
	out := make([]float64, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		out[i] = pick(d)
	}
	return out, nil
}

// MomentumDrift returns the largest deviation of the rotational angular momentum vector from its
// initial value.
func (r *Result) MomentumDrift() float64 {
	if len(r.Diagnostics) == 0 {
		return 0
	}
	first := r.Diagnostics[0].RotationalAngularMomentum
	var drift float64
	for _, d := range r.Diagnostics {
		drift = math.Max(drift, d.RotationalAngularMomentum.Sub(first).Norm())
	}
	return drift
}

