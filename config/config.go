// Package config defines the structures to configure a spinning body simulation: the hub, the
// effectors attached to it, and the run itself.
package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/spinningbody/logging"
	"go.viam.com/spinningbody/spacecraft"
	"go.viam.com/spinningbody/spatialmath"
)

// Config describes a simulation.
type Config struct {
	Name       string           `json:"name,omitempty"`
	Hub        HubConfig        `json:"hub"`
	Effectors  []EffectorConfig `json:"effectors,omitempty"`
	Simulation SimulationConfig `json:"simulation"`
	LogLevel   *logging.Level   `json:"log_level,omitempty"`

	// ConfigFilePath is the path the config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// SimulationConfig describes how long and how finely to integrate.
type SimulationConfig struct {
	TimeStep   float64 `json:"time_step"`            // [s]
	Duration   float64 `json:"duration"`             // [s]
	Integrator string  `json:"integrator,omitempty"` // "rk4" (default) or "euler"
}

// Validate ensures all parts of the config are valid.
func (c *SimulationConfig) Validate(path string) error {
	var errs error
	if c.TimeStep <= 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "time_step"))
	}
	if c.Duration < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("duration must be non-negative, got %v", c.Duration)))
	}
	if _, ok := spacecraft.IntegratorFromName(c.Integrator); !ok {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("unknown integrator %q", c.Integrator)))
	}
	return errs
}

// HubConfig describes the rigid hub. Vectors are given as three numbers and matrices as nine
// row-major numbers.
type HubConfig struct {
	Mass       float64   `json:"mass"`
	Inertia    []float64 `json:"inertia"`
	RBcB       []float64 `json:"r_bcb_b,omitempty"`
	RInit      []float64 `json:"r_init,omitempty"`
	VInit      []float64 `json:"v_init,omitempty"`
	SigmaInit  []float64 `json:"sigma_init,omitempty"`
	OmegaInit  []float64 `json:"omega_init,omitempty"`
	ExtForceN  []float64 `json:"ext_force_n,omitempty"`
	ExtTorqueB []float64 `json:"ext_torque_b,omitempty"`
	GravityN   []float64 `json:"gravity_n,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *HubConfig) Validate(path string) error {
	var errs error
	if c.Mass <= 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "mass"))
	}
	if c.Inertia == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "inertia"))
	} else {
		errs = multierr.Append(errs, validateMatrix(path, "inertia", c.Inertia))
	}
	for _, f := range []struct {
		name string
		v    []float64
	}{
		{"r_bcb_b", c.RBcB},
		{"r_init", c.RInit},
		{"v_init", c.VInit},
		{"sigma_init", c.SigmaInit},
		{"omega_init", c.OmegaInit},
		{"ext_force_n", c.ExtForceN},
		{"ext_torque_b", c.ExtTorqueB},
		{"gravity_n", c.GravityN},
	} {
		errs = multierr.Append(errs, validateVector(path, f.name, f.v))
	}
	return errs
}

// Spacecraft converts the config to the hub description used by the simulation.
func (c *HubConfig) Spacecraft() spacecraft.HubConfig {
	return spacecraft.HubConfig{
		MHub:       c.Mass,
		IHubPntBcB: spatialmath.Mat3FromSlice(c.Inertia),
		RBcBB:      vector(c.RBcB),
		RInit:      vector(c.RInit),
		VInit:      vector(c.VInit),
		SigmaInit:  spatialmath.MRP(vector(c.SigmaInit)),
		OmegaInit:  vector(c.OmegaInit),
		ExtForceN:  vector(c.ExtForceN),
		ExtTorqueB: vector(c.ExtTorqueB),
		GravityN:   vector(c.GravityN),
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	errs := multierr.Combine(
		c.Hub.Validate("hub"),
		c.Simulation.Validate("simulation"),
	)
	seen := map[string]bool{}
	for i := range c.Effectors {
		e := &c.Effectors[i]
		path := fmt.Sprintf("effectors.%d", i)
		if err := e.Validate(path); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if e.Name != "" {
			if seen[e.Name] {
				errs = multierr.Append(errs, utils.NewConfigValidationError(path,
					errors.Errorf("duplicate effector name %q", e.Name)))
			}
			seen[e.Name] = true
		}
	}
	return errs
}

// String prints out a table of each body of the spacecraft.
func (c Config) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Name", "Type", "Mass [kg]", "Hinge [m]", "Spin Axis", "k", "c", "Theta0 [rad]"})
	t.AppendRow(table.Row{"0", c.Name, "hub", c.Hub.Mass, formatVector(vector(c.Hub.RBcB)), "", "", "", ""})
	for i, e := range c.Effectors {
		row := table.Row{fmt.Sprintf("%d", i+1), e.Name, e.Type}
		if sb, ok := e.ConvertedAttributes.(*SpinningBodyConfig); ok {
			row = append(row,
				sb.Mass, formatVector(vector(sb.RSB)), formatVector(vector(sb.SHat)), sb.K, sb.C, sb.ThetaInit)
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("[%.3g %.3g %.3g]", v.X, v.Y, v.Z)
}

func vector(v []float64) r3.Vector {
	if len(v) != 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func validateVector(path, field string, v []float64) error {
	if v != nil && len(v) != 3 {
		return utils.NewConfigValidationError(path, errors.Errorf("%s must have 3 elements, got %d", field, len(v)))
	}
	return nil
}

func validateMatrix(path, field string, v []float64) error {
	if len(v) != 9 {
		return utils.NewConfigValidationError(path, errors.Errorf("%s must have 9 elements, got %d", field, len(v)))
	}
	return nil
}

func matrixOrIdentity(v []float64) mgl64.Mat3 {
	if v == nil {
		return mgl64.Ident3()
	}
	return spatialmath.Mat3FromSlice(v)
}
