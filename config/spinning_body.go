package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/spinningbody/effectors/spinningbody"
	"go.viam.com/spinningbody/spatialmath"
)

// SpinningBodyType is the effector type of a spinning body.
const SpinningBodyType = "spinning_body"

func init() {
	RegisterEffectorAttributeMapConverter(SpinningBodyType, func(attributes AttributeMap) (interface{}, error) {
		var conf SpinningBodyConfig
		if err := DecodeAttributes(attributes, &conf); err != nil {
			return nil, err
		}
		return &conf, nil
	}, &SpinningBodyConfig{})
}

// SpinningBodyConfig is the attribute set of a spinning body. The orientation of the body at
// theta = 0 is given either as a row-major [S0B] or as an axis angle; it defaults to identity.
type SpinningBodyConfig struct {
	Mass         float64           `json:"mass"`
	Inertia      []float64         `json:"inertia"`
	RScS         []float64         `json:"r_scs_s,omitempty"`
	RSB          []float64         `json:"r_sb_b,omitempty"`
	SHat         []float64         `json:"s_hat_s"`
	DCMS0B       []float64         `json:"dcm_s0b,omitempty"`
	AxisAngleS0B *spatialmath.R4AA `json:"axis_angle_s0b,omitempty"`
	ThetaInit    float64           `json:"theta_init,omitempty"`
	ThetaDotInit float64           `json:"theta_dot_init,omitempty"`
	K            float64           `json:"k,omitempty"`
	C            float64           `json:"c,omitempty"`
	MotorTorque  float64           `json:"motor_torque,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *SpinningBodyConfig) Validate(path string) error {
	var errs error
	if c.Mass <= 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "mass"))
	}
	if c.Inertia == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "inertia"))
	} else {
		errs = multierr.Append(errs, validateMatrix(path, "inertia", c.Inertia))
	}
	if c.SHat == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "s_hat_s"))
	} else {
		errs = multierr.Append(errs, validateVector(path, "s_hat_s", c.SHat))
	}
	errs = multierr.Combine(errs,
		validateVector(path, "r_scs_s", c.RScS),
		validateVector(path, "r_sb_b", c.RSB),
	)
	if c.DCMS0B != nil {
		errs = multierr.Append(errs, validateMatrix(path, "dcm_s0b", c.DCMS0B))
		if c.AxisAngleS0B != nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path,
				errors.New("only one of dcm_s0b and axis_angle_s0b may be set")))
		}
	}
	if c.AxisAngleS0B != nil && c.AxisAngleS0B.Theta != 0 {
		aa := *c.AxisAngleS0B
		if err := aa.Normalize(); err != nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.Wrap(err, "axis_angle_s0b")))
		}
	}
	if errs != nil {
		return errs
	}
	body := c.Body("")
	return body.Validate(path)
}

// Body converts the attributes to the configuration of a spinning body called name.
func (c *SpinningBodyConfig) Body(name string) spinningbody.Config {
	dcm := matrixOrIdentity(c.DCMS0B)
	if c.AxisAngleS0B != nil && c.AxisAngleS0B.Theta != 0 {
		aa := *c.AxisAngleS0B
		if err := aa.Normalize(); err == nil {
			dcm = aa.DCM()
		}
	}
	return spinningbody.Config{
		Name:         name,
		Mass:         c.Mass,
		IPntScS:      spatialmath.Mat3FromSlice(c.Inertia),
		RScSS:        vector(c.RScS),
		RSBB:         vector(c.RSB),
		SHatS:        vector(c.SHat),
		DCMS0B:       dcm,
		ThetaInit:    c.ThetaInit,
		ThetaDotInit: c.ThetaDotInit,
		K:            c.K,
		C:            c.C,
	}
}
