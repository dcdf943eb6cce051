package config

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/spinningbody/spatialmath"
)

var sampleAttributeMap = AttributeMap{
	"mass":           2.5,
	"inertia":        []interface{}{1.0, 0.0, 0.0, 0.0, 2.0, 0.0, 0.0, 0.0, 3.0},
	"s_hat_s":        []interface{}{0, 0, 1},
	"axis_angle_s0b": map[string]interface{}{"th": 0.5, "x": 1, "y": 0, "z": 0},
	"k":              4,
	"motor_torque":   0.25,
}

func TestDecodeAttributes(t *testing.T) {
	var conf SpinningBodyConfig
	test.That(t, DecodeAttributes(sampleAttributeMap, &conf), test.ShouldBeNil)
	test.That(t, conf.Mass, test.ShouldEqual, 2.5)
	test.That(t, conf.Inertia, test.ShouldResemble, []float64{1, 0, 0, 0, 2, 0, 0, 0, 3})
	test.That(t, conf.SHat, test.ShouldResemble, []float64{0, 0, 1})
	test.That(t, conf.K, test.ShouldEqual, 4.)
	test.That(t, conf.MotorTorque, test.ShouldEqual, 0.25)
	test.That(t, conf.AxisAngleS0B, test.ShouldResemble, &spatialmath.R4AA{Theta: 0.5, RX: 1})
	test.That(t, conf.RSB, test.ShouldBeNil)

	t.Run("unknown keys are rejected", func(t *testing.T) {
		bad := AttributeMap{"mass": 1.0, "spring": 3.0}
		err := DecodeAttributes(bad, &SpinningBodyConfig{})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "spring")
	})

	t.Run("mistyped values are rejected", func(t *testing.T) {
		err := DecodeAttributes(AttributeMap{"mass": "heavy"}, &SpinningBodyConfig{})
		test.That(t, err, test.ShouldNotBeNil)
		err = DecodeAttributes(AttributeMap{"inertia": "diagonal"}, &SpinningBodyConfig{})
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestEffectorConfigValidate(t *testing.T) {
	e := EffectorConfig{Name: "panel", Type: SpinningBodyType, Attributes: sampleAttributeMap}
	test.That(t, e.Validate("effectors.0"), test.ShouldBeNil)
	conv, ok := e.ConvertedAttributes.(*SpinningBodyConfig)
	test.That(t, ok, test.ShouldBeTrue)

	body := conv.Body(e.Name)
	test.That(t, body.Name, test.ShouldEqual, "panel")
	want := spatialmath.PRVToDCM((&spatialmath.R4AA{Theta: 0.5, RX: 1}).ToR3())
	test.That(t, spatialmath.Mat3AlmostEqual(body.DCMS0B, want, 1e-12), test.ShouldBeTrue)

	// converted attributes are kept across validations
	test.That(t, e.Validate("effectors.0"), test.ShouldBeNil)
	test.That(t, e.ConvertedAttributes, test.ShouldEqual, conv)

	noType := EffectorConfig{Attributes: sampleAttributeMap}
	err := noType.Validate("effectors.1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "type")
}
