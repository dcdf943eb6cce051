package messaging

import (
	"github.com/golang/geo/r3"
)

// MaxEffectorCount is the capacity of array-shaped actuator commands.
const MaxEffectorCount = 36

// HingedRigidBodyMsgPayload carries the hinge state of a single degree of freedom body.
type HingedRigidBodyMsgPayload struct {
	Theta    float64 `json:"theta"`     // [rad]
	ThetaDot float64 `json:"theta_dot"` // [rad/s]
}

// SCStatesMsgPayload carries the inertial configuration of a rigid body.
type SCStatesMsgPayload struct {
	PositionN r3.Vector `json:"r_bn_n"`     // inertial position [m]
	VelocityN r3.Vector `json:"v_bn_n"`     // inertial velocity [m/s]
	SigmaBN   r3.Vector `json:"sigma_bn"`   // attitude relative to inertial, MRP
	OmegaBNB  r3.Vector `json:"omega_bn_b"` // inertial angular velocity in body components [rad/s]
}

// ArrayMotorTorqueMsgPayload carries commanded torques for a set of actuators.
type ArrayMotorTorqueMsgPayload struct {
	MotorTorque [MaxEffectorCount]float64 `json:"motor_torque"` // [N-m]
}
