package dynamics

import (
	"github.com/golang/geo/r3"

	"go.viam.com/spinningbody/spatialmath"
)

// Names of the hub states and properties effectors link against. Multi-spacecraft simulations
// prefix them with the spacecraft name.
const (
	HubPositionName       = "hubPosition"
	HubVelocityName       = "hubVelocity"
	HubSigmaName          = "hubSigma"
	HubOmegaName          = "hubOmega"
	CenterOfMassName      = "centerOfMassSC"
	CenterOfMassPrimeName = "centerOfMassPrimeSC"
)

// IDSource issues identifiers scoped to a simulation context.
type IDSource interface {
	NextID(kind string) uint64
}

// StateEffector is a body attached to the hub that owns dynamic states of its own.
//
// Within one derivative evaluation the host calls MassPropsStep, then Contributions on the returned
// step, then Derivatives on the step returned by that. Each step carries the intermediate results of
// the previous one, so results from an earlier evaluation can never be consumed by mistake.
type StateEffector interface {
	Name() string
	RegisterStates(acc StateAccessor) error
	LinkInStates(acc StateAccessor) error
	MassPropsStep(integTime float64) (EffectiveMassProps, ContributionStep, error)
	EnergyMomentum(integTime float64, omegaBNB r3.Vector) (r3.Vector, float64, error)
}

// ContributionStep produces back-substitution contributions from fresh mass properties.
type ContributionStep interface {
	Contributions(integTime float64, sigmaBN spatialmath.MRP, omegaBNB, gN r3.Vector) (BackSubMatrices, DerivativeStep, error)
}

// DerivativeStep closes the loop once the hub accelerations are known.
type DerivativeStep interface {
	Derivatives(integTime float64, rDDotBNN, omegaDotBNB r3.Vector, sigmaBN spatialmath.MRP) error
}

// StateUpdater is implemented by effectors that read inputs and write telemetry once per step.
type StateUpdater interface {
	UpdateState(clock uint64) error
}

// PrefixedName joins a spacecraft name and a state name.
func PrefixedName(spacecraft, name string) string {
	return spacecraft + name
}
