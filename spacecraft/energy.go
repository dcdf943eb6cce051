package spacecraft

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	sm "go.viam.com/spinningbody/spatialmath"
)

// Diagnostics are the conserved quantities of the spacecraft. Angular momenta are inertial frame
// components.
type Diagnostics struct {
	OrbitalEnergy             float64   // translational energy of the center of mass, including uniform gravity [J]
	RotationalEnergy          float64   // energy relative to the center of mass, including springs [J]
	OrbitalAngularMomentum    r3.Vector // about the origin of N [kg m^2/s]
	RotationalAngularMomentum r3.Vector // about the center of mass [kg m^2/s]
}

// Diagnostics computes energy and angular momentum at the current states.
func (sc *Spacecraft) Diagnostics() (Diagnostics, error) {
	if !sc.initialized {
		return Diagnostics{}, errors.Errorf("spacecraft %q is not initialized", sc.name)
	}
	hs := sc.HubState()
	omega := hs.OmegaBNB
	dcmNB := hs.SigmaBN.DCM().Transpose()

	comp, _, err := sc.massProps(sc.time)
	if err != nil {
		return Diagnostics{}, err
	}
	m := comp.Mass
	c := comp.CenterOfMass()
	cDot := comp.CenterOfMassPrime().Add(omega.Cross(c))

	// hub about B
	rBc := sc.hub.RBcBB
	rBcDot := omega.Cross(rBc)
	hB := sm.MulVec(sc.hub.IHubPntBcB, omega).Add(rBc.Cross(rBcDot).Mul(sc.hub.MHub))
	eB := 0.5*sm.QuadForm(omega, sc.hub.IHubPntBcB, omega) + 0.5*sc.hub.MHub*rBcDot.Norm2()

	for _, e := range sc.effectors {
		h, energy, err := e.EnergyMomentum(sc.time, omega)
		if err != nil {
			return Diagnostics{}, errors.Wrapf(err, "cannot compute energy of %q", e.Name())
		}
		hB = hB.Add(h)
		eB += energy
	}

	rCN := hs.PositionN.Add(sm.MulVec(dcmNB, c))
	vCN := hs.VelocityN.Add(sm.MulVec(dcmNB, cDot))
	return Diagnostics{
		OrbitalEnergy:             0.5*m*vCN.Norm2() - m*sc.hub.GravityN.Dot(rCN),
		RotationalEnergy:          eB - 0.5*m*cDot.Norm2(),
		OrbitalAngularMomentum:    rCN.Cross(vCN).Mul(m),
		RotationalAngularMomentum: sm.MulVec(dcmNB, hB.Sub(c.Cross(cDot).Mul(m))),
	}, nil
}

// TotalOrbitalEnergy returns the translational energy of the center of mass [J].
func (sc *Spacecraft) TotalOrbitalEnergy() (float64, error) {
	d, err := sc.Diagnostics()
	return d.OrbitalEnergy, err
}

// TotalRotationalEnergy returns the energy relative to the center of mass [J].
func (sc *Spacecraft) TotalRotationalEnergy() (float64, error) {
	d, err := sc.Diagnostics()
	return d.RotationalEnergy, err
}

// TotalOrbitalAngularMomentum returns the angular momentum of the center of mass about the origin
// of N, in N frame components.
func (sc *Spacecraft) TotalOrbitalAngularMomentum() (r3.Vector, error) {
	d, err := sc.Diagnostics()
	return d.OrbitalAngularMomentum, err
}

// TotalRotationalAngularMomentum returns the angular momentum about the center of mass, in N frame
// components.
func (sc *Spacecraft) TotalRotationalAngularMomentum() (r3.Vector, error) {
	d, err := sc.Diagnostics()
	return d.RotationalAngularMomentum, err
}
