package dynamics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// EffectiveMassProps is one body's additive contribution to the composite mass properties of the
// spacecraft, expressed in the hub frame B about the hub reference point B.
type EffectiveMassProps struct {
	MEff          float64    // mass [kg]
	REffCB        r3.Vector  // center of mass relative to B [m]
	REffPrimeCB   r3.Vector  // body-frame derivative of REffCB [m/s]
	IEffPntB      mgl64.Mat3 // inertia about B [kg m^2]
	IEffPrimePntB mgl64.Mat3 // body-frame derivative of IEffPntB [kg m^2/s]
}

// CompositeMassProps accumulates EffectiveMassProps.
type CompositeMassProps struct {
	Mass       float64
	firstMom   r3.Vector
	firstRate  r3.Vector
	Inertia    mgl64.Mat3
	InertiaDot mgl64.Mat3
}

// Add folds p into the composite.
func (c *CompositeMassProps) Add(p EffectiveMassProps) {
	c.Mass += p.MEff
	c.firstMom = c.firstMom.Add(p.REffCB.Mul(p.MEff))
	c.firstRate = c.firstRate.Add(p.REffPrimeCB.Mul(p.MEff))
	c.Inertia = c.Inertia.Add(p.IEffPntB)
	c.InertiaDot = c.InertiaDot.Add(p.IEffPrimePntB)
}

// CenterOfMass returns the composite center of mass relative to B.
func (c *CompositeMassProps) CenterOfMass() r3.Vector {
	if c.Mass == 0 {
		return r3.Vector{}
	}
	return c.firstMom.Mul(1 / c.Mass)
}

// CenterOfMassPrime returns the body-frame derivative of CenterOfMass.
func (c *CompositeMassProps) CenterOfMassPrime() r3.Vector {
	if c.Mass == 0 {
		return r3.Vector{}
	}
	return c.firstRate.Mul(1 / c.Mass)
}
