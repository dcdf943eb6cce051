package spinningbody

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/spinningbody/dynamics"
	sm "go.viam.com/spinningbody/spatialmath"
)

// Kinematics holds the configuration-dependent quantities of a spinning body for one value of
// theta and thetaDot. Vectors are expressed in the hub frame B unless the name says otherwise.
type Kinematics struct {
	Theta    float64
	ThetaDot float64

	DCMBS         mgl64.Mat3 // [BS]
	SHatB         r3.Vector  // spin axis
	RScSB         r3.Vector  // center of mass relative to the hinge point
	RScBB         r3.Vector  // center of mass relative to B
	RTildeScBB    mgl64.Mat3 // [RScBB~]
	RPrimeScSB    r3.Vector  // body-frame derivative of RScSB
	RPrimeScBB    r3.Vector  // body-frame derivative of RScBB
	OmegaSBB      r3.Vector  // angular velocity of S relative to B
	OmegaTildeSBB mgl64.Mat3 // [OmegaSBB~]
	IPntScB       mgl64.Mat3 // inertia about the center of mass

	resolved bool
}

// UpdateEffectorMassProps resolves the body's kinematics at theta, thetaDot and returns its
// contribution to the composite mass properties.
func (sb *SpinningBody) UpdateEffectorMassProps(theta, thetaDot float64) (Kinematics, dynamics.EffectiveMassProps, error) {
	if !sb.configured {
		return Kinematics{}, dynamics.EffectiveMassProps{}, ErrNotConfigured
	}
	m := sb.cfg.Mass

	dcmS0S := sm.PRVToDCM(sb.sHatS.Mul(-theta))
	dcmBS := sb.cfg.DCMS0B.Transpose().Mul3(dcmS0S)

	kin := Kinematics{
		Theta:    theta,
		ThetaDot: thetaDot,
		DCMBS:    dcmBS,
		SHatB:    sm.MulVec(dcmBS, sb.sHatS),
		RScSB:    sm.MulVec(dcmBS, sb.cfg.RScSS),
		IPntScB:  dcmBS.Mul3(sb.cfg.IPntScS).Mul3(dcmBS.Transpose()),
		resolved: true,
	}
	kin.RScBB = kin.RScSB.Add(sb.cfg.RSBB)
	kin.RTildeScBB = sm.Tilde(kin.RScBB)
	kin.OmegaSBB = kin.SHatB.Mul(thetaDot)
	kin.OmegaTildeSBB = sm.Tilde(kin.OmegaSBB)
	kin.RPrimeScSB = sm.MulVec(kin.OmegaTildeSBB, kin.RScSB)
	kin.RPrimeScBB = kin.RPrimeScSB

	rPrimeTilde := sm.Tilde(kin.RPrimeScBB)
	props := dynamics.EffectiveMassProps{
		MEff:        m,
		REffCB:      kin.RScBB,
		REffPrimeCB: kin.RPrimeScBB,
		IEffPntB:    kin.IPntScB.Sub(kin.RTildeScBB.Mul3(kin.RTildeScBB).Mul(m)),
		IEffPrimePntB: kin.OmegaTildeSBB.Mul3(kin.IPntScB).
			Sub(kin.IPntScB.Mul3(kin.OmegaTildeSBB)).
			Sub(rPrimeTilde.Mul3(kin.RTildeScBB).Add(kin.RTildeScBB.Mul3(rPrimeTilde)).Mul(m)),
	}
	return kin, props, nil
}
