package spacecraft

import (
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"
)

// System is a set of first order differential equations over a flat state vector.
type System interface {
	StateVector() []float64
	SetStateVector(x []float64) error
	// Derivatives evaluates the time derivative of the current state at time t.
	Derivatives(t float64) ([]float64, error)
}

// Integrator advances a System by one step of size dt.
type Integrator interface {
	Integrate(sys System, t, dt float64) error
}

// RK4 is the classical fourth order Runge-Kutta method.
type RK4 struct{}

// Integrate advances sys from t to t+dt. If a derivative evaluation fails, sys is left at the
// state it had at t.
func (RK4) Integrate(sys System, t, dt float64) error {
	y := sys.StateVector()
	tmp := make([]float64, len(y))

	k1, err := sys.Derivatives(t)
	if err != nil {
		return err
	}
	stage := func(k []float64, h float64) ([]float64, error) {
		floats.AddScaledTo(tmp, y, h, k)
		if err := sys.SetStateVector(tmp); err != nil {
			return nil, multierr.Combine(err, sys.SetStateVector(y))
		}
		next, err := sys.Derivatives(t + h)
		if err != nil {
			return nil, multierr.Combine(err, sys.SetStateVector(y))
		}
		return next, nil
	}
	k2, err := stage(k1, 0.5*dt)
	if err != nil {
		return err
	}
	k3, err := stage(k2, 0.5*dt)
	if err != nil {
		return err
	}
	k4, err := stage(k3, dt)
	if err != nil {
		return err
	}

	f := dt / 6.0
	floats.AddScaled(y, f, k1)
	floats.AddScaled(y, 2*f, k2)
	floats.AddScaled(y, 2*f, k3)
	floats.AddScaled(y, f, k4)
	return sys.SetStateVector(y)
}

// Euler is the explicit first order method. It is only useful for quick looks.
type Euler struct{}

// Integrate advances sys from t to t+dt.
func (Euler) Integrate(sys System, t, dt float64) error {
	y := sys.StateVector()
	k, err := sys.Derivatives(t)
	if err != nil {
		return err
	}
	floats.AddScaled(y, dt, k)
	return sys.SetStateVector(y)
}

// IntegratorFromName returns the integrator registered under name.
func IntegratorFromName(name string) (Integrator, bool) {
	switch name {
	case "", "rk4":
		return RK4{}, true
	case "euler":
		return Euler{}, true
	default:
		return nil, false
	}
}
