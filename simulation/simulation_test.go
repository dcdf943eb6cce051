package simulation

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/spinningbody/config"
	"go.viam.com/spinningbody/logging"
)

const twoBodies = `{
  "name": "sc",
  "hub": {
    "mass": 750,
    "inertia": [900, 0, 0, 0, 800, 0, 0, 0, 600],
    "r_bcb_b": [0, 0, 1],
    "omega_init": [0.01, -0.01, 0.005]
  },
  "effectors": [
    {
      "name": "panel",
      "type": "spinning_body",
      "attributes": {
        "mass": 50,
        "inertia": [50, 0, 0, 0, 30, 0, 0, 0, 40],
        "r_scs_s": [0.5, 0, 0],
        "r_sb_b": [1.5, 0, 0.5],
        "s_hat_s": [0, 0, 1],
        "theta_init": 0.1,
        "k": 100
      }
    },
    {
      "name": "wheel",
      "attributes": {
        "mass": 5,
        "inertia": [0.1, 0, 0, 0, 0.1, 0, 0, 0, 0.2],
        "s_hat_s": [0, 0, 1],
        "theta_dot_init": 10,
        "motor_torque": 0.01
      }
    }
  ],
  "simulation": {"time_step": 0.01, "duration": 1}
}`

func newSimulation(t *testing.T, raw string) *Simulation {
	t.Helper()
	logger := logging.NewTestLogger(t)
	cfg, err := config.FromReader("", strings.NewReader(raw), logger)
	test.That(t, err, test.ShouldBeNil)
	sim, err := New(cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	return sim
}

func runSimulation(t *testing.T) *Result {
	t.Helper()
	res, err := newSimulation(t, twoBodies).Run(context.Background())
	test.That(t, err, test.ShouldBeNil)
	return res
}

func TestRun(t *testing.T) {
	sim := newSimulation(t, twoBodies)
	test.That(t, sim.Spacecraft().Name(), test.ShouldEqual, "sc")
	bodies := sim.Bodies()
	test.That(t, bodies, test.ShouldHaveLength, 2)
	test.That(t, bodies[0].ThetaStateName(), test.ShouldStartWith, "sc")

	res, err := sim.Run(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sim.Spacecraft().Time(), test.ShouldAlmostEqual, 1.0, 1e-9)

	// initial sample plus one per step
	test.That(t, res.Times, test.ShouldHaveLength, 101)
	test.That(t, res.Hub, test.ShouldHaveLength, 101)
	test.That(t, res.Diagnostics, test.ShouldHaveLength, 101)
	test.That(t, res.Times[0], test.ShouldEqual, 0.)
	test.That(t, res.Times[100], test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, res.Bodies[0].Name, test.ShouldEqual, "panel")
	test.That(t, res.Bodies[0].Samples[0].Theta, test.ShouldAlmostEqual, 0.1)

	t.Run("internal torques conserve angular momentum", func(t *testing.T) {
		h0 := res.Diagnostics[0].RotationalAngularMomentum.Norm()
		test.That(t, res.MomentumDrift(), test.ShouldBeLessThan, 1e-6*h0)
	})

	t.Run("motor torque spins up the wheel", func(t *testing.T) {
		wheel := res.Bodies[1].Samples
		test.That(t, wheel[len(wheel)-1].ThetaDot, test.ShouldBeGreaterThan, 10.)
	})

	t.Run("spring pulls the panel back", func(t *testing.T) {
		theta, err := res.Theta("panel")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, theta[1], test.ShouldBeLessThan, theta[0])
		_, err = res.Theta("boom")
		test.That(t, err, test.ShouldBeError, `no body named "boom"`)
	})
}

func TestRunCanceled(t *testing.T) {
	sim := newSimulation(t, twoBodies)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sim.Run(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, context.Canceled.Error())
}

func TestNoEffectors(t *testing.T) {
	sim := newSimulation(t, `{
  "hub": {"mass": 100, "inertia": [10, 0, 0, 0, 10, 0, 0, 0, 10], "omega_init": [0, 0, 1]},
  "simulation": {"time_step": 0.1, "duration": 0.5, "integrator": "euler"}
}`)
	res, err := sim.Run(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Times, test.ShouldHaveLength, 6)
	test.That(t, res.Bodies, test.ShouldBeEmpty)

	// a symmetric rigid body spinning about a principal axis keeps its rate
	last := res.Hub[len(res.Hub)-1]
	test.That(t, last.OmegaBNB.Z, test.ShouldAlmostEqual, 1.0)

	_, err = res.ThetaPlot()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSummary(t *testing.T) {
	res := runSimulation(t)
	summary, err := res.Summary()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary, test.ShouldHaveLength, len(SeriesNames))
	for i, s := range summary {
		test.That(t, s.Name, test.ShouldEqual, SeriesNames[i])
		test.That(t, s.StdDev, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, s.Drift, test.ShouldBeGreaterThanOrEqualTo, 0)
	}
	// nothing acts on the system from outside
	test.That(t, summary[0].Drift, test.ShouldBeLessThan, 1e-6)

	tbl, err := res.SummaryTable()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tbl, test.ShouldContainSubstring, "rotational_energy")
	test.That(t, tbl, test.ShouldContainSubstring, "wheel")

	_, err = (&Result{}).Summary()
	test.That(t, err, test.ShouldNotBeNil)
	_, err = res.Series("potential_energy")
	test.That(t, err, test.ShouldBeError, `unknown series "potential_energy"`)
}

func TestWriteCSV(t *testing.T) {
	res := runSimulation(t)
	var buf bytes.Buffer
	test.That(t, res.WriteCSV(&buf), test.ShouldBeNil)

	rows, err := csv.NewReader(&buf).ReadAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rows, test.ShouldHaveLength, 102)
	header := rows[0]
	test.That(t, header[0], test.ShouldEqual, "t")
	test.That(t, header, test.ShouldContain, "panel_theta")
	test.That(t, header, test.ShouldContain, "wheel_theta_dot")
	test.That(t, header[len(header)-1], test.ShouldEqual, "rotational_momentum")
	for _, row := range rows[1:] {
		test.That(t, row, test.ShouldHaveLength, len(header))
	}
	test.That(t, rows[1][0], test.ShouldEqual, "0")

	res.Hub = res.Hub[:10]
	test.That(t, res.WriteCSV(&bytes.Buffer{}), test.ShouldNotBeNil)
}

func TestPlots(t *testing.T) {
	res := runSimulation(t)
	p, err := res.ThetaPlot()
	test.That(t, err, test.ShouldBeNil)

	var buf bytes.Buffer
	test.That(t, WritePNG(p, &buf), test.ShouldBeNil)
	test.That(t, buf.Bytes()[:8], test.ShouldResemble, []byte("\x89PNG\r\n\x1a\n"))

	energy, err := res.EnergyPlot()
	test.That(t, err, test.ShouldBeNil)
	path := filepath.Join(t.TempDir(), "energy.png")
	test.That(t, SavePNG(energy, path), test.ShouldBeNil)
}
