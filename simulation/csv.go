package simulation

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// WriteCSV writes one row per sample: time, the hub states, every body's hinge state, and the
// diagnostics.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{
		"t",
		"r_x", "r_y", "r_z",
		"v_x", "v_y", "v_z",
		"sigma_1", "sigma_2", "sigma_3",
		"omega_1", "omega_2", "omega_3",
	}
	for _, b := range r.Bodies {
		header = append(header, b.Name+"_theta", b.Name+"_theta_dot")
	}
	header = append(header, SeriesNames...)
	if err := cw.Write(header); err != nil {
		return err
	}

	series := make([][]float64, len(SeriesNames))
	for i, name := range SeriesNames {
		data, err := r.Series(name)
		if err != nil {
			return err
		}
		series[i] = data
	}

	for i, t := range r.Times {
		if i >= len(r.Hub) || i >= len(r.Diagnostics) {
			return errors.Errorf("telemetry has %d hub and %d diagnostic samples for %d times",
				len(r.Hub), len(r.Diagnostics), len(r.Times))
		}
		h := r.Hub[i]
		row := formatFloats(t,
			h.PositionN.X, h.PositionN.Y, h.PositionN.Z,
			h.VelocityN.X, h.VelocityN.Y, h.VelocityN.Z,
			h.SigmaBN.X, h.SigmaBN.Y, h.SigmaBN.Z,
			h.OmegaBNB.X, h.OmegaBNB.Y, h.OmegaBNB.Z,
		)
		for _, b := range r.Bodies {
			if i >= len(b.Samples) {
				return errors.Errorf("body %q has only %d samples", b.Name, len(b.Samples))
			}
			row = append(row, formatFloats(b.Samples[i].Theta, b.Samples[i].ThetaDot)...)
		}
		for _, s := range series {
			row = append(row, formatFloats(s[i])...)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloats(vs ...float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}
