package simulation

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// SeriesNames lists the diagnostic series of a Result in display order.
var SeriesNames = []string{"orbital_energy", "rotational_energy", "orbital_momentum", "rotational_momentum"}

// SeriesSummary describes how a conserved quantity behaved over a run.
type SeriesSummary struct {
	Name    string
	Initial float64
	Final   float64
	Mean    float64
	StdDev  float64
	// Drift is the largest absolute deviation from the initial value.
	Drift float64
}

func summarize(name string, data []float64) (SeriesSummary, error) {
	if len(data) == 0 {
		return SeriesSummary{}, errors.Errorf("series %q is empty", name)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return SeriesSummary{}, err
	}
	sd, err := stats.StandardDeviation(data)
	if err != nil {
		return SeriesSummary{}, err
	}
	lo, err := stats.Min(data)
	if err != nil {
		return SeriesSummary{}, err
	}
	hi, err := stats.Max(data)
	if err != nil {
		return SeriesSummary{}, err
	}
	first := data[0]
	return SeriesSummary{
		Name:    name,
		Initial: first,
		Final:   data[len(data)-1],
		Mean:    mean,
		StdDev:  sd,
		Drift:   math.Max(math.Abs(hi-first), math.Abs(lo-first)),
	}, nil
}

// Summary summarizes every diagnostic series of r.
func (r *Result) Summary() ([]SeriesSummary, error) {
	out := make([]SeriesSummary, 0, len(SeriesNames))
	for _, name := range SeriesNames {
		data, err := r.Series(name)
		if err != nil {
			return nil, err
		}
		s, err := summarize(name, data)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// SummaryTable renders the summary of r along with the final hinge state of every body.
func (r *Result) SummaryTable() (string, error) {
	summary, err := r.Summary()
	if err != nil {
		return "", err
	}
	t := table.NewWriter()
	t.SetTitle("Conserved quantities")
	t.AppendHeader(table.Row{"Quantity", "Initial", "Final", "Mean", "Std dev", "Drift"})
	for _, s := range summary {
		t.AppendRow(table.Row{s.Name, g(s.Initial), g(s.Final), g(s.Mean), g(s.StdDev), g(s.Drift)})
	}
	out := t.Render()

	if len(r.Bodies) == 0 {
		return out, nil
	}
	bt := table.NewWriter()
	bt.SetTitle("Final hinge states")
	bt.AppendHeader(table.Row{"Body", "Theta [rad]", "Theta dot [rad/s]"})
	for _, b := range r.Bodies {
		if len(b.Samples) == 0 {
			bt.AppendRow(table.Row{b.Name, "-", "-"})
			continue
		}
		last := b.Samples[len(b.Samples)-1]
		bt.AppendRow(table.Row{b.Name, g(last.Theta), g(last.ThetaDot)})
	}
	return out + "\n" + bt.Render(), nil
}

func g(v float64) string {
	return fmt.Sprintf("%.9g", v)
}
