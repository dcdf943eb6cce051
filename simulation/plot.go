package simulation

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
	plotDPI    = 150
)

func newLinePlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time [s]"
	p.Y.Label.Text = ylabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, i int, label string, xs, ys []float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return errors.Errorf("cannot plot %q: %d times for %d values", label, len(xs), len(ys))
	}
	pts := make(plotter.XYs, len(xs))
	for j := range xs {
		pts[j].X = xs[j]
		pts[j].Y = ys[j]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(i)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// ThetaPlot plots the hinge angle of every body against time.
func (r *Result) ThetaPlot() (*plot.Plot, error) {
	if len(r.Bodies) == 0 {
		return nil, errors.New("no bodies to plot")
	}
	p := newLinePlot("Hinge angles", "theta [rad]")
	for i, b := range r.Bodies {
		theta, err := r.Theta(b.Name)
		if err != nil {
			return nil, err
		}
		if err := addLine(p, i, b.Name, r.Times, theta); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// EnergyPlot plots the orbital and rotational energy against time.
func (r *Result) EnergyPlot() (*plot.Plot, error) {
	p := newLinePlot("Energy", "energy [J]")
	for i, name := range SeriesNames[:2] {
		data, err := r.Series(name)
		if err != nil {
			return nil, err
		}
		if err := addLine(p, i, name, r.Times, data); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// WritePNG renders p as a PNG.
func WritePNG(p *plot.Plot, w io.Writer) error {
	c := vgimg.NewWith(vgimg.UseWH(plotWidth, plotHeight), vgimg.UseDPI(plotDPI))
	p.Draw(draw.New(c))
	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return errors.Wrap(err, "cannot write png")
	}
	return bw.Flush()
}

// SavePNG renders p as a PNG file at path.
func SavePNG(p *plot.Plot, path string) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create png")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WritePNG(p, f)
}
