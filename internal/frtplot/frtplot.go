// Package frtplot draws the residual-voltage-over-duration chart of a fault
// catalog.
package frtplot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/gridcode-frt/frt-go/pkg/fault"
)

// ErrNothingToPlot is returned for catalogs without plottable tests.
var ErrNothingToPlot = errors.New("no tests with positive duration")

// Options configures the chart.
type Options struct {
	// Title defaults to the catalog key.
	Title string

	// Width and Height default to 16x10 cm.
	Width  vg.Length
	Height vg.Length

	// Labels annotates every point with its test id.
	Labels bool
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 16 * vg.Centimeter
	}
	if h <= 0 {
		h = 10 * vg.Centimeter
	}
	return w, h
}

type series struct {
	name  string
	shape draw.GlyphDrawer
	color color.Color
	pts   plotter.XYs
	ids   []string
}

// New builds the chart of a catalog. The duration axis is logarithmic, so
// tests with a non-positive duration are left out.
func New(c *fault.Catalog, opts Options) (*plot.Plot, error) {
	sym := &series{name: "symmetrical short circuit", shape: draw.CircleGlyph{}, color: color.RGBA{R: 200, A: 255}}
	unsym := &series{name: "unsymmetrical short circuit", shape: draw.SquareGlyph{}, color: color.RGBA{B: 200, A: 255}}
	step := &series{name: "switching step", shape: draw.TriangleGlyph{}, color: color.RGBA{G: 150, A: 255}}

	minD, maxD := 0.0, 0.0
	for _, t := range c.All() {
		if t.Duration <= 0 {
			continue
		}
		s := sym
		switch {
		case !t.Kind().ShortCircuit():
			s = step
		case !t.Symmetric():
			s = unsym
		}
		s.pts = append(s.pts, plotter.XY{X: t.Duration, Y: t.ResidualVoltage})
		s.ids = append(s.ids, strconv.Itoa(t.ID))
		if minD == 0 || t.Duration < minD {
			minD = t.Duration
		}
		if t.Duration > maxD {
			maxD = t.Duration
		}
	}
	if maxD == 0 {
		return nil, ErrNothingToPlot
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "Fault catalog " + c.Key().String()
	}
	p.X.Label.Text = "duration [s]"
	p.Y.Label.Text = "residual voltage [p.u.]"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	ref, err := plotter.NewLine(plotter.XYs{{X: minD, Y: 1}, {X: maxD, Y: 1}})
	if err != nil {
		return nil, err
	}
	ref.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	ref.LineStyle.Color = color.Gray{Y: 120}
	p.Add(ref)

	for _, s := range []*series{sym, unsym, step} {
		if len(s.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(s.pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		sc.GlyphStyle.Shape = s.shape
		sc.GlyphStyle.Color = s.color
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(s.name, sc)

		if opts.Labels {
			l, err := plotter.NewLabels(plotter.XYLabels{XYs: s.pts, Labels: s.ids})
			if err != nil {
				return nil, err
			}
			p.Add(l)
		}
	}
	p.Legend.Top = true
	return p, nil
}

// Save writes the chart to path. The format follows the file extension
// (png, svg, pdf, eps, jpg, tif).
func Save(c *fault.Catalog, path string, opts Options) error {
	p, err := New(c, opts)
	if err != nil {
		return err
	}
	w, h := opts.size()
	return p.Save(w, h, path)
}

// WriteTo writes the chart in the given format to w.
func WriteTo(w io.Writer, c *fault.Catalog, format string, opts Options) error {
	p, err := New(c, opts)
	if err != nil {
		return err
	}
	width, height := opts.size()
	wt, err := p.WriterTo(width, height, strings.ToLower(format))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Format returns the output format implied by a file name.
func Format(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
