package diagram

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ExportHysteresis exports the force-deformation loop to an image file.
// The format follows the extension (png, svg, pdf); anything else gets ".png".
func ExportHysteresis(data LoopData, filename string) error {
	p := plot.New()
	p.Title.Text = "Hysteresis Loop"
	if data.Title != "" {
		p.Title.Text = data.Title
	}
	p.X.Label.Text = "Deformation"
	p.Y.Label.Text = "Force"

	umin, umax := bounds(data.Strain, data.EnvelopeStrain)
	fmin, fmax := bounds(data.Stress, data.EnvelopeStress)

	// Zero reference lines
	axes := []plotter.XYs{
		{{X: umin, Y: 0}, {X: umax, Y: 0}},
		{{X: 0, Y: fmin}, {X: 0, Y: fmax}},
	}
	for _, pts := range axes {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = color.Gray{Y: 128}
		l.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(l)
	}

	// Undamaged backbone
	if len(data.EnvelopeStrain) > 1 {
		l, err := plotter.NewLine(xys(data.EnvelopeStrain, data.EnvelopeStress))
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = color.RGBA{R: 255, G: 165, B: 0, A: 255}
		l.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(l)
		p.Legend.Add("backbone", l)
	}

	// Response
	if len(data.Strain) > 1 {
		l, err := plotter.NewLine(xys(data.Strain, data.Stress))
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Color = color.RGBA{R: 0, G: 0, B: 139, A: 255}
		p.Add(l)
		p.Legend.Add("response", l)
	}

	// Failure point
	if data.FailedAt >= 0 && data.FailedAt < len(data.Strain) {
		s, err := plotter.NewScatter(plotter.XYs{{X: data.Strain[data.FailedAt], Y: data.Stress[data.FailedAt]}})
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = color.RGBA{R: 255, G: 0, B: 0, A: 255}
		s.GlyphStyle.Radius = vg.Points(5)
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(s)
		p.Legend.Add("failure", s)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	width := 8 * vg.Inch
	height := 6 * vg.Inch

	// Create directory if needed
	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}
