// Package render draws curve models onto a surface.
package render

import (
	"fmt"
	"math"

	"github.com/verte-zerg/hypoviz/internal/curve"
	"github.com/verte-zerg/hypoviz/internal/surface"
)

const (
	labelTicks    = 4
	tickHalf      = 4.0
	axisCaption   = "standard deviations"
	typeIIPrefix  = "Type 2 error = "
	meanPrefix    = "Mean = "
	notApplicable = "n/a"
)

// Theme carries the colours and stroke settings for one curve.
type Theme struct {
	Curve    surface.Style
	Axis     surface.Style
	Boundary surface.Style
	Inside   surface.Style
	Outside  surface.Style
	Text     surface.TextStyle
	// Gap is the vertical distance between text rows in surface pixels.
	Gap float64
	// OutsideTextOffset moves the outside caption right of the upper marker.
	OutsideTextOffset float64
}

// DrawCurve clears the curve band and, if the curve is visible, paints it.
func DrawCurve(s surface.Surface, c *curve.Curve, th Theme) {
	r := c.Region()
	s.Clear(surface.Rect{X: r.Left, Y: r.Top(), W: r.Width, H: r.Height})
	if !c.Visible {
		return
	}
	if c.ShowOutside {
		drawOutsideArea(s, c, th)
	}
	if c.ShowInside {
		drawInsideArea(s, c, th)
	}
	drawOutline(s, c, th)
	drawAxis(s, c, th)
	if c.ShowLabels {
		drawAxisLabels(s, c, th)
	}
	drawBoundaries(s, c, th)
	if c.ShowInside {
		printInside(s, c, th)
	}
	if c.ShowOutside {
		printOutside(s, c, th)
	}
	printMean(s, c, th)
}

// Samples returns the outline of the curve as pixel points, one per pixel
// column where the plotted domain meets the band, right to left.
func Samples(c *curve.Curve) [][2]float64 {
	xMin, xMax := c.Domain()
	r := c.Region()
	hi := math.Min(math.Floor(c.PixelX(xMax)), r.Left+r.Width)
	lo := math.Max(math.Ceil(c.PixelX(xMin)), r.Left)
	if !(lo <= hi) {
		return nil
	}
	step := c.Step()
	pts := make([][2]float64, 0, int(hi-lo)+1)
	for px := hi; px >= lo; px-- {
		x := (px - c.CentreX()) * step
		pts = append(pts, [2]float64{px, c.PixelY(c.DensityAt(x))})
	}
	return pts
}

func drawOutline(s surface.Surface, c *curve.Curve, th Theme) {
	pts := Samples(c)
	r := c.Region()
	axis := c.AxisY()
	prevX, prevY := r.Left+r.Width, axis
	for _, p := range pts {
		s.Line(prevX, prevY, p[0], p[1], th.Curve)
		prevX, prevY = p[0], p[1]
	}
	s.Line(prevX, prevY, r.Left, axis, th.Curve)
}

// drawOutsideArea shades the area under the curve beyond the two markers.
func drawOutsideArea(s surface.Surface, c *curve.Curve, th Theme) {
	lower, upper := markers(c)
	r := c.Region()
	fillUnder(s, c, r.Left, lower, th.Outside)
	fillUnder(s, c, upper, r.Left+r.Width, th.Outside)
}

// drawInsideArea shades the area under the curve between the markers.
func drawInsideArea(s surface.Surface, c *curve.Curve, th Theme) {
	lower, upper := markers(c)
	fillUnder(s, c, lower, upper, th.Inside)
}

// fillUnder paints one-pixel columns from the axis up to the curve for
// columns in [from, to).
func fillUnder(s surface.Surface, c *curve.Curve, from, to float64, st surface.Style) {
	r := c.Region()
	from = math.Max(from, r.Left)
	to = math.Min(to, r.Left+r.Width)
	if !(from < to) {
		return
	}
	axis := c.AxisY()
	step := c.Step()
	for px := math.Floor(from); px < to; px++ {
		x := (px + 0.5 - c.CentreX()) * step
		top := c.PixelY(c.DensityAt(x))
		if top >= axis {
			continue
		}
		s.FillRect(surface.Rect{X: px, Y: top, W: 1, H: axis - top}, st)
	}
}

func drawAxis(s surface.Surface, c *curve.Curve, th Theme) {
	w, _ := s.Size()
	axis := c.AxisY()
	s.Line(0, axis, float64(w), axis, th.Axis)
}

func drawAxisLabels(s surface.Surface, c *curve.Curve, th Theme) {
	axis := c.AxisY()
	tick := th.Axis
	tick.Width = 1
	for i := -labelTicks; i <= labelTicks; i++ {
		x := float64(i) * c.StdDev()
		p := c.PixelX(x)
		s.Line(p, axis-tickHalf, p, axis+tickHalf, tick)
		s.Text(p, axis+tickHalf, fmt.Sprintf("%.2f", x), th.Text)
	}
	s.Text(c.CentreX(), axis+tickHalf+th.Gap, axisCaption, th.Text)
}

func drawBoundaries(s surface.Surface, c *curve.Curve, th Theme) {
	lower, upper := markers(c)
	r := c.Region()
	for _, x := range []float64{lower, upper} {
		s.Line(x, r.Top(), x, r.Bottom, th.Boundary)
	}
}

func printInside(s surface.Surface, c *curve.Curve, th Theme) {
	r := c.Region()
	text := typeIIPrefix + FormatProbability(c.TypeIIError())
	s.Text(c.CentreX(), r.Bottom-r.Height/2, text, th.Text)
}

func printOutside(s surface.Surface, c *curve.Curve, th Theme) {
	r := c.Region()
	_, upper := markers(c)
	text := c.OutsideLabel + FormatProbability(c.Power())
	ts := th.Text
	ts.Align = surface.AlignLeft
	x := math.Min(upper+th.OutsideTextOffset, r.Left+r.Width-th.OutsideTextOffset)
	s.Text(x, c.AxisY()-2*th.Gap, text, ts)
}

func printMean(s surface.Surface, c *curve.Curve, th Theme) {
	text := fmt.Sprintf("%s%.2f", meanPrefix, c.Mean())
	s.Text(c.CentreX(), c.AxisY()-th.Gap, text, th.Text)
}

// markers returns the marker positions clamped to the band; a degenerate
// (NaN) boundary collapses both markers onto the centre.
func markers(c *curve.Curve) (float64, float64) {
	lower, upper := c.BoundaryPixels()
	r := c.Region()
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return c.CentreX(), c.CentreX()
	}
	lo, hi := r.Left-1, r.Left+r.Width+1
	return clamp(lower, lo, hi), clamp(upper, lo, hi)
}

// FormatProbability prints a probability with two decimals, or n/a.
func FormatProbability(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return notApplicable
	}
	return fmt.Sprintf("%.2f", p)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
