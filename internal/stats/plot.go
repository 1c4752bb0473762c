package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/hypoviz/internal/surface"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

// Range fixes the vertical extent shared by every series of a plot.
type Range struct {
	Min float64
	Max float64
}

// widen keeps a flat range drawable.
func (r Range) widen() Range {
	if math.Abs(r.Max-r.Min) < 1e-9 {
		return Range{Min: r.Min - 1, Max: r.Max + 1}
	}
	return r
}

func (r Range) label(frac float64) string {
	return fmt.Sprintf("%.2f", r.Min+(r.Max-r.Min)*frac)
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelSample     = "0.00"
	axisSeparator       = " │ "
	sharedNote          = "Shared scale %.2f to %.2f."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// PlotSeries renders every series as a braille line against the same
// vertical range, so probabilities stay comparable. NaN values leave gaps.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, r Range, forceColor bool) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	r = r.widen()

	grid := newPlotGrid(len(series), width, height)
	for i, s := range series {
		grid.trace(i, resampleSeries(s.Values, width), r)
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, sharedNote+"\n", r.Min, r.Max); err != nil {
		return err
	}
	useColor := shouldUseColor(w, forceColor)
	labels := rangeLabels(height, r)
	labelWidth := runewidth.StringWidth(axisLabelSample)
	for _, label := range labels {
		if n := runewidth.StringWidth(label); n > labelWidth {
			labelWidth = n
		}
	}
	for y := 0; y < height; y++ {
		line := fmt.Sprintf("%*s%s%s", labelWidth, labels[y], axisSeparator, grid.row(y, useColor))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// plotGrid holds one braille cell layer per series so overlapping lines keep
// the colour of the first series drawn in a cell.
type plotGrid struct {
	layers [][][]uint8
	width  int
	height int
}

func newPlotGrid(n, width, height int) *plotGrid {
	g := &plotGrid{layers: make([][][]uint8, n), width: width, height: height}
	for i := range g.layers {
		g.layers[i] = make([][]uint8, height)
		for y := range g.layers[i] {
			g.layers[i][y] = make([]uint8, width)
		}
	}
	return g
}

func (g *plotGrid) trace(layer int, values []float64, r Range) {
	style := lineStyles[layer%len(lineStyles)]
	dots := g.height * 4
	prevX, prevY := -1, -1
	for x, v := range values {
		if math.IsNaN(v) {
			prevX, prevY = -1, -1
			continue
		}
		px, py := x*2, valueToRow(v, r.Min, r.Max, dots)
		if prevX < 0 {
			if style.shouldPlot(px) {
				g.set(layer, px, py)
			}
		} else {
			surface.Bresenham(prevX, prevY, px, py, func(dx, dy int) {
				if style.shouldPlot(dx) {
					g.set(layer, dx, dy)
				}
			})
		}
		prevX, prevY = px, py
	}
}

func (g *plotGrid) set(layer, x, y int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= g.width || cy >= g.height {
		return
	}
	g.layers[layer][cy][cx] |= surface.DotMask(x%2, y%4)
}

func (g *plotGrid) row(y int, useColor bool) string {
	var b strings.Builder
	for x := 0; x < g.width; x++ {
		var mask uint8
		owner := -1
		for i, layer := range g.layers {
			if m := layer[y][x]; m != 0 {
				if owner < 0 {
					owner = i
				}
				mask |= m
			}
		}
		ch := surface.BrailleRune(mask)
		if useColor && owner >= 0 {
			b.WriteString(colorPalette[owner%len(colorPalette)])
			b.WriteRune(ch)
			b.WriteString(colorReset)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := runewidth.StringWidth(axisLabelSample) + runewidth.StringWidth(axisSeparator)
	if plotWidth := totalWidth - axisWidth; plotWidth > minPlotWidth {
		return plotWidth
	}
	return minPlotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// rangeLabels marks the top, middle and bottom rows with their values.
func rangeLabels(height int, r Range) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = r.label(1)
	if height > 2 {
		labels[height/2] = r.label(0.5)
	}
	if height > 1 {
		labels[height-1] = r.label(0)
	}
	return labels
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// resampleSeries stretches or averages values onto width columns. NaN
// propagates into every column it touches.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case width == 1 || len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(width-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

// valueToRow maps v onto a dot row, 0 at the top; values outside r clamp.
func valueToRow(v, minVal, maxVal float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(dots-1)))
	if row < 0 {
		return 0
	}
	if row >= dots {
		return dots - 1
	}
	return row
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := surface.BrailleRune(surface.DotMask(0, 0))
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, lineStyles[i%len(lineStyles)].name)
		if useColor {
			label = colorPalette[i%len(colorPalette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}
