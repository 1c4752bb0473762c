// Package stats contains power calculations and text reporting.
package stats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/hypoviz/internal/curve"
	"github.com/verte-zerg/hypoviz/internal/model"
)

const (
	sparkChars   = " .:-=+*#%@"
	notAvailable = "n/a"
)

// ErrBadGrid is returned for an empty or inverted shift range.
var ErrBadGrid = errors.New("invalid shift range")

// ShiftGrid returns n evenly spaced mean shifts from lo to hi inclusive.
func ShiftGrid(lo, hi float64, n int) ([]float64, error) {
	if n < 2 || !(hi > lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, ErrBadGrid
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out, nil
}

// PowerCurve evaluates Type II error and power for an alternative centred at
// each shift, against a reference centred at zero.
func PowerCurve(stddev, alpha float64, shifts []float64) ([]model.PowerPoint, error) {
	c := curve.New(curve.Region{Width: 1, Height: 1}, true)
	if err := c.SetStdDevValue(stddev); err != nil {
		return nil, err
	}
	if err := c.SetAlphaValue(alpha); err != nil {
		return nil, err
	}
	points := make([]model.PowerPoint, 0, len(shifts))
	for _, shift := range shifts {
		if err := c.SetMean(shift); err != nil {
			return nil, fmt.Errorf("shift %v: %w", shift, err)
		}
		points = append(points, model.PowerPoint{
			Shift:  shift,
			TypeII: c.TypeIIError(),
			Power:  c.Power(),
		})
	}
	return points, nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.IsInf(minVal, 1) {
		return strings.Repeat(" ", len(values))
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			b.WriteByte(' ')
			continue
		}
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderPowerReport prints a power table and a plot of power and Type II
// error against the mean shift.
func RenderPowerReport(w io.Writer, stddev, alpha float64, points []model.PowerPoint, totalWidth, height int, useColor bool) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, "No shifts to report.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Power analysis (stddev=%g, alpha=%g)\n", stddev, alpha); err != nil {
		return err
	}
	headers := []string{"Shift", "Shift/σ", "Type II", "Power"}
	rows := make([][]string, 0, len(points))
	powers := make([]float64, len(points))
	typeII := make([]float64, len(points))
	for i, p := range points {
		rows = append(rows, []string{
			fmt.Sprintf("%.2f", p.Shift),
			fmt.Sprintf("%.2f", p.Shift/stddev),
			formatProb(p.TypeII),
			formatProb(p.Power),
		})
		powers[i] = p.Power
		typeII[i] = p.TypeII
	}
	if err := writeTable(w, headers, rows, powerRightAlign); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Power: %s\n\n", Sparkline(powers)); err != nil {
		return err
	}

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Power Curve", []Series{
		{Name: "Power", Values: powers},
		{Name: "Type II", Values: typeII},
	}, width, height, Range{Min: 0, Max: 1}, useColor)
}

// RenderSnapshotTable prints saved scenarios, newest first.
func RenderSnapshotTable(w io.Writer, snaps []model.Snapshot) error {
	if len(snaps) == 0 {
		_, err := fmt.Fprintln(w, "No snapshots saved.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Snapshots"); err != nil {
		return err
	}
	if err := writeTable(w, SnapshotHeaders(), SnapshotRows(snaps), snapshotRightAlign); err != nil {
		return err
	}
	// Oldest to newest reads left to right.
	powers := make([]float64, len(snaps))
	for i, s := range snaps {
		powers[len(snaps)-1-i] = s.Power
	}
	if _, err := fmt.Fprintf(w, "Power trend: %s\n", Sparkline(powers)); err != nil {
		return err
	}
	return nil
}

// RenderSimulation prints a Monte Carlo result next to the analytic power and
// plots the running rejection rate.
func RenderSimulation(w io.Writer, res model.SimResult, running []float64, totalWidth, height int, useColor bool) error {
	lines := []string{
		"Simulation",
		fmt.Sprintf("Trials: %d", res.Trials),
		fmt.Sprintf("Rejections: %d", res.Rejections),
		fmt.Sprintf("Empirical power: %s", formatProb(res.EmpiricalPower)),
		fmt.Sprintf("Analytic power: %s", formatProb(res.AnalyticPower)),
		fmt.Sprintf("Sample mean: %s", formatValue(res.SampleMean)),
		fmt.Sprintf("Sample stddev: %s", formatValue(res.SampleStdDev)),
		fmt.Sprintf("Sample median: %s", formatValue(res.SampleMedian)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(running) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	analytic := make([]float64, len(running))
	for i := range analytic {
		analytic[i] = res.AnalyticPower
	}
	return PlotSeries(w, "Rejection Rate", []Series{
		{Name: "Empirical", Values: running},
		{Name: "Analytic", Values: analytic},
	}, width, height, Range{Min: 0, Max: 1}, useColor)
}

func formatProb(p float64) string {
	return formatValue(p)
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return fmt.Sprintf("%.4f", v)
}
