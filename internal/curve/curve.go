// Package curve models a single Normal distribution plotted on a surface band.
package curve

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultMean is the centre of a freshly created curve.
	DefaultMean = 0.0
	// DefaultStdDev is the standard deviation of a freshly created curve.
	DefaultStdDev = 1.0
	// DefaultAlpha is the significance level of a freshly created curve.
	DefaultAlpha = 0.05

	// DragSensitivity converts surface pixels into distribution units.
	DragSensitivity = 0.01

	// domainHalfWidth is the plotted half-domain in standard deviations.
	domainHalfWidth = 10.0
	// stepUnits is the number of distribution units spread over the band width.
	stepUnits = 10.0
)

var (
	// ErrNotNumeric is returned when an input cannot be parsed as a number.
	ErrNotNumeric = errors.New("value is not a number")
	// ErrNotFinite is returned for NaN or infinite inputs.
	ErrNotFinite = errors.New("value is not finite")
	// ErrNonPositiveStdDev is returned when a standard deviation is <= 0.
	ErrNonPositiveStdDev = errors.New("standard deviation must be > 0")
)

// Region is the band of a surface owned by one curve, in surface pixels.
type Region struct {
	Left   float64
	Width  float64
	Bottom float64
	Height float64
	// Border is the space kept free above Bottom for the x-axis and labels.
	Border float64
}

// Top returns the y coordinate of the upper edge of the band.
func (r Region) Top() float64 {
	return r.Bottom - r.Height
}

// Curve holds the parameters of one Normal distribution and its plot geometry.
type Curve struct {
	region Region

	mean           float64
	stddev         float64
	alpha          float64
	boundaryOffset float64
	step           float64

	Visible     bool
	ShowInside  bool
	ShowOutside bool
	ShowLabels  bool
	// OutsideLabel prefixes the probability mass printed outside the markers.
	OutsideLabel string
}

// New returns a curve with default parameters drawn into region.
func New(region Region, visible bool) *Curve {
	c := &Curve{
		region:  region,
		mean:    DefaultMean,
		stddev:  DefaultStdDev,
		Visible: visible,
	}
	c.updateStdVars()
	c.updateAlpha(DefaultAlpha)
	return c
}

// Region returns the band owned by the curve.
func (c *Curve) Region() Region {
	return c.region
}

// SetRegion moves the curve to a new band, keeping its statistical state.
func (c *Curve) SetRegion(region Region) {
	c.region = region
	c.updateStdVars()
}

// Mean returns the distribution centre.
func (c *Curve) Mean() float64 {
	return c.mean
}

// SetMean places the distribution centre directly.
func (c *Curve) SetMean(mean float64) error {
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return ErrNotFinite
	}
	c.mean = mean
	return nil
}

// StdDev returns the standard deviation.
func (c *Curve) StdDev() float64 {
	return c.stddev
}

// Alpha returns the significance level.
func (c *Curve) Alpha() float64 {
	return c.alpha
}

// BoundaryOffset returns the two-tailed critical value in standard units.
func (c *Curve) BoundaryOffset() float64 {
	return c.boundaryOffset
}

// Degenerate reports whether alpha lies outside (0,1).
func (c *Curve) Degenerate() bool {
	return c.alpha <= 0 || c.alpha >= 1
}

// SetStdDev parses text and applies it as the new standard deviation.
func (c *Curve) SetStdDev(text string) error {
	v, err := parseFinite(text)
	if err == nil {
		err = c.SetStdDevValue(v)
	}
	if err != nil {
		return fmt.Errorf("stddev %q: %w", strings.TrimSpace(text), err)
	}
	return nil
}

// SetStdDevValue applies a standard deviation. Invalid values leave the curve unchanged.
func (c *Curve) SetStdDevValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNotFinite
	}
	if v <= 0 {
		return ErrNonPositiveStdDev
	}
	c.stddev = v
	c.updateStdVars()
	return nil
}

// SetAlpha parses text and applies it as the new significance level.
func (c *Curve) SetAlpha(text string) error {
	v, err := parseFinite(text)
	if err == nil {
		err = c.SetAlphaValue(v)
	}
	if err != nil {
		return fmt.Errorf("alpha %q: %w", strings.TrimSpace(text), err)
	}
	return nil
}

// SetAlphaValue applies a significance level. Values outside (0,1) are
// accepted; see Degenerate.
func (c *Curve) SetAlphaValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNotFinite
	}
	c.updateAlpha(v)
	return nil
}

// ShiftMean moves a visible curve by a pointer displacement in pixels.
func (c *Curve) ShiftMean(deltaPixels float64) {
	if !c.Visible {
		return
	}
	c.mean += deltaPixels * DragSensitivity
}

// Domain returns the plotted range of distribution values.
func (c *Curve) Domain() (xMin, xMax float64) {
	return c.mean - domainHalfWidth*c.stddev, c.mean + domainHalfWidth*c.stddev
}

// Step returns the distribution units covered by one horizontal pixel.
func (c *Curve) Step() float64 {
	return c.step
}

// DensityAt evaluates the Normal probability density at x.
func (c *Curve) DensityAt(x float64) float64 {
	z := (x - c.mean) / c.stddev
	return c.PeakDensity() * math.Exp(-0.5*z*z)
}

// PeakDensity returns the density at the mean.
func (c *Curve) PeakDensity() float64 {
	return 1 / (c.stddev * math.Sqrt(2*math.Pi))
}

// LowerTailProbability returns the mass of this curve left of the lower marker.
func (c *Curve) LowerTailProbability() float64 {
	return c.dist().CDF(-c.boundaryOffset * c.stddev)
}

// UpperTailProbability returns the mass of this curve left of the upper marker.
func (c *Curve) UpperTailProbability() float64 {
	return c.dist().CDF(c.boundaryOffset * c.stddev)
}

// TypeIIError is the mass between the markers.
func (c *Curve) TypeIIError() float64 {
	return c.UpperTailProbability() - c.LowerTailProbability()
}

// Power is the mass outside the markers.
func (c *Curve) Power() float64 {
	return (1 - c.UpperTailProbability()) + c.LowerTailProbability()
}

// CentreX returns the pixel x of distribution value zero.
func (c *Curve) CentreX() float64 {
	return c.region.Left + c.region.Width/2
}

// AxisY returns the pixel y of the x-axis.
func (c *Curve) AxisY() float64 {
	return c.region.Bottom - c.region.Border
}

// PixelX maps a distribution value to a pixel x.
func (c *Curve) PixelX(x float64) float64 {
	return c.CentreX() + x/c.step
}

// YScale returns the vertical scale that maps the peak density onto the
// usable band height.
func (c *Curve) YScale() float64 {
	return (c.region.Height - c.region.Border - 1) / c.PeakDensity()
}

// PixelY maps a density value to a pixel y.
func (c *Curve) PixelY(density float64) float64 {
	return c.AxisY() - c.YScale()*density
}

// BoundaryPixels returns the pixel x of the lower and upper markers.
func (c *Curve) BoundaryPixels() (lower, upper float64) {
	d := c.boundaryOffset * c.stddev / c.step
	return c.CentreX() - d, c.CentreX() + d
}

func (c *Curve) updateStdVars() {
	width := c.region.Width
	if width <= 0 {
		width = 1
	}
	c.step = stepUnits / width
}

func (c *Curve) updateAlpha(alpha float64) {
	c.alpha = alpha
	c.boundaryOffset = criticalValue(alpha)
}

func (c *Curve) dist() distuv.Normal {
	return distuv.Normal{Mu: c.mean, Sigma: c.stddev}
}

// criticalValue returns the standard-normal quantile at 1 - alpha/2, or NaN
// when that probability lies outside [0,1].
func criticalValue(alpha float64) float64 {
	p := 1 - alpha/2
	if p < 0 || p > 1 {
		return math.NaN()
	}
	return distuv.UnitNormal.Quantile(p)
}

func parseFinite(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, ErrNotFinite
		}
		return 0, ErrNotNumeric
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}
