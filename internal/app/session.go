// Package app owns the two curves and turns external events into explicit
// method calls against them.
package app

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/hypoviz/internal/curve"
	"github.com/verte-zerg/hypoviz/internal/logging"
	"github.com/verte-zerg/hypoviz/internal/model"
	"github.com/verte-zerg/hypoviz/internal/render"
	"github.com/verte-zerg/hypoviz/internal/surface"
)

const (
	typeILabel = "Type 1 error="
	powerLabel = "Power="
)

// Layout describes the surface the session draws onto.
type Layout struct {
	Width  float64
	Height float64
	// Border is reserved under each curve for the axis and its labels.
	Border float64
	// Grain rounds the band split down to a multiple of this many pixels.
	Grain float64
}

// Themes pairs the styles of the reference and alternative curves.
type Themes struct {
	Null render.Theme
	Alt  render.Theme
}

// TerminalThemes returns the dark-terminal styles.
func TerminalThemes() Themes {
	return Themes{Null: render.TerminalTheme(render.RoleNull), Alt: render.TerminalTheme(render.RoleAlt)}
}

// RasterThemes returns the white-background image styles.
func RasterThemes() Themes {
	return Themes{Null: render.RasterTheme(render.RoleNull), Alt: render.RasterTheme(render.RoleAlt)}
}

// Session is the application context: the reference curve in the top band,
// the alternative curve in the bottom band, and pointer drag state.
type Session struct {
	Null *curve.Curve
	Alt  *curve.Curve

	layout Layout
	themes Themes
	log    *logrus.Logger

	pressed bool
	lastX   float64
}

// NewSession creates both curves from params.
func NewSession(layout Layout, themes Themes, params model.Params, log *logrus.Logger) (*Session, error) {
	if log == nil {
		log = logging.Discard()
	}
	top, bottom := bands(layout)
	s := &Session{
		Null:   curve.New(top, true),
		Alt:    curve.New(bottom, params.ShowAlt),
		layout: layout,
		themes: themes,
		log:    log,
	}
	s.Null.OutsideLabel = typeILabel
	s.Alt.OutsideLabel = powerLabel
	if err := s.SetStdDevValue(params.StdDev); err != nil {
		return nil, err
	}
	if err := s.SetAlphaValue(params.Alpha); err != nil {
		return nil, err
	}
	if err := s.Null.SetMean(params.NullMean); err != nil {
		return nil, fmt.Errorf("null mean: %w", err)
	}
	if err := s.Alt.SetMean(params.AltMean); err != nil {
		return nil, fmt.Errorf("alternative mean: %w", err)
	}
	s.Null.ShowOutside = params.ShowTypeI
	s.Null.ShowLabels = params.ShowLabels
	s.Alt.ShowInside = params.ShowTypeII
	s.Alt.ShowOutside = params.ShowPower
	return s, nil
}

// Layout returns the current surface layout.
func (s *Session) Layout() Layout {
	return s.layout
}

// Resize moves both curves to new bands of a resized surface.
func (s *Session) Resize(layout Layout) {
	s.layout = layout
	top, bottom := bands(layout)
	s.Null.SetRegion(top)
	s.Alt.SetRegion(bottom)
	s.pressed = false
}

// SetStdDev parses text and applies it to both curves. On error neither changes.
func (s *Session) SetStdDev(text string) error {
	if err := s.Null.SetStdDev(text); err != nil {
		s.log.WithError(err).Warn("rejected stddev")
		return err
	}
	return s.syncStdDev()
}

// SetStdDevValue applies a standard deviation to both curves.
func (s *Session) SetStdDevValue(v float64) error {
	if err := s.Null.SetStdDevValue(v); err != nil {
		s.log.WithError(err).Warn("rejected stddev")
		return fmt.Errorf("stddev %v: %w", v, err)
	}
	return s.syncStdDev()
}

func (s *Session) syncStdDev() error {
	if err := s.Alt.SetStdDevValue(s.Null.StdDev()); err != nil {
		return err
	}
	s.log.WithField("stddev", s.Null.StdDev()).Debug("stddev updated")
	return nil
}

// SetAlpha parses text and applies it to both curves. On error neither changes.
func (s *Session) SetAlpha(text string) error {
	if err := s.Null.SetAlpha(text); err != nil {
		s.log.WithError(err).Warn("rejected alpha")
		return err
	}
	return s.syncAlpha()
}

// SetAlphaValue applies a significance level to both curves.
func (s *Session) SetAlphaValue(v float64) error {
	if err := s.Null.SetAlphaValue(v); err != nil {
		s.log.WithError(err).Warn("rejected alpha")
		return fmt.Errorf("alpha %v: %w", v, err)
	}
	return s.syncAlpha()
}

func (s *Session) syncAlpha() error {
	if err := s.Alt.SetAlphaValue(s.Null.Alpha()); err != nil {
		return err
	}
	entry := s.log.WithField("alpha", s.Null.Alpha())
	if s.Null.Degenerate() {
		entry.Warn("alpha outside (0,1); boundaries are degenerate")
	} else {
		entry.Debug("alpha updated")
	}
	return nil
}

// SetAltVisible shows or hides the alternative curve.
func (s *Session) SetAltVisible(v bool) {
	s.Alt.Visible = v
	if !v {
		s.pressed = false
	}
}

// SetTypeIShading toggles shading of the reference curve beyond the markers.
func (s *Session) SetTypeIShading(v bool) {
	s.Null.ShowOutside = v
}

// SetTypeIIShading toggles shading of the alternative curve between the markers.
func (s *Session) SetTypeIIShading(v bool) {
	s.Alt.ShowInside = v
}

// SetPowerShading toggles shading of the alternative curve beyond the markers.
func (s *Session) SetPowerShading(v bool) {
	s.Alt.ShowOutside = v
}

// SetAxisLabels toggles the reference axis labels.
func (s *Session) SetAxisLabels(v bool) {
	s.Null.ShowLabels = v
}

// Press starts a drag at surface x.
func (s *Session) Press(x float64) {
	s.pressed = true
	s.lastX = x
}

// Move shifts the alternative curve by the pointer displacement while pressed.
// It reports whether anything changed.
func (s *Session) Move(x float64) bool {
	if !s.pressed {
		return false
	}
	delta := x - s.lastX
	s.lastX = x
	if delta == 0 || !s.Alt.Visible {
		return false
	}
	s.Alt.ShiftMean(delta)
	return true
}

// Release ends a drag.
func (s *Session) Release() {
	s.pressed = false
}

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool {
	return s.pressed
}

// ShiftAlt nudges the alternative curve by a pixel displacement.
func (s *Session) ShiftAlt(deltaPixels float64) {
	s.Alt.ShiftMean(deltaPixels)
}

// Draw repaints both bands.
func (s *Session) Draw(surf surface.Surface) {
	render.DrawCurve(surf, s.Null, s.themes.Null)
	render.DrawCurve(surf, s.Alt, s.themes.Alt)
}

// Metrics returns the current error rates. Type I error is the reference
// curve's mass beyond its own markers.
func (s *Session) Metrics() model.Metrics {
	return model.Metrics{
		BoundaryOffset: s.Null.BoundaryOffset(),
		TypeI:          s.Null.Power(),
		TypeII:         s.Alt.TypeIIError(),
		Power:          s.Alt.Power(),
		Degenerate:     s.Null.Degenerate(),
	}
}

// Params snapshots the current parameters and toggles.
func (s *Session) Params() model.Params {
	return model.Params{
		StdDev:     s.Null.StdDev(),
		Alpha:      s.Null.Alpha(),
		NullMean:   s.Null.Mean(),
		AltMean:    s.Alt.Mean(),
		ShowAlt:    s.Alt.Visible,
		ShowTypeI:  s.Null.ShowOutside,
		ShowTypeII: s.Alt.ShowInside,
		ShowPower:  s.Alt.ShowOutside,
		ShowLabels: s.Null.ShowLabels,
	}
}

// Snapshot captures the scenario for storage.
func (s *Session) Snapshot(note string) model.Snapshot {
	m := s.Metrics()
	return model.Snapshot{
		StdDev:   s.Null.StdDev(),
		Alpha:    s.Null.Alpha(),
		NullMean: s.Null.Mean(),
		AltMean:  s.Alt.Mean(),
		TypeI:    m.TypeI,
		TypeII:   m.TypeII,
		Power:    m.Power,
		Note:     note,
	}
}

func bands(l Layout) (top, bottom curve.Region) {
	half := l.Height / 2
	if l.Grain > 0 {
		half = math.Floor(half/l.Grain) * l.Grain
	}
	top = curve.Region{Left: 0, Width: l.Width, Bottom: half, Height: half, Border: l.Border}
	bottom = curve.Region{Left: 0, Width: l.Width, Bottom: 2 * half, Height: half, Border: l.Border}
	return top, bottom
}
