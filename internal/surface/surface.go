// Package surface provides drawing surfaces with explicit per-call styles.
package surface

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Align controls horizontal text placement relative to the anchor point.
type Align int

const (
	// AlignCenter centres text on the anchor.
	AlignCenter Align = iota
	// AlignLeft starts text at the anchor.
	AlignLeft
)

// Rect is an axis-aligned rectangle in surface pixels.
type Rect struct {
	X, Y, W, H float64
}

// Style describes how a line or fill is painted.
type Style struct {
	// Color is a #RRGGBB hex string.
	Color string
	// Opacity in [0,1]; zero means fully opaque.
	Opacity float64
	// Width is the stroke width in pixels; zero means 1.
	Width float64
	// Dash alternates on/off lengths in pixels; empty means solid.
	Dash []int
}

// TextStyle describes how text is painted. Text is anchored at its top edge.
type TextStyle struct {
	Color string
	Align Align
}

// Surface is a paintable region. Implementations hold no pen state between calls.
type Surface interface {
	Size() (width, height int)
	Clear(r Rect)
	Line(x0, y0, x1, y1 float64, st Style)
	FillRect(r Rect, st Style)
	Text(x, y float64, s string, st TextStyle)
}

// ParseColor converts a #RRGGBB or #RGB string into an opaque RGBA colour.
func ParseColor(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func (st Style) width() float64 {
	if st.Width <= 0 {
		return 1
	}
	return st.Width
}

func (st Style) opacity() float64 {
	if st.Opacity <= 0 || st.Opacity > 1 {
		return 1
	}
	return st.Opacity
}

// dashOn reports whether the i-th pixel along a stroke is painted.
func (st Style) dashOn(i int) bool {
	if len(st.Dash) == 0 {
		return true
	}
	period := 0
	for _, d := range st.Dash {
		period += d
	}
	if period <= 0 {
		return true
	}
	if i < 0 {
		i = -i
	}
	pos := i % period
	for k, d := range st.Dash {
		if pos < d {
			return k%2 == 0
		}
		pos -= d
	}
	return true
}

// Bresenham walks the integer points of a line segment.
func Bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := y1 - y0
	if dy > 0 {
		dy = -dy
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

// clipSegment clips a segment to [0,w]x[0,h] (Liang-Barsky). ok is false when
// nothing of the segment remains.
func clipSegment(x0, y0, x1, y1, w, h float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x1-x0, y1-y0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, w - x0},
		{-dy, y0},
		{dy, h - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
