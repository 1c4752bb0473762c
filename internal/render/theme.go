package render

import "github.com/verte-zerg/hypoviz/internal/surface"

// Role selects the colour scheme of a curve.
type Role int

const (
	// RoleNull is the reference distribution in the upper band.
	RoleNull Role = iota
	// RoleAlt is the alternative distribution in the lower band.
	RoleAlt
)

var dash = []int{5, 3}

// TerminalTheme returns colours suited to a dark terminal. Sizes are in
// braille dots: one text row is four dots tall.
func TerminalTheme(role Role) Theme {
	th := Theme{
		Curve:             surface.Style{Color: "#F0F0F0"},
		Axis:              surface.Style{Color: "#8C8C8C"},
		Boundary:          surface.Style{Color: "#FF4D4F", Dash: []int{2, 2}},
		Inside:            surface.Style{Color: "#1F2A5C"},
		Outside:           surface.Style{Color: "#5C1F1F"},
		Text:              surface.TextStyle{Color: "#C89A3A"},
		Gap:               4,
		OutsideTextOffset: 4,
	}
	if role == RoleAlt {
		th.Outside = surface.Style{Color: "#2F4F4F"}
	}
	return th
}

// RasterTheme returns colours for a white image background. Sizes are in pixels.
func RasterTheme(role Role) Theme {
	th := Theme{
		Curve:             surface.Style{Color: "#000000", Width: 2},
		Axis:              surface.Style{Color: "#000000", Width: 2},
		Boundary:          surface.Style{Color: "#FF0000", Dash: dash},
		Inside:            surface.Style{Color: "#0000FF", Opacity: 0.2},
		Outside:           surface.Style{Color: "#FF0000", Opacity: 0.2},
		Text:              surface.TextStyle{Color: "#000000"},
		Gap:               12,
		OutsideTextOffset: 50,
	}
	if role == RoleAlt {
		th.Outside = surface.Style{Color: "#96C8C8", Opacity: 0.4}
	}
	return th
}
