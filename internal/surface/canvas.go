package surface

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	dotsPerCellX = 2
	dotsPerCellY = 4
)

type cell struct {
	mask uint8
	fg   string
	bg   string
	text rune
	// cont marks the trailing column of a wide text rune.
	cont bool
}

// Canvas is a terminal surface where each cell holds a 2x4 braille dot grid.
// Lines set dots, fills set cell backgrounds and text replaces the cell glyph.
type Canvas struct {
	cols  int
	rows  int
	cells [][]cell
}

// NewCanvas allocates a canvas of cols x rows terminal cells.
func NewCanvas(cols, rows int) *Canvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cells := make([][]cell, rows)
	for y := range cells {
		cells[y] = make([]cell, cols)
	}
	return &Canvas{cols: cols, rows: rows, cells: cells}
}

// Size returns the canvas size in dots.
func (c *Canvas) Size() (int, int) {
	return c.cols * dotsPerCellX, c.rows * dotsPerCellY
}

// Cells returns the canvas size in terminal cells.
func (c *Canvas) Cells() (cols, rows int) {
	return c.cols, c.rows
}

// Clear resets every cell overlapping r.
func (c *Canvas) Clear(r Rect) {
	c.eachCell(r, func(cl *cell) {
		*cl = cell{}
	})
}

// Line sets the dots along a segment.
func (c *Canvas) Line(x0, y0, x1, y1 float64, st Style) {
	if !finite(x0, y0, x1, y1) {
		return
	}
	w, h := c.Size()
	x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1, float64(w-1), float64(h-1))
	if !ok {
		return
	}
	i := 0
	Bresenham(round(x0), round(y0), round(x1), round(y1), func(x, y int) {
		if st.dashOn(i) {
			c.setDot(x, y, st.Color)
		}
		i++
	})
}

// FillRect paints the background of cells whose column span overlaps r and
// whose vertical centre lies inside it.
func (c *Canvas) FillRect(r Rect, st Style) {
	if !finite(r.X, r.Y, r.W, r.H) || r.W <= 0 || r.H <= 0 {
		return
	}
	for cy := 0; cy < c.rows; cy++ {
		mid := float64(cy*dotsPerCellY) + dotsPerCellY/2
		if mid < r.Y || mid >= r.Y+r.H {
			continue
		}
		for cx := 0; cx < c.cols; cx++ {
			left := float64(cx * dotsPerCellX)
			if left+dotsPerCellX <= r.X || left >= r.X+r.W {
				continue
			}
			c.cells[cy][cx].bg = st.Color
		}
	}
}

// Text writes s on the cell row containing y.
func (c *Canvas) Text(x, y float64, s string, st TextStyle) {
	if !finite(x, y) || s == "" {
		return
	}
	row := int(math.Floor(y / dotsPerCellY))
	if row < 0 || row >= c.rows {
		return
	}
	col := int(math.Floor(x / dotsPerCellX))
	if st.Align == AlignCenter {
		col -= runewidth.StringWidth(s) / 2
	}
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w <= 0 {
			continue
		}
		if col >= 0 && col+w <= c.cols {
			cl := &c.cells[row][col]
			cl.text = r
			cl.fg = st.Color
			cl.cont = false
			for k := 1; k < w; k++ {
				c.cells[row][col+k].text = 0
				c.cells[row][col+k].cont = true
			}
		}
		col += w
	}
}

// Plain renders the canvas without colour.
func (c *Canvas) Plain() string {
	lines := make([]string, c.rows)
	for y := 0; y < c.rows; y++ {
		var b strings.Builder
		for x := 0; x < c.cols; x++ {
			cl := c.cells[y][x]
			if cl.cont {
				continue
			}
			b.WriteRune(cl.glyph())
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// String renders the canvas with lipgloss colours, grouping runs of equal style.
func (c *Canvas) String() string {
	styles := map[[2]string]lipgloss.Style{}
	styleFor := func(fg, bg string) lipgloss.Style {
		key := [2]string{fg, bg}
		if s, ok := styles[key]; ok {
			return s
		}
		s := lipgloss.NewStyle()
		if fg != "" {
			s = s.Foreground(lipgloss.Color(fg))
		}
		if bg != "" {
			s = s.Background(lipgloss.Color(bg))
		}
		styles[key] = s
		return s
	}

	lines := make([]string, c.rows)
	for y := 0; y < c.rows; y++ {
		var line strings.Builder
		var run strings.Builder
		runFg, runBg := "", ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runFg == "" && runBg == "" {
				line.WriteString(run.String())
			} else {
				line.WriteString(styleFor(runFg, runBg).Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < c.cols; x++ {
			cl := c.cells[y][x]
			if cl.cont {
				continue
			}
			fg := cl.fg
			if cl.text == 0 && cl.mask == 0 {
				fg = ""
			}
			if fg != runFg || cl.bg != runBg {
				flush()
				runFg, runBg = fg, cl.bg
			}
			run.WriteRune(cl.glyph())
		}
		flush()
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (cl cell) glyph() rune {
	if cl.text != 0 {
		return cl.text
	}
	if cl.mask == 0 {
		return ' '
	}
	return BrailleRune(cl.mask)
}

func (c *Canvas) setDot(x, y int, color string) {
	if x < 0 || y < 0 {
		return
	}
	cx, cy := x/dotsPerCellX, y/dotsPerCellY
	if cx >= c.cols || cy >= c.rows {
		return
	}
	cl := &c.cells[cy][cx]
	cl.mask |= DotMask(x%dotsPerCellX, y%dotsPerCellY)
	if cl.text == 0 {
		cl.fg = color
	}
}

func (c *Canvas) eachCell(r Rect, fn func(*cell)) {
	if !finite(r.X, r.Y, r.W, r.H) || r.W <= 0 || r.H <= 0 {
		return
	}
	x0 := clampInt(int(math.Floor(r.X/dotsPerCellX)), 0, c.cols)
	x1 := clampInt(int(math.Ceil((r.X+r.W)/dotsPerCellX)), 0, c.cols)
	y0 := clampInt(int(math.Floor(r.Y/dotsPerCellY)), 0, c.rows)
	y1 := clampInt(int(math.Ceil((r.Y+r.H)/dotsPerCellY)), 0, c.rows)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			fn(&c.cells[y][x])
		}
	}
}

// DotMask returns the braille bit for a dot inside a 2x4 cell.
func DotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

// BrailleRune converts a dot mask into its braille glyph.
func BrailleRune(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

func round(v float64) int {
	return int(math.Round(v))
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
