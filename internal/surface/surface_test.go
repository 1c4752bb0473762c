package surface

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestCanvasSizeInDots(t *testing.T) {
	c := NewCanvas(10, 3)
	w, h := c.Size()
	if w != 20 || h != 12 {
		t.Fatalf("expected 20x12 dots, got %dx%d", w, h)
	}
}

func TestCanvasLineSetsBraille(t *testing.T) {
	c := NewCanvas(4, 1)
	c.Line(0, 0, 7, 0, Style{Color: "#000000"})
	lines := strings.Split(c.Plain(), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	want := strings.Repeat(string(BrailleRune(0x01|0x08)), 4)
	if lines[0] != want {
		t.Fatalf("expected %q, got %q", want, lines[0])
	}
}

func TestCanvasDashedLineSkipsDots(t *testing.T) {
	solid := NewCanvas(8, 1)
	solid.Line(0, 3, 15, 3, Style{Color: "#000000"})
	dashed := NewCanvas(8, 1)
	dashed.Line(0, 3, 15, 3, Style{Color: "#000000", Dash: []int{2, 2}})
	if solid.Plain() == dashed.Plain() {
		t.Fatalf("dashed line rendered like a solid line")
	}
	if strings.TrimSpace(dashed.Plain()) == "" {
		t.Fatalf("dashed line rendered nothing")
	}
}

func TestCanvasLineClipsOffSurface(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Line(-1e9, 4, 1e9, 4, Style{Color: "#000000"})
	if strings.TrimSpace(c.Plain()) == "" {
		t.Fatalf("expected clipped line to remain visible")
	}
	c.Line(-10, -10, -5, -5, Style{Color: "#000000"})
}

func TestCanvasTextCentered(t *testing.T) {
	c := NewCanvas(11, 1)
	c.Text(11, 0, "abc", TextStyle{Align: AlignCenter})
	if got := c.Plain(); got != "    abc    " {
		t.Fatalf("unexpected text placement %q", got)
	}
}

func TestCanvasClearResetsRegion(t *testing.T) {
	c := NewCanvas(4, 2)
	c.FillRect(Rect{X: 0, Y: 0, W: 8, H: 8}, Style{Color: "#FF0000"})
	c.Line(0, 0, 7, 7, Style{Color: "#000000"})
	c.Clear(Rect{X: 0, Y: 0, W: 8, H: 4})
	lines := strings.Split(c.Plain(), "\n")
	if lines[0] != "    " {
		t.Fatalf("expected first row cleared, got %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected second row untouched")
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#3366ff")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != (color.RGBA{0x33, 0x66, 0xff, 0xff}) {
		t.Fatalf("unexpected colour %+v", c)
	}
	short, err := ParseColor("#abc")
	if err != nil {
		t.Fatalf("parse short: %v", err)
	}
	if short != (color.RGBA{0xaa, 0xbb, 0xcc, 0xff}) {
		t.Fatalf("unexpected short colour %+v", short)
	}
	if _, err := ParseColor("blue"); err == nil {
		t.Fatalf("expected error for named colour")
	}
}

func TestRasterFillBlends(t *testing.T) {
	r, err := NewRaster(10, 10)
	if err != nil {
		t.Fatalf("new raster: %v", err)
	}
	r.FillRect(Rect{X: 0, Y: 0, W: 5, H: 5}, Style{Color: "#0000FF", Opacity: 0.5})
	got := r.Image().RGBAAt(1, 1)
	if got.B != 255 || got.R != 128 || got.G != 128 {
		t.Fatalf("unexpected blended pixel %+v", got)
	}
	if r.Image().RGBAAt(8, 8) != rasterBackground {
		t.Fatalf("fill leaked outside rectangle")
	}
}

func TestRasterEncodesPNG(t *testing.T) {
	r, err := NewRaster(40, 20)
	if err != nil {
		t.Fatalf("new raster: %v", err)
	}
	r.Line(0, 10, 39, 10, Style{Color: "#000000", Width: 2})
	r.Text(20, 2, "Mean", TextStyle{Color: "#000000"})
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestNewRasterRejectsEmpty(t *testing.T) {
	if _, err := NewRaster(0, 10); err == nil {
		t.Fatalf("expected error for zero width")
	}
}
