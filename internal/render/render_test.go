package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/hypoviz/internal/curve"
	"github.com/verte-zerg/hypoviz/internal/surface"
)

func newCanvasCurve(visible bool) (*surface.Canvas, *curve.Curve) {
	canvas := surface.NewCanvas(80, 12)
	w, h := canvas.Size()
	c := curve.New(curve.Region{Left: 0, Width: float64(w), Bottom: float64(h), Height: float64(h), Border: 12}, visible)
	return canvas, c
}

func TestDrawCurveIdempotent(t *testing.T) {
	canvas, c := newCanvasCurve(true)
	c.ShowInside = true
	c.ShowOutside = true
	c.ShowLabels = true
	c.OutsideLabel = "Power="
	c.ShiftMean(60)
	th := TerminalTheme(RoleAlt)

	DrawCurve(canvas, c, th)
	first := canvas.String()
	DrawCurve(canvas, c, th)
	if second := canvas.String(); first != second {
		t.Fatalf("redraw changed output")
	}
}

func TestDrawCurveRasterIdempotent(t *testing.T) {
	r, err := surface.NewRaster(300, 150)
	if err != nil {
		t.Fatalf("new raster: %v", err)
	}
	c := curve.New(curve.Region{Width: 300, Bottom: 150, Height: 150, Border: 30}, true)
	c.ShowOutside = true
	c.OutsideLabel = "Type 1 error="
	th := RasterTheme(RoleNull)

	DrawCurve(r, c, th)
	var first bytes.Buffer
	if err := r.EncodePNG(&first); err != nil {
		t.Fatalf("encode: %v", err)
	}
	DrawCurve(r, c, th)
	var second bytes.Buffer
	if err := r.EncodePNG(&second); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatalf("raster redraw changed pixels")
	}
}

func TestDrawHiddenCurveClearsBand(t *testing.T) {
	canvas, c := newCanvasCurve(true)
	DrawCurve(canvas, c, TerminalTheme(RoleNull))
	if strings.TrimSpace(canvas.Plain()) == "" {
		t.Fatalf("expected visible curve to draw")
	}
	c.Visible = false
	DrawCurve(canvas, c, TerminalTheme(RoleNull))
	if strings.TrimSpace(canvas.Plain()) != "" {
		t.Fatalf("expected hidden curve band to be blank, got:\n%s", canvas.Plain())
	}
}

func TestDrawCurveCaptions(t *testing.T) {
	canvas, c := newCanvasCurve(true)
	c.ShowInside = true
	c.ShowOutside = true
	c.ShowLabels = true
	c.OutsideLabel = "Power="
	DrawCurve(canvas, c, TerminalTheme(RoleAlt))
	out := canvas.Plain()
	for _, want := range []string{"Mean = 0.00", "Type 2 error = 0.95", "Power=0.05", "standard deviations", "0.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCaptionsHiddenWithoutShading(t *testing.T) {
	canvas, c := newCanvasCurve(true)
	c.OutsideLabel = "Power="
	DrawCurve(canvas, c, TerminalTheme(RoleAlt))
	out := canvas.Plain()
	if strings.Contains(out, "Type 2 error") || strings.Contains(out, "Power=") {
		t.Fatalf("unexpected shading captions:\n%s", out)
	}
}

func TestDegenerateAlphaDoesNotPanic(t *testing.T) {
	canvas, c := newCanvasCurve(true)
	c.ShowInside = true
	c.ShowOutside = true
	for _, a := range []string{"0", "1", "1.5", "4", "-2"} {
		if err := c.SetAlpha(a); err != nil {
			t.Fatalf("alpha %s rejected: %v", a, err)
		}
		DrawCurve(canvas, c, TerminalTheme(RoleAlt))
	}
	if !strings.Contains(canvas.Plain(), "n/a") {
		t.Fatalf("expected n/a caption for undefined boundary")
	}
}

func TestSamplesFollowCurve(t *testing.T) {
	_, c := newCanvasCurve(true)
	pts := Samples(c)
	if len(pts) == 0 {
		t.Fatalf("expected sample points")
	}
	minY := math.Inf(1)
	peakX := 0.0
	for _, p := range pts {
		if p[1] < minY {
			minY = p[1]
			peakX = p[0]
		}
	}
	if math.Abs(peakX-c.CentreX()) > 1 {
		t.Fatalf("expected peak near centre %v, got %v", c.CentreX(), peakX)
	}
	if math.Abs(minY-c.PixelY(c.PeakDensity())) > 1e-6 {
		t.Fatalf("expected peak height %v, got %v", c.PixelY(c.PeakDensity()), minY)
	}
}

func TestFormatProbability(t *testing.T) {
	if got := FormatProbability(0.123); got != "0.12" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := FormatProbability(math.NaN()); got != "n/a" {
		t.Fatalf("expected n/a, got %q", got)
	}
}
