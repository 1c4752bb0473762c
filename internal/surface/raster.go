package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const defaultFontSize = 12

var rasterBackground = color.RGBA{255, 255, 255, 255}

// Raster is an in-memory image surface that can be encoded as PNG.
type Raster struct {
	img  *image.RGBA
	face font.Face
}

// NewRaster allocates a white image of the given size with Go Regular text.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    defaultFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	r := &Raster{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: face,
	}
	r.Clear(Rect{W: float64(width), H: float64(height)})
	return r, nil
}

// Image exposes the underlying image.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Size returns the image size in pixels.
func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear paints the rectangle white.
func (r *Raster) Clear(rect Rect) {
	x0, y0, x1, y1, ok := r.pixelBounds(rect)
	if !ok {
		return
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.img.SetRGBA(x, y, rasterBackground)
		}
	}
}

// Line strokes a segment with a square brush of the style width.
func (r *Raster) Line(x0, y0, x1, y1 float64, st Style) {
	if !finite(x0, y0, x1, y1) {
		return
	}
	c, err := ParseColor(st.Color)
	if err != nil {
		return
	}
	w, h := r.Size()
	x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1, float64(w-1), float64(h-1))
	if !ok {
		return
	}
	half := int(math.Floor(st.width() / 2))
	lo, hi := -half, half
	if int(st.width())%2 == 0 {
		hi--
	}
	alpha := st.opacity()
	i := 0
	Bresenham(round(x0), round(y0), round(x1), round(y1), func(x, y int) {
		if st.dashOn(i) {
			for dy := lo; dy <= hi; dy++ {
				for dx := lo; dx <= hi; dx++ {
					r.blend(x+dx, y+dy, c, alpha)
				}
			}
		}
		i++
	})
}

// FillRect blends the style colour over the rectangle.
func (r *Raster) FillRect(rect Rect, st Style) {
	c, err := ParseColor(st.Color)
	if err != nil {
		return
	}
	x0, y0, x1, y1, ok := r.pixelBounds(rect)
	if !ok {
		return
	}
	alpha := st.opacity()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.blend(x, y, c, alpha)
		}
	}
}

// Text draws s with its top edge at y.
func (r *Raster) Text(x, y float64, s string, st TextStyle) {
	if !finite(x, y) || s == "" {
		return
	}
	c, err := ParseColor(st.Color)
	if err != nil {
		c = color.RGBA{0, 0, 0, 255}
	}
	width := font.MeasureString(r.face, s)
	start := fixed.Int26_6(math.Round(x * 64))
	if st.Align == AlignCenter {
		start -= width / 2
	}
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot: fixed.Point26_6{
			X: start,
			Y: fixed.Int26_6(math.Round(y*64)) + r.face.Metrics().Ascent,
		},
	}
	d.DrawString(s)
}

// EncodePNG writes the image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

func (r *Raster) blend(x, y int, c color.RGBA, alpha float64) {
	if !(image.Point{X: x, Y: y}.In(r.img.Bounds())) {
		return
	}
	if alpha >= 1 {
		r.img.SetRGBA(x, y, c)
		return
	}
	dst := r.img.RGBAAt(x, y)
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(float64(s)*alpha + float64(d)*(1-alpha)))
	}
	r.img.SetRGBA(x, y, color.RGBA{
		R: mix(c.R, dst.R),
		G: mix(c.G, dst.G),
		B: mix(c.B, dst.B),
		A: 0xff,
	})
}

func (r *Raster) pixelBounds(rect Rect) (x0, y0, x1, y1 int, ok bool) {
	if !finite(rect.X, rect.Y, rect.W, rect.H) || rect.W <= 0 || rect.H <= 0 {
		return 0, 0, 0, 0, false
	}
	w, h := r.Size()
	x0 = clampInt(round(rect.X), 0, w)
	x1 = clampInt(round(rect.X+rect.W), 0, w)
	y0 = clampInt(round(rect.Y), 0, h)
	y1 = clampInt(round(rect.Y+rect.H), 0, h)
	return x0, y0, x1, y1, x0 < x1 && y0 < y1
}
