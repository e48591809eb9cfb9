package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"building-planner/shapes"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	// maxCoord bounds pixel coordinates before integer conversion.
	maxCoord = 1e9
	// textMargin is how far outside the image a label anchor may sit and
	// still be drawn.
	textMargin = 256
)

// DefaultBackground matches the editor canvas.
var DefaultBackground color.Color = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}

// Raster is a Surface backed by an RGBA image. Coordinates are rounded to
// whole pixels; anything outside the image is clipped.
type Raster struct {
	Img        *image.RGBA
	Background color.Color
	Face       font.Face
}

// NewRaster creates a cleared raster of the given size.
func NewRaster(width, height int) *Raster {
	r := &Raster{
		Img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		Background: DefaultBackground,
		Face:       basicfont.Face7x13,
	}
	r.Clear()
	return r
}

func (r *Raster) Clear() {
	bg := r.Background
	if bg == nil {
		bg = colornames.White
	}
	draw.Draw(r.Img, r.Img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

// StrokeLine clips the segment to the image before rasterising it.
func (r *Raster) StrokeLine(a, b shapes.Point, st Stroke) {
	thick := thickness(st)
	a, b, ok := clipSegment(a, b, r.Img.Bounds().Inset(-thick))
	if !ok {
		return
	}
	r.line(px(a.X), px(a.Y), px(b.X), px(b.Y), st.Color, thick)
}

func (r *Raster) StrokeRect(a, b shapes.Point, st Stroke) {
	corners := []shapes.Point{a, shapes.Pt(b.X, a.Y), b, shapes.Pt(a.X, b.Y)}
	r.StrokePath(corners, true, st)
}

func (r *Raster) StrokeCircle(center shapes.Point, radius float64, st Stroke) {
	if !finite(center) || math.IsNaN(radius) {
		return
	}
	cx, cy, rad := px(center.X), px(center.Y), px(radius)
	thick := thickness(st)
	if !ringTouches(r.Img.Bounds(), cx, cy, rad, thick) {
		return
	}
	start := -thick / 2
	for i := 0; i < thick; i++ {
		if rr := rad + start + i; rr >= 0 {
			r.circle(cx, cy, rr, st.Color)
		}
	}
}

func (r *Raster) StrokePath(points []shapes.Point, closed bool, st Stroke) {
	if len(points) == 0 {
		return
	}
	if len(points) == 1 {
		r.dot(px(points[0].X), px(points[0].Y), thickness(st), st.Color)
		return
	}
	for i := 1; i < len(points); i++ {
		r.StrokeLine(points[i-1], points[i], st)
	}
	if closed {
		r.StrokeLine(points[len(points)-1], points[0], st)
	}
}

func (r *Raster) FillSquare(center shapes.Point, size float64, c color.Color) {
	half := size / 2
	rect := image.Rect(
		px(center.X-half), px(center.Y-half),
		px(center.X+half), px(center.Y+half),
	)
	draw.Draw(r.Img, rect.Intersect(r.Img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func (r *Raster) FillText(at shapes.Point, text string, c color.Color) {
	if !finite(at) || !image.Pt(px(at.X), px(at.Y)).In(r.Img.Bounds().Inset(-textMargin)) {
		return
	}
	face := r.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	d := &font.Drawer{
		Dst:  r.Img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(px(at.X), px(at.Y)),
	}
	d.DrawString(text)
}

// EncodePNG writes the raster as a PNG image.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Img)
}

// px rounds v to a pixel coordinate, saturating at ±maxCoord.
func px(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v > maxCoord:
		return maxCoord
	case v < -maxCoord:
		return -maxCoord
	}
	return int(math.Round(v))
}

func finite(p shapes.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// clipSegment cuts a-b down to the part inside rect (Liang-Barsky). It
// reports false when nothing of the segment lies inside.
func clipSegment(a, b shapes.Point, rect image.Rectangle) (shapes.Point, shapes.Point, bool) {
	if !finite(a) || !finite(b) {
		return a, b, false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	if math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return a, b, false
	}

	minX, minY := float64(rect.Min.X), float64(rect.Min.Y)
	maxX, maxY := float64(rect.Max.X), float64(rect.Max.Y)
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, a.X - minX},
		{dx, maxX - a.X},
		{-dy, a.Y - minY},
		{dy, maxY - a.Y},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}

	clamp := func(p shapes.Point) shapes.Point {
		return shapes.Pt(math.Min(math.Max(p.X, minX), maxX), math.Min(math.Max(p.Y, minY), maxY))
	}
	return clamp(shapes.Pt(a.X+t0*dx, a.Y+t0*dy)), clamp(shapes.Pt(a.X+t1*dx, a.Y+t1*dy)), true
}

// ringTouches reports whether a ring of radius rad and the given thickness
// around (cx, cy) crosses rect.
func ringTouches(rect image.Rectangle, cx, cy, rad, thick int) bool {
	fx, fy := float64(cx), float64(cy)
	nx := math.Min(math.Max(fx, float64(rect.Min.X)), float64(rect.Max.X))
	ny := math.Min(math.Max(fy, float64(rect.Min.Y)), float64(rect.Max.Y))
	near := math.Hypot(fx-nx, fy-ny)

	far := 0.0
	for _, x := range []int{rect.Min.X, rect.Max.X} {
		for _, y := range []int{rect.Min.Y, rect.Max.Y} {
			far = math.Max(far, math.Hypot(fx-float64(x), fy-float64(y)))
		}
	}

	reach := float64(thick)
	return float64(rad)+reach >= near && float64(rad)-reach <= far
}

func thickness(st Stroke) int {
	if st.Width < 1 {
		return 1
	}
	return int(math.Round(st.Width))
}

func (r *Raster) set(x, y int, c color.Color) {
	if image.Pt(x, y).In(r.Img.Bounds()) {
		r.Img.Set(x, y, c)
	}
}

// dot paints a thick x thick square brush centred on (x, y).
func (r *Raster) dot(x, y, thick int, c color.Color) {
	lo := -(thick - 1) / 2
	hi := thick / 2
	for dx := lo; dx <= hi; dx++ {
		for dy := lo; dy <= hi; dy++ {
			r.set(x+dx, y+dy, c)
		}
	}
}

// line is Bresenham's algorithm with a square brush.
func (r *Raster) line(x0, y0, x1, y1 int, c color.Color, thick int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		r.dot(x0, y0, thick, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// circle draws a one pixel ring. It scans the image columns and rows the
// ring can cross, so the cost depends on the image size, not the radius.
func (r *Raster) circle(cx, cy, rad int, c color.Color) {
	b := r.Img.Bounds()
	rr := float64(rad) * float64(rad)

	for x := max(b.Min.X, cx-rad); x <= min(b.Max.X-1, cx+rad); x++ {
		d := float64(x - cx)
		dy := int(math.Round(math.Sqrt(rr - d*d)))
		r.set(x, cy+dy, c)
		r.set(x, cy-dy, c)
	}
	for y := max(b.Min.Y, cy-rad); y <= min(b.Max.Y-1, cy+rad); y++ {
		d := float64(y - cy)
		dx := int(math.Round(math.Sqrt(rr - d*d)))
		r.set(cx+dx, y, c)
		r.set(cx-dx, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
