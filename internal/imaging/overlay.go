package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/docscan/internal/geom"
)

// OverlayResult contains a preview image with detected quads drawn on it.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Colors holds the hex colour used for each quad, in input order.
	Colors []string `json:"colors"`
}

// Palette returns n visually distinct colours, evenly spaced in hue.
// The result is deterministic for a given n.
func Palette(n int) []colorful.Color {
	colors := make([]colorful.Color, n)
	for i := range colors {
		colors[i] = colorful.Hsv(float64(i)*360/float64(max(n, 1)), 0.85, 0.95)
	}
	return colors
}

// DrawQuads outlines each quad on a copy of img and marks its corners.
//
// Quads are drawn in their own palette colour. When labels is non-nil,
// labels[i] is printed next to the top-left corner of quads[i] in a 7x13
// bitmap font.
func DrawQuads(img image.Image, quads []geom.Quad, labels []string) (*OverlayResult, error) {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	thickness := max(1, min(bounds.Dx(), bounds.Dy())/300)
	palette := Palette(len(quads))
	hexes := make([]string, len(quads))

	for i, q := range quads {
		r, g, b := palette[i].RGB255()
		c := color.RGBA{r, g, b, 255}
		hexes[i] = palette[i].Hex()

		for k := 0; k < 4; k++ {
			drawLine(result, q[k], q[(k+1)%4], thickness, c)
		}
		for _, p := range q {
			fillSquare(result, int(p.X+0.5), int(p.Y+0.5), 2*thickness+1, c)
		}

		if labels != nil && i < len(labels) {
			tl := q.TopLeft()
			drawLabel(result, int(tl.X)+3*thickness, int(tl.Y)+3*thickness, labels[i],
				color.RGBA{255, 255, 255, 255}, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Colors:      hexes,
	}, nil
}

// drawLine draws a segment with Bresenham's algorithm, stamping a square
// brush of the given half-width at each step.
func drawLine(img *image.RGBA, a, b geom.Point, half int, c color.RGBA) {
	x0, y0 := int(a.X+0.5), int(a.Y+0.5)
	x1, y1 := int(b.X+0.5), int(b.Y+0.5)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		fillSquare(img, x0, y0, half, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// fillSquare paints the (2*half+1)² square centred on (cx, cy), clipped to
// the image.
func fillSquare(img *image.RGBA, cx, cy, half int, c color.RGBA) {
	r := image.Rect(cx-half, cy-half, cx+half+1, cy+half+1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// drawLabel prints text with its top-left corner at (x, y) on a filled
// background box, clipped to the image.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	box := image.Rect(x-1, y-1, x+width+1, y+face.Height+1).Intersect(img.Bounds())
	draw.Draw(img, box, &image.Uniform{bg}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{fg},
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}
