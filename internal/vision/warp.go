package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/docscan/internal/geom"
)

// Homography is a 3×3 projective transform in row-major order with H[8] = 1.
type Homography [9]float64

// Apply maps p through the transform.
func (h Homography) Apply(p geom.Point) geom.Point {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w == 0 {
		w = 1e-12
	}
	return geom.Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}

// SolveHomography returns the transform taking each from[i] to to[i].
//
// The eight unknowns are found from the standard 8×8 linear system. An
// error is returned when the points are degenerate (three collinear
// corners, repeated corners).
func SolveHomography(from, to [4]geom.Point) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := from[i].X, from[i].Y
		u, v := to[i].X, to[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("failed to solve homography: %w", err)
	}

	var out Homography
	for i := 0; i < 8; i++ {
		out[i] = h.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return Homography{}, fmt.Errorf("failed to solve homography: degenerate corners")
		}
	}
	out[8] = 1
	return out, nil
}

// Warp maps quad ([TL, TR, BR, BL]) of img onto a new w×h image whose
// corners are (0,0), (w,0), (w,h), (0,h). Every output pixel is sampled by
// inverse mapping; source samples outside img read as opaque black.
func Warp(img image.Image, quad geom.Quad, w, h int, interp Interpolation) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("warp: invalid output size %dx%d", w, h)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("warp: empty source image")
	}

	fw, fh := float64(w), float64(h)
	rect := [4]geom.Point{{X: 0, Y: 0}, {X: fw, Y: 0}, {X: fw, Y: fh}, {X: 0, Y: fh}}
	inv, err := SolveHomography(rect, quad)
	if err != nil {
		return nil, err
	}

	src := imaging.Clone(img)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	sample := sampleBilinear
	if interp == Cubic {
		sample = sampleBicubic
	}

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			p := inv.Apply(geom.Point{X: float64(x), Y: float64(y)})
			r, g, b := sample(src, p.X, p.Y)
			row[x*4+0] = r
			row[x*4+1] = g
			row[x*4+2] = b
			row[x*4+3] = 255
		}
	}
	return dst, nil
}

// pixel returns the RGB channels at (x, y), or zeros outside the image.
func pixel(img *image.NRGBA, x, y int) (float64, float64, float64) {
	b := img.Bounds()
	if x < 0 || y < 0 || x >= b.Dx() || y >= b.Dy() {
		return 0, 0, 0
	}
	i := y*img.Stride + x*4
	return float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])
}

func sampleBilinear(img *image.NRGBA, fx, fy float64) (uint8, uint8, uint8) {
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	var r, g, b float64
	for j := 0; j < 2; j++ {
		wy := 1 - ty
		if j == 1 {
			wy = ty
		}
		for i := 0; i < 2; i++ {
			wx := 1 - tx
			if i == 1 {
				wx = tx
			}
			pr, pg, pb := pixel(img, ix+i, iy+j)
			r += wx * wy * pr
			g += wx * wy * pg
			b += wx * wy * pb
		}
	}
	return clamp8(r), clamp8(g), clamp8(b)
}

// cubicA is the free parameter of the cubic convolution kernel.
const cubicA = -0.75

func cubicWeight(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t <= 1:
		return ((cubicA+2)*t-(cubicA+3))*t*t + 1
	case t < 2:
		return ((cubicA*t-5*cubicA)*t+8*cubicA)*t - 4*cubicA
	}
	return 0
}

func sampleBicubic(img *image.NRGBA, fx, fy float64) (uint8, uint8, uint8) {
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	var wx, wy [4]float64
	for k := 0; k < 4; k++ {
		wx[k] = cubicWeight(tx - float64(k-1))
		wy[k] = cubicWeight(ty - float64(k-1))
	}

	var r, g, b float64
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			w := wx[i] * wy[j]
			if w == 0 {
				continue
			}
			pr, pg, pb := pixel(img, ix+i-1, iy+j-1)
			r += w * pr
			g += w * pg
			b += w * pb
		}
	}
	return clamp8(r), clamp8(g), clamp8(b)
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
