package vision

import (
	"image"

	"github.com/ironsheep/docscan/internal/geom"
)

// Moore neighbourhood, clockwise on screen (y grows downward), starting east.
var (
	neighbourDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	neighbourDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// directionOf returns the neighbourhood index of the unit offset (dx, dy).
func directionOf(dx, dy int) int {
	for d := 0; d < 8; d++ {
		if neighbourDX[d] == dx && neighbourDY[d] == dy {
			return d
		}
	}
	return 0
}

// traceExternalContours finds the outer border of every 8-connected
// foreground component that is reachable from the image frame through
// 4-connected background. Components sitting in a hole of another
// component are skipped. Contours are returned in raster order of their
// first pixel and traced clockwise.
func traceExternalContours(binary *image.Gray) [][]geom.Point {
	bounds := binary.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	fg := func(x, y int) bool {
		return x >= 0 && x < w && y >= 0 && y < h && binary.Pix[y*binary.Stride+x] != 0
	}

	outside := floodOutside(fg, w, h)

	// label components, remembering the first pixel of each
	label := make([]int32, w*h)
	var contours [][]geom.Point
	queue := make([]int, 0, 256)
	next := int32(0)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if label[i] != 0 || !fg(x, y) {
				continue
			}
			next++
			label[i] = next
			external := false

			queue = append(queue[:0], i)
			for len(queue) > 0 {
				j := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				cx, cy := j%w, j/w

				if !external {
					if cx == 0 || cy == 0 || cx == w-1 || cy == h-1 ||
						outside[j-1] || outside[j+1] || outside[j-w] || outside[j+w] {
						external = true
					}
				}

				for d := 0; d < 8; d++ {
					nx, ny := cx+neighbourDX[d], cy+neighbourDY[d]
					if !fg(nx, ny) {
						continue
					}
					k := ny*w + nx
					if label[k] == 0 {
						label[k] = next
						queue = append(queue, k)
					}
				}
			}

			if external {
				contours = append(contours, traceBorder(fg, x, y, w*h))
			}
		}
	}
	return contours
}

// floodOutside marks background pixels 4-connected to the image frame.
func floodOutside(fg func(x, y int) bool, w, h int) []bool {
	outside := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))

	seed := func(x, y int) {
		i := y*w + x
		if !outside[i] && !fg(x, y) {
			outside[i] = true
			queue = append(queue, i)
		}
	}
	for x := 0; x < w; x++ {
		seed(x, 0)
		seed(x, h-1)
	}
	for y := 0; y < h; y++ {
		seed(0, y)
		seed(w-1, y)
	}

	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w
		for d := 0; d < 8; d += 2 {
			nx, ny := x+neighbourDX[d], y+neighbourDY[d]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			seed(nx, ny)
		}
	}
	return outside
}

// traceBorder follows the outer border of the component containing the
// start pixel, which must be its first pixel in raster order. It stops
// when the first move out of the start pixel would be repeated.
func traceBorder(fg func(x, y int) bool, sx, sy, limit int) []geom.Point {
	pts := []geom.Point{geom.Pt(float64(sx), float64(sy))}

	px, py := sx, sy
	back := 4 // west of the start pixel is background
	firstX, firstY := -1, -1

	for steps := 0; steps <= 4*limit; steps++ {
		moved := false
		for i := 1; i < 8; i++ {
			d := (back + i) % 8
			nx, ny := px+neighbourDX[d], py+neighbourDY[d]
			if !fg(nx, ny) {
				continue
			}

			prev := (back + i - 1) % 8
			bx, by := px+neighbourDX[prev], py+neighbourDY[prev]

			if px == sx && py == sy {
				if firstX < 0 {
					firstX, firstY = nx, ny
				} else if nx == firstX && ny == firstY {
					return pts[:len(pts)-1]
				}
			}

			back = directionOf(bx-nx, by-ny)
			px, py = nx, ny
			pts = append(pts, geom.Pt(float64(px), float64(py)))
			moved = true
			break
		}
		if !moved {
			// isolated pixel
			return pts
		}
	}
	return pts
}
