package detection

import (
	"image"
	"image/color"

	"github.com/ironsheep/docscan/internal/vision"
)

// createScene draws bright axis-aligned rectangles (inclusive corners) on
// a dark background.
func createScene(width, height int, rects ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := color.RGBA{40, 40, 40, 255}
	fg := color.RGBA{230, 230, 230, 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	for _, r := range rects {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for x := r.Min.X; x <= r.Max.X; x++ {
				img.SetRGBA(x, y, fg)
			}
		}
	}
	return img
}

// panicBackend panics inside edge detection.
type panicBackend struct {
	*vision.Native
}

func (panicBackend) Canny(*image.Gray, float64, float64) (*image.Gray, error) {
	panic("edge detector exploded")
}

// failingBackend fails grayscale conversion.
type failingBackend struct {
	*vision.Native
	err error
}

func (b failingBackend) Grayscale(image.Image) (*image.Gray, error) {
	return nil, b.err
}
