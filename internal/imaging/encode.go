package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// Format is an output encoding for document crops.
type Format string

const (
	// JPEG output, lossy, quality 1-100.
	JPEG Format = "jpeg"
	// PNG output, lossless; quality is ignored.
	PNG Format = "png"
)

// ParseFormat maps a user supplied name ("jpg", "JPEG", "png") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use jpeg or png)", name)
}

// MimeType returns the MIME type of the encoding.
func (f Format) MimeType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/jpeg"
}

// Ext returns the file extension for the encoding, including the dot.
func (f Format) Ext() string {
	if f == PNG {
		return ".png"
	}
	return ".jpg"
}

// Encode writes img to w in the given format.
//
// Quality is clamped to [1, 100] and only applies to JPEG.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	var f imaging.Format
	switch format {
	case JPEG:
		f = imaging.JPEG
	case PNG:
		f = imaging.PNG
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	if err := imaging.Encode(w, img, f, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}

// EncodeBytes is Encode into a new byte slice.
func EncodeBytes(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
