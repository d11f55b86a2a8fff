package scanner

import (
	"sort"

	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/geom"
)

// ScannedDocument is one document found in an image.
type ScannedDocument struct {
	// ID is issued by the scanner's IDGenerator in output order.
	ID string `json:"id"`

	// ImageData is the encoded, perspective-corrected crop.
	ImageData []byte `json:"-"`

	// MimeType is the MIME type of ImageData.
	MimeType string `json:"mime_type"`

	// Width and Height are the crop dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Confidence is the 0-100 detection score.
	Confidence int `json:"confidence"`

	// Corners is the document quad in source coordinates of the oriented
	// image, ordered [TL, TR, BR, BL].
	Corners geom.Quad `json:"corners"`
}

// readingOrder reports whether a document with confidence ci and top-left
// corner a comes before one with cj and b: more confident first, then the
// one whose top-left corner is nearer the image origin.
func readingOrder(ci int, a geom.Point, cj int, b geom.Point) bool {
	if ci != cj {
		return ci > cj
	}
	return a.X+a.Y < b.X+b.Y
}

// Assemble returns docs in output order: confidence descending, ties by
// ascending x+y of the top-left corner. The input is not modified.
func Assemble(docs []ScannedDocument) []ScannedDocument {
	out := make([]ScannedDocument, len(docs))
	copy(out, docs)
	sort.SliceStable(out, func(i, j int) bool {
		return readingOrder(out[i].Confidence, out[i].Corners.TopLeft(), out[j].Confidence, out[j].Corners.TopLeft())
	})
	return out
}

// orderCandidates sorts candidates in the same order as Assemble.
func orderCandidates(cands []detection.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return readingOrder(cands[i].Confidence, cands[i].Quad.TopLeft(), cands[j].Confidence, cands[j].Quad.TopLeft())
	})
}
