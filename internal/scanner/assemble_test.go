package scanner

import (
	"testing"

	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/geom"
)

func docAt(id string, confidence int, x, y float64) ScannedDocument {
	return ScannedDocument{ID: id, Confidence: confidence, Corners: rectQuad(x, y, x+10, y+10)}
}

func TestAssemble(t *testing.T) {
	in := []ScannedDocument{
		docAt("low", 50, 0, 0),
		docAt("right", 90, 300, 10),
		docAt("left", 90, 10, 20),
		docAt("best", 99, 500, 500),
	}

	out := Assemble(in)

	want := []string{"best", "left", "right", "low"}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, out[i].ID, id)
		}
	}
	if in[0].ID != "low" || in[3].ID != "best" {
		t.Error("input slice was reordered")
	}
}

func TestAssemble_Empty(t *testing.T) {
	if out := Assemble(nil); out == nil || len(out) != 0 {
		t.Errorf("expected an empty, non-nil slice, got %v", out)
	}
}

func TestOrderCandidates(t *testing.T) {
	cands := []detection.Candidate{
		{Index: 0, Confidence: 70, Quad: rectQuad(100, 100, 200, 200)},
		{Index: 1, Confidence: 70, Quad: rectQuad(0, 50, 50, 100)},
		{Index: 2, Confidence: 95, Quad: rectQuad(400, 400, 500, 500)},
	}
	orderCandidates(cands)

	got := []int{cands[0].Index, cands[1].Index, cands[2].Index}
	for i, want := range []int{2, 1, 0} {
		if got[i] != want {
			t.Fatalf("order: got %v, want [2 1 0]", got)
		}
	}
	if cands[0].Quad.TopLeft() != geom.Pt(400, 400) {
		t.Errorf("unexpected first quad %v", cands[0].Quad)
	}
}
