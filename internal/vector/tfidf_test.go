package vector

import (
	"math"
	"strings"
	"testing"
)

type splitTokenizer struct{}

func (splitTokenizer) Tokens(text string) []string { return strings.Fields(text) }

func TestIDF(t *testing.T) {
	// term in every document of three: ln(4/4)+1 = 1
	if got := IDF(3, 3); math.Abs(got-1) > 1e-12 {
		t.Errorf("IDF(3,3) = %f, want 1", got)
	}
	want := math.Log(4.0/2.0) + 1
	if got := IDF(3, 1); math.Abs(got-want) > 1e-12 {
		t.Errorf("IDF(3,1) = %f, want %f", got, want)
	}
}

func TestTFIDF_Vectorize(t *testing.T) {
	v := NewTFIDF(splitTokenizer{})
	vecs := v.Vectorize([]string{"space space ship", "ship dock", ""}, 7)
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	for i, vec := range vecs {
		if vec.Generation != 7 {
			t.Errorf("vector %d generation = %d", i, vec.Generation)
		}
	}
	if n := L2Norm(vecs[0]); math.Abs(n-1) > 1e-9 {
		t.Errorf("norm = %f, want 1", n)
	}
	if !vecs[2].IsZero() {
		t.Error("empty text should give a zero vector")
	}
	// vocabulary is dock, ship, space
	if len(vecs[0].Terms) != 2 || vecs[0].Terms[0] != 1 || vecs[0].Terms[1] != 2 {
		t.Errorf("terms = %v, want [1 2]", vecs[0].Terms)
	}
	// space: tf 2 * idf(3,1); ship: tf 1 * idf(3,2)
	space := 2 * IDF(3, 1)
	ship := IDF(3, 2)
	norm := math.Sqrt(space*space + ship*ship)
	if math.Abs(vecs[0].Weights[1]-space/norm) > 1e-9 {
		t.Errorf("space weight = %f, want %f", vecs[0].Weights[1], space/norm)
	}
}

func TestAnalyzerTokenizer(t *testing.T) {
	tok, err := NewAnalyzerTokenizer("")
	if err != nil {
		t.Fatal(err)
	}
	got := tok.Tokens("The Matrix: a hacker learns the TRUTH about reality, 2 times")
	for _, term := range got {
		if term == "the" || term == "a" || term == "2" {
			t.Errorf("unexpected token %q in %v", term, got)
		}
		if term != strings.ToLower(term) {
			t.Errorf("token %q not lowercased", term)
		}
	}
	if len(got) == 0 || got[0] != "matrix" {
		t.Errorf("tokens = %v", got)
	}
}
