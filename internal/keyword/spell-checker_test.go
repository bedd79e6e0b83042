package keyword

import (
	"errors"
	"testing"
)

type mapDictionary struct {
	terms map[string]int
	err   error
	calls int
}

func (m *mapDictionary) Terms() (map[string]int, error) {
	m.calls++
	return m.terms, m.err
}

func TestSpellChecker_Suggest(t *testing.T) {
	dict := &mapDictionary{terms: map[string]int{"matrix": 3, "matrices": 1, "metric": 9, "park": 4}}
	sc := NewSpellChecker(dict)

	got := sc.Suggest("matrx")
	if len(got) == 0 || got[0].Term != "matrix" {
		t.Fatalf("Suggest(matrx) = %+v, want matrix first", got)
	}
	if got[0].Distance != 1 {
		t.Errorf("distance = %d, want 1", got[0].Distance)
	}
	for _, s := range got {
		if s.Term == "park" {
			t.Error("park is too far from matrx")
		}
	}
}

func TestSpellChecker_Correct(t *testing.T) {
	dict := &mapDictionary{terms: map[string]int{"jurassic": 2, "park": 4}}
	sc := NewSpellChecker(dict)

	if got, ok := sc.Correct("Jurasic prak"); !ok || got != "jurassic park" {
		t.Errorf("Correct = %q, %v", got, ok)
	}
	if got, ok := sc.Correct("park"); ok || got != "park" {
		t.Errorf("Correct(known) = %q, %v", got, ok)
	}
	if got, ok := sc.Correct("zzzzzzzz"); ok || got != "zzzzzzzz" {
		t.Errorf("Correct(unknown) = %q, %v", got, ok)
	}
}

func TestSpellChecker_CachesUntilInvalidated(t *testing.T) {
	dict := &mapDictionary{terms: map[string]int{"heat": 1}}
	sc := NewSpellChecker(dict)
	sc.Suggest("heet")
	sc.Suggest("hat")
	if dict.calls != 1 {
		t.Errorf("dictionary loaded %d times, want 1", dict.calls)
	}
	sc.Invalidate()
	sc.Suggest("heet")
	if dict.calls != 2 {
		t.Errorf("dictionary loaded %d times after invalidate, want 2", dict.calls)
	}
}

func TestSpellChecker_MinFrequencyAndErrors(t *testing.T) {
	sc := NewSpellChecker(&mapDictionary{terms: map[string]int{"rare": 1}}, WithMinFrequency(2), WithMaxDistance(1))
	if got := sc.Suggest("rase"); len(got) != 0 {
		t.Errorf("rare term suggested: %+v", got)
	}

	broken := NewSpellChecker(&mapDictionary{err: errors.New("closed")})
	if got := broken.Suggest("x"); got != nil {
		t.Errorf("Suggest on error = %+v", got)
	}
	if got, ok := broken.Correct("x"); ok || got != "x" {
		t.Errorf("Correct on error = %q, %v", got, ok)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"matrix", "matrx", 1},
		{"café", "cafe", 1},
	}
	for _, tt := range tests {
		if got := LevenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
