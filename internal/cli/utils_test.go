package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/reelmatch/internal/models"
)

func sampleList() *MovieList {
	return &MovieList{
		RequestID: "req-42",
		Source:    "hybrid",
		Movies: []models.Movie{
			{ID: 603, Title: "The Matrix", Overview: strings.Repeat("reality ", 40), Genres: []string{"Action", "Science Fiction"}, ReleaseDate: "1999-03-30", VoteAverage: 8.2},
			{ID: 13, Title: "Forrest Gump"},
		},
	}
}

func TestWriteMovies_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMovies(&buf, sampleList(), OutputJSON); err != nil {
		t.Fatalf("WriteMovies(json): %v", err)
	}
	var decoded MovieList
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Source != "hybrid" || decoded.RequestID != "req-42" || len(decoded.Movies) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Movies[0].ID != 603 {
		t.Errorf("order not preserved: %+v", decoded.Movies)
	}
}

func TestWriteMovies_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMovies(&buf, sampleList(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"2 movies (source: hybrid) request req-42",
		" 1. The Matrix (1999)  [id 603]",
		"rating 8.2 | Action Science Fiction",
		" 2. Forrest Gump  [id 13]",
		"...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("reality ", 40)) {
		t.Error("overview should be truncated")
	}
}

func TestWriteMovies_textEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMovies(&buf, &MovieList{Source: "trending"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "0 movies (source: trending)") {
		t.Errorf("got %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReleaseYear(t *testing.T) {
	if releaseYear("2010-07-15") != "2010" {
		t.Error("full date")
	}
	if releaseYear("") != "" {
		t.Error("empty date")
	}
}
