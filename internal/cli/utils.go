// Package cli provides output helpers for the reelmatch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// overviewWidth is how many characters of an overview the text format shows.
const overviewWidth = 160

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

// MovieList is a titled list of movies as printed by the recommend and trending commands.
type MovieList struct {
	RequestID string         `json:"request_id,omitempty"`
	Source    string         `json:"source"`
	Movies    []models.Movie `json:"results"`
}

// WriteMovies writes a movie list to w in the given format.
func WriteMovies(w io.Writer, list *MovieList, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, list)
	}
	writeMoviesText(w, list)
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeMoviesText(w io.Writer, list *MovieList) {
	fmt.Fprintf(w, "\n%d movies (source: %s)", len(list.Movies), list.Source)
	if list.RequestID != "" {
		fmt.Fprintf(w, " request %s", list.RequestID)
	}
	fmt.Fprint(w, "\n\n")
	for i, m := range list.Movies {
		writeOneMovie(w, i+1, &m)
	}
}

func writeOneMovie(w io.Writer, rank int, m *models.Movie) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%2d. %s", rank, m.Title)
	if year := releaseYear(m.ReleaseDate); year != "" {
		fmt.Fprintf(w, " (%s)", year)
	}
	fmt.Fprintf(w, "  [id %d]\n", m.ID)
	if m.VoteAverage > 0 || len(m.Genres) > 0 {
		fmt.Fprintf(w, "    rating %.1f | %s\n", m.VoteAverage, m.GenreLabel())
	}
	if m.Overview != "" {
		fmt.Fprintf(w, "    %s\n", utils.Truncate(m.Overview, overviewWidth))
	}
	fmt.Fprintln(w)
}

func releaseYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
