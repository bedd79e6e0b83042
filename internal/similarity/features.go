package similarity

import (
	"strings"
	"unicode"

	"github.com/hyperjump/reelmatch/internal/models"
)

// FeatureText is the text a movie is vectorized from: title, overview, and genre labels
// with whitespace collapsed.
func FeatureText(m *models.Movie) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.Title, m.Overview, m.GenreLabel()} {
		if p = collapseSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func collapseSpace(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}
