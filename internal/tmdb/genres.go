package tmdb

import "strings"

// genreNames is the static TMDb movie genre table.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

var genreIDs = func() map[string]int {
	m := make(map[string]int, len(genreNames))
	for id, name := range genreNames {
		m[normalizeGenre(name)] = id
	}
	return m
}()

func normalizeGenre(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// GenreName returns the label for a TMDb genre id.
func GenreName(id int) (string, bool) {
	name, ok := genreNames[id]
	return name, ok
}

// GenreID resolves a genre label case-insensitively; "science-fiction" and
// "Science Fiction" are equivalent.
func GenreID(name string) (int, bool) {
	id, ok := genreIDs[normalizeGenre(name)]
	return id, ok
}

// GenreLabels maps genre ids to labels, dropping unknown ids.
func GenreLabels(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genreNames[id]; ok {
			out = append(out, name)
		}
	}
	return out
}
