package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/reelmatch/internal/config"
	"github.com/hyperjump/reelmatch/internal/keyword"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/recommend"
	"github.com/hyperjump/reelmatch/internal/similarity"
	"github.com/hyperjump/reelmatch/internal/vector"
)

var vocabulary = []string{
	"astronaut", "detective", "dragon", "heist", "romance", "robot", "war", "island",
	"family", "ghost", "spy", "desert", "ocean", "prison", "music", "school",
}

func syntheticMovies(n int) []models.Movie {
	movies := make([]models.Movie, n)
	for i := range movies {
		movies[i] = models.Movie{
			ID:       i + 1,
			Title:    fmt.Sprintf("Movie %d %s", i, vocabulary[i%len(vocabulary)]),
			Overview: fmt.Sprintf("A %s meets a %s near the %s", vocabulary[(i*3)%len(vocabulary)], vocabulary[(i*7)%len(vocabulary)], vocabulary[(i*5)%len(vocabulary)]),
			Genres:   []string{vocabulary[(i*11)%len(vocabulary)]},
		}
	}
	return movies
}

func BenchmarkFuse(b *testing.B) {
	content := make([]int, 10)
	collab := make([]int, 10)
	for i := range content {
		content[i] = i
		collab[i] = i + 5
	}
	w := config.Weights{Content: 0.7, Collaborative: 0.3}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = recommend.Fuse(content, collab, w)
	}
}

func BenchmarkTFIDFVectorize(b *testing.B) {
	tfidf, err := vector.NewDefaultTFIDF()
	if err != nil {
		b.Fatal(err)
	}
	movies := syntheticMovies(500)
	texts := make([]string, len(movies))
	for i := range movies {
		texts[i] = similarity.FeatureText(&movies[i])
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tfidf.Vectorize(texts, uint64(i+1))
	}
}

func BenchmarkSimilarIDs(b *testing.B) {
	tfidf, err := vector.NewDefaultTFIDF()
	if err != nil {
		b.Fatal(err)
	}
	idx := similarity.NewIndex(nil, tfidf)
	idx.Load(syntheticMovies(1000))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.SimilarIDs(ctx, (i%1000)+1, 10)
	}
}

func BenchmarkLevenshteinDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = keyword.LevenshteinDistance("interstellar", "intersteller")
	}
}
