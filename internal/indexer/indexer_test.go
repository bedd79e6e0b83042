package indexer

import (
	"context"
	"testing"

	"github.com/hyperjump/reelmatch/internal/keyword"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/tmdb"
)

type fakeCatalog map[tmdb.Category][]models.Movie

func (f fakeCatalog) FetchCatalog(_ context.Context, cat tmdb.Category, page int) []models.Movie {
	if page != 1 {
		return nil
	}
	return f[cat]
}

type recordingLoader struct{ loaded []models.Movie }

func (r *recordingLoader) Load(records []models.Movie) { r.loaded = records }

func testCatalog() fakeCatalog {
	return fakeCatalog{
		tmdb.CategoryPopular: {
			{ID: 1, Title: "Alpha", Overview: "first  popular\n pick"},
			{ID: 2, Title: "Beta"},
		},
		tmdb.CategoryTopRated: {
			{ID: 2, Title: "Beta (top rated copy)"},
			{ID: 3, Title: "Gamma", Overview: "space opera"},
		},
	}
}

func TestIndexer_CatalogDedupesFirstWins(t *testing.T) {
	idx := NewIndexer(testCatalog(), nil)
	got := idx.Catalog(context.Background())
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantIDs := []int{1, 2, 3}
	for i, m := range got {
		if m.ID != wantIDs[i] {
			t.Errorf("position %d: id %d, want %d", i, m.ID, wantIDs[i])
		}
	}
	if got[1].Title != "Beta" {
		t.Errorf("duplicate kept %q, want first occurrence", got[1].Title)
	}
	if got[0].Overview != "first popular pick" {
		t.Errorf("overview not normalized: %q", got[0].Overview)
	}
}

func TestIndexer_SeedIndexesKeywords(t *testing.T) {
	kw, err := keyword.NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = kw.Close() }()

	idx := NewIndexer(testCatalog(), kw)
	movies := idx.Seed(context.Background())
	if len(movies) != 3 {
		t.Fatalf("Seed returned %d movies", len(movies))
	}
	hits, err := kw.Search(context.Background(), "opera", 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].MovieID != 3 {
		t.Errorf("hits = %+v", hits)
	}
}

func TestIndexer_Refresh(t *testing.T) {
	loader := &recordingLoader{}
	n, err := NewIndexer(testCatalog(), nil).Refresh(context.Background(), loader)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || len(loader.loaded) != 3 {
		t.Errorf("Refresh loaded %d / %d", n, len(loader.loaded))
	}

	if _, err := NewIndexer(fakeCatalog{}, nil).Refresh(context.Background(), loader); err == nil {
		t.Error("expected error for empty catalog")
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  a  b\t\nc ", "a b c"},
		{"", ""},
		{"single", "single"},
	}
	for _, tt := range tests {
		if got := Preprocess(tt.in); got != tt.want {
			t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
