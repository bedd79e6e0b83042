package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/hyperjump/reelmatch/internal/config"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/tmdb"
)

type fakeContent struct {
	mu      sync.Mutex
	similar map[int][]int
	seeds   []int
}

func (f *fakeContent) SimilarIDs(_ context.Context, movieID, k int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeds = append(f.seeds, movieID)
	ids := f.similar[movieID]
	if len(ids) > k {
		ids = ids[:k]
	}
	return ids
}

type fakeCollab struct {
	ids []int
	err error
}

func (f *fakeCollab) CoOccurring(context.Context, int64) ([]int, error) {
	return f.ids, f.err
}

type fakeStore struct {
	views  int
	latest *models.Interaction
	err    error
}

func (f *fakeStore) CountInteractions(context.Context, int64, models.InteractionKind) (int, error) {
	return f.views, f.err
}

func (f *fakeStore) LatestInteraction(context.Context, int64) (*models.Interaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.latest == nil {
		return nil, models.ErrNotFound
	}
	return f.latest, nil
}

type fakeCatalog struct {
	calls int
	cats  []tmdb.Category
}

func (f *fakeCatalog) FetchCatalog(_ context.Context, cat tmdb.Category, _ int) []models.Movie {
	f.calls++
	f.cats = append(f.cats, cat)
	return []models.Movie{{ID: 900}, {ID: 901}}
}

func intPtr(v int) *int { return &v }

func TestEngine_RecommendWithSeed(t *testing.T) {
	content := &fakeContent{similar: map[int][]int{10: {1, 2}}}
	e := NewEngine(content, &fakeCollab{ids: []int{2, 3}}, &fakeStore{views: 3}, &fakeCatalog{}, config.DefaultRecommendConfig())

	got, err := e.Recommend(context.Background(), &models.RecommendationRequest{UserID: 1, SeedMovieID: intPtr(10)})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{2, 1, 3}) {
		t.Errorf("Recommend = %v, want [2 1 3]", got)
	}
}

func TestEngine_WeightsFollowViewCount(t *testing.T) {
	for _, tt := range []struct {
		views int
		want  config.Weights
	}{
		{10, config.Weights{Content: 0.7, Collaborative: 0.3}},
		{11, config.Weights{Content: 0.4, Collaborative: 0.6}},
	} {
		e := NewEngine(&fakeContent{}, &fakeCollab{ids: []int{4}}, &fakeStore{views: tt.views, latest: &models.Interaction{MovieID: 1}}, &fakeCatalog{}, config.DefaultRecommendConfig())
		r, err := e.Rank(context.Background(), &models.RecommendationRequest{UserID: 1})
		if err != nil {
			t.Fatal(err)
		}
		if r.Weights != tt.want {
			t.Errorf("views=%d weights = %+v, want %+v", tt.views, r.Weights, tt.want)
		}
	}
}

func TestEngine_ImplicitSeedFromLatestInteraction(t *testing.T) {
	content := &fakeContent{similar: map[int][]int{42: {7}}}
	store := &fakeStore{views: 1, latest: &models.Interaction{MovieID: 42, Kind: models.KindFavorited}}
	e := NewEngine(content, &fakeCollab{}, store, &fakeCatalog{}, config.DefaultRecommendConfig())

	got, err := e.Recommend(context.Background(), &models.RecommendationRequest{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{7}) {
		t.Errorf("Recommend = %v, want [7]", got)
	}
	if len(content.seeds) != 1 || content.seeds[0] != 42 {
		t.Errorf("content seeds = %v, want [42]", content.seeds)
	}
}

func TestEngine_NoInteractionsNoContent(t *testing.T) {
	content := &fakeContent{}
	e := NewEngine(content, &fakeCollab{}, &fakeStore{}, &fakeCatalog{}, config.DefaultRecommendConfig())
	got, err := e.Recommend(context.Background(), &models.RecommendationRequest{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Recommend = %v, want empty", got)
	}
	if len(content.seeds) != 0 {
		t.Error("content index should not be queried without a seed")
	}
}

func TestEngine_ResultLimit(t *testing.T) {
	many := make([]int, 0, 30)
	for i := 1; i <= 30; i++ {
		many = append(many, i)
	}
	content := &fakeContent{similar: map[int][]int{1: many}}
	cfg := config.DefaultRecommendConfig()
	cfg.SimilarK = 30
	e := NewEngine(content, &fakeCollab{ids: many}, &fakeStore{}, &fakeCatalog{}, cfg)
	got, err := e.Recommend(context.Background(), &models.RecommendationRequest{UserID: 1, SeedMovieID: intPtr(1)})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 20 {
		t.Errorf("len = %d, want 20", len(got))
	}
}

func TestEngine_SuggestColdStartUsesTrending(t *testing.T) {
	catalog := &fakeCatalog{}
	content := &fakeContent{}
	e := NewEngine(content, &fakeCollab{}, &fakeStore{}, catalog, config.DefaultRecommendConfig())

	res, err := e.Suggest(context.Background(), &models.RecommendationRequest{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceTrending {
		t.Errorf("source = %s, want trending", res.Source)
	}
	if !reflect.DeepEqual(res.MovieIDs, []int{900, 901}) {
		t.Errorf("ids = %v", res.MovieIDs)
	}
	if res.RequestID == "" {
		t.Error("request id should be generated")
	}
	if len(catalog.cats) != 1 || catalog.cats[0] != tmdb.CategoryTrending {
		t.Errorf("catalog categories = %v", catalog.cats)
	}
	if len(content.seeds) != 0 {
		t.Error("cold start should not rank")
	}
}

func TestEngine_SuggestEmptyRankingFallsBack(t *testing.T) {
	catalog := &fakeCatalog{}
	e := NewEngine(&fakeContent{}, &fakeCollab{}, &fakeStore{}, catalog, config.DefaultRecommendConfig())
	res, err := e.Suggest(context.Background(), &models.RecommendationRequest{UserID: 1, SeedMovieID: intPtr(5)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceTrending || catalog.calls != 1 {
		t.Errorf("source = %s, catalog calls = %d", res.Source, catalog.calls)
	}
}

func TestEngine_SuggestHybrid(t *testing.T) {
	content := &fakeContent{similar: map[int][]int{5: {6}}}
	e := NewEngine(content, &fakeCollab{ids: []int{8}}, &fakeStore{}, &fakeCatalog{}, config.DefaultRecommendConfig())
	res, err := e.Suggest(context.Background(), &models.RecommendationRequest{UserID: 1, SeedMovieID: intPtr(5), RequestID: "req-1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceHybrid || res.RequestID != "req-1" {
		t.Errorf("result = %+v", res)
	}
	if !reflect.DeepEqual(res.MovieIDs, []int{6, 8}) {
		t.Errorf("ids = %v, want [6 8]", res.MovieIDs)
	}
	if res.Weights == nil || res.Weights.Content != 0.7 {
		t.Errorf("weights = %+v", res.Weights)
	}
}

func TestEngine_StoreErrorPropagates(t *testing.T) {
	e := NewEngine(&fakeContent{}, &fakeCollab{}, &fakeStore{err: errors.New("db down")}, &fakeCatalog{}, config.DefaultRecommendConfig())
	if _, err := e.Suggest(context.Background(), &models.RecommendationRequest{UserID: 1}); err == nil {
		t.Error("expected error")
	}
	if _, err := e.Recommend(context.Background(), &models.RecommendationRequest{UserID: 1, SeedMovieID: intPtr(1)}); err == nil {
		t.Error("expected error from view count")
	}
}

func TestEngine_SetTuning(t *testing.T) {
	e := NewEngine(&fakeContent{}, &fakeCollab{}, &fakeStore{}, &fakeCatalog{}, config.RecommendConfig{})
	if e.Tuning().ResultLimit != 20 {
		t.Errorf("defaults not applied: %+v", e.Tuning())
	}
	e.SetTuning(config.RecommendConfig{ResultLimit: 1})
	if got := e.Trending(context.Background()); len(got) != 1 {
		t.Errorf("Trending after tuning = %v, want 1 id", got)
	}
}
