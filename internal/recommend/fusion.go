package recommend

import (
	"sort"

	"github.com/hyperjump/reelmatch/internal/config"
	"github.com/hyperjump/reelmatch/internal/models"
)

// SelectWeights picks the weight pair for a user with viewCount recorded views.
// Users above the history threshold lean on the collaborative signal.
func SelectWeights(viewCount int, cfg config.RecommendConfig) config.Weights {
	if viewCount > cfg.HistoryThreshold {
		return cfg.EstablishedWeights
	}
	return cfg.SparseWeights
}

// Fuse merges content and collaborative candidates. Every occurrence in the content list
// adds the content weight and every occurrence in the collaborative list adds the
// collaborative weight. Results are ordered by score descending; equal scores keep the
// order in which ids were first seen, content list first.
func Fuse(content, collaborative []int, w config.Weights) []models.ScoredCandidate {
	scores := make(map[int]float64, len(content)+len(collaborative))
	order := make([]int, 0, len(content)+len(collaborative))
	add := func(ids []int, weight float64) {
		for _, id := range ids {
			if _, ok := scores[id]; !ok {
				order = append(order, id)
			}
			scores[id] += weight
		}
	}
	add(content, w.Content)
	add(collaborative, w.Collaborative)

	results := make([]models.ScoredCandidate, len(order))
	for i, id := range order {
		results[i] = models.ScoredCandidate{MovieID: id, Score: scores[id]}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// IDs returns the movie ids of candidates in order.
func IDs(candidates []models.ScoredCandidate) []int {
	ids := make([]int, len(candidates))
	for i, c := range candidates {
		ids[i] = c.MovieID
	}
	return ids
}
