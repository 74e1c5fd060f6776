package sites

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

// Repository is the site and restaurant catalogue. Postgres, MongoDB and an
// in-process catalogue implement it.
type Repository interface {
	// SearchTopSites returns the sites nearest to the search vector, best first,
	// with SimilarityScore clamped to [0,1].
	SearchTopSites(ctx context.Context, search types.SiteSearch) ([]types.SiteRecord, error)
	// FindSiteByNamePattern returns the first site in catalogue order whose name
	// contains any of the patterns, ignoring case. It returns nil, nil when no
	// site matches.
	FindSiteByNamePattern(ctx context.Context, patterns ...string) (*types.SiteRecord, error)
	// QueryRestaurants returns located restaurants in a city whose average budget
	// does not exceed MaxCost.
	QueryRestaurants(ctx context.Context, query types.RestaurantQuery) ([]types.RestaurantRecord, error)
	ListSites(ctx context.Context) ([]types.SiteRecord, error)
	ListRestaurants(ctx context.Context) ([]types.RestaurantRecord, error)

	// Embedding maintenance
	SitesWithoutEmbeddings(ctx context.Context, limit int) ([]types.SiteRecord, error)
	UpdateSiteEmbedding(ctx context.Context, siteID string, embedding []float32) error
}

// cosineSimilarity clamps to [0,1]. Vectors of different length or zero norm
// score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clampUnit(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// siteMatches applies the non-vector filters of a search.
func siteMatches(rec types.SiteRecord, search types.SiteSearch) bool {
	if search.City != "" && !strings.EqualFold(rec.City, search.City) {
		return false
	}
	if search.MaxCost > 0 && rec.BudgetEGP != nil && *rec.BudgetEGP > search.MaxCost {
		return false
	}
	if search.Age != nil && rec.MinAge != nil && *rec.MinAge > *search.Age {
		return false
	}
	return true
}

func restaurantMatches(rec types.RestaurantRecord, query types.RestaurantQuery) bool {
	if rec.Location() == nil {
		return false
	}
	if query.City != "" && !strings.EqualFold(rec.City, query.City) {
		return false
	}
	if query.MaxCost > 0 && (rec.AverageBudgetEGP == nil || *rec.AverageBudgetEGP > query.MaxCost) {
		return false
	}
	return true
}

// rankBySimilarity scores candidates against the vector, drops those without an
// embedding and keeps the best limit.
func rankBySimilarity(candidates []types.SiteRecord, vector []float32, limit int) []types.SiteRecord {
	ranked := make([]types.SiteRecord, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		c.SimilarityScore = cosineSimilarity(vector, c.Embedding)
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
