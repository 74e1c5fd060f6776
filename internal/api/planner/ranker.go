package planner

import (
	"slices"
	"sort"

	"github.com/FACorreiaa/go-itinerary-builder/internal/geo"
	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

// rankByScore returns a copy of sites ordered by descending similarity.
// Equal scores keep their input order.
func rankByScore(sites []types.Site) []types.Site {
	ranked := slices.Clone(sites)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})
	return ranked
}

// unusedSites drops every site whose name is already scheduled.
func unusedSites(pool []types.Site, used *UsedSites) []types.Site {
	out := make([]types.Site, 0, len(pool))
	for _, site := range pool {
		if used != nil && used.Has(site.Name) {
			continue
		}
		out = append(out, site)
	}
	return out
}

// topN returns at most n sites ranked by score.
func topN(sites []types.Site, n int) []types.Site {
	ranked := rankByScore(sites)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// BestSite returns the highest-scoring unused site.
func BestSite(pool []types.Site, used *UsedSites) (types.Site, bool) {
	best := topN(unusedSites(pool, used), 1)
	if len(best) == 0 {
		return types.Site{}, false
	}
	return best[0], true
}

// ClosestPair returns the two unused sites with coordinates that are nearest
// to each other, in pool order. The first minimal pair found wins ties.
// It returns nil when fewer than two located sites remain.
func ClosestPair(pool []types.Site, used *UsedSites) []types.Site {
	located := locatedSites(unusedSites(pool, used))
	if len(located) < 2 {
		return nil
	}

	bestI, bestJ := -1, -1
	bestDist := 0.0
	for i := 0; i < len(located); i++ {
		for j := i + 1; j < len(located); j++ {
			d := geo.Distance(*located[i].Location, *located[j].Location)
			if bestI == -1 || d < bestDist {
				bestI, bestJ, bestDist = i, j, d
			}
		}
	}
	return []types.Site{located[bestI], located[bestJ]}
}

// BestColocatedPair returns the unused pair with the highest combined score
// whose sites lie within maxKm of each other, ordered by descending score.
// It returns nil when no pair qualifies.
func BestColocatedPair(pool []types.Site, used *UsedSites, maxKm float64) []types.Site {
	located := locatedSites(unusedSites(pool, used))

	bestI, bestJ := -1, -1
	bestScore := 0.0
	for i := 0; i < len(located); i++ {
		for j := i + 1; j < len(located); j++ {
			if geo.Distance(*located[i].Location, *located[j].Location) > maxKm {
				continue
			}
			score := located[i].SimilarityScore + located[j].SimilarityScore
			if bestI == -1 || score > bestScore {
				bestI, bestJ, bestScore = i, j, score
			}
		}
	}
	if bestI == -1 {
		return nil
	}
	return rankByScore([]types.Site{located[bestI], located[bestJ]})
}

func locatedSites(sites []types.Site) []types.Site {
	out := make([]types.Site, 0, len(sites))
	for _, site := range sites {
		if site.Location != nil {
			out = append(out, site)
		}
	}
	return out
}
